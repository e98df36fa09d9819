package stats

import "testing"

func TestPaletteColor(t *testing.T) {
	p := DefaultPalette()
	if got := p.Color("Food"); got != "#FF5252" {
		t.Fatalf("Food = %s", got)
	}
	if got := p.Color("Gift"); got != "#AA00FF" {
		t.Fatalf("Gift = %s", got)
	}
	// Exact, case-sensitive match.
	if got := p.Color("food"); got != DefaultColor {
		t.Fatalf("food = %s, want default", got)
	}
	if got := p.Color("Misc"); got != DefaultColor {
		t.Fatalf("Misc = %s, want default", got)
	}
	if len(p.Categories()) != 10 {
		t.Fatalf("expected 10 known categories, got %d", len(p.Categories()))
	}
}

func TestPaletteSubstitution(t *testing.T) {
	p := Palette{Colors: map[string]string{"Coffee": "#6F4E37"}, Default: "#000000"}
	if p.Color("Coffee") != "#6F4E37" || p.Color("Food") != "#000000" {
		t.Fatalf("custom palette not honoured")
	}
	var empty Palette
	if empty.Color("Food") != DefaultColor {
		t.Fatalf("zero palette should fall back to DefaultColor")
	}
}
