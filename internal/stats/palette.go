package stats

import "sort"

// DefaultColor is used for any category missing from the palette.
const DefaultColor = "#BDBDBD"

// Palette assigns chart colors to categories. Lookups are exact and case
// sensitive, so a category always gets the same color across reports.
type Palette struct {
	Colors  map[string]string
	Default string
}

// DefaultPalette returns the built-in category colors.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[string]string{
			"Food":       "#FF5252",
			"Transport":  "#448AFF",
			"Shopping":   "#FFD740",
			"Health":     "#69F0AE",
			"Education":  "#E040FB",
			"Bills":      "#FFAB40",
			"Fun":        "#FF4081",
			"Investment": "#18FFFF",
			"Salary":     "#64DD17",
			"Gift":       "#AA00FF",
		},
		Default: DefaultColor,
	}
}

// Color returns the color for category, or the palette default.
func (p Palette) Color(category string) string {
	if c, ok := p.Colors[category]; ok {
		return c
	}
	if p.Default == "" {
		return DefaultColor
	}
	return p.Default
}

// Categories lists the categories that have a dedicated color.
func (p Palette) Categories() []string {
	out := make([]string, 0, len(p.Colors))
	for c := range p.Colors {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
