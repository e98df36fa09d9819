package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the user preferences kept next to the transactions.
type Settings struct {
	UserName      string
	DailyLimit    Money
	Theme         string
	DailyReminder bool
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		UserName:      "User",
		DailyLimit:    NewMoney(100000),
		Theme:         ThemeSystem,
		DailyReminder: true,
	}
}

func (s Settings) Validate() error {
	name := strings.TrimSpace(s.UserName)
	if name == "" {
		return fmt.Errorf("%w: empty user name", ErrInvalidSettings)
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: user name too long (max 100 characters)", ErrInvalidSettings)
	}
	if s.DailyLimit.Value.IsNegative() {
		return fmt.Errorf("%w: daily limit cannot be negative", ErrInvalidSettings)
	}
	switch s.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: invalid theme %q", ErrInvalidSettings, s.Theme)
	}
	return nil
}
