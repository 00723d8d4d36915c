package session

import (
	"fmt"

	"github.com/hazyhaar/termweb/search"
)

// Width bounds accepted by the width command.
const (
	MinWidth = 60
	MaxWidth = 200
)

// Inline art width bounds accepted by the img width command.
const (
	MinASCIIWidth = 20
	MaxASCIIWidth = 200
)

// Settings is the per-connection rendering state. Every field has a
// command that flips it; nothing persists past the connection.
type Settings struct {
	Width        int
	RowAspect    float64
	ASCIIWidth   int
	AutoImages   bool
	AutoImageMax int
	FilterIcons  bool
	JSMode       bool
	MobileUA     bool
	Provider     search.Provider
}

// DefaultSettings returns the connection defaults, matching the
// configured terminal profile.
func DefaultSettings() Settings {
	return Settings{
		Width:        110,
		RowAspect:    0.52,
		ASCIIWidth:   68,
		AutoImages:   true,
		AutoImageMax: 3,
		FilterIcons:  true,
		JSMode:       true,
		Provider:     search.ProviderAuto,
	}
}

// SetWidth validates and applies a new terminal width.
func (s *Settings) SetWidth(w int) error {
	if w < MinWidth || w > MaxWidth {
		return fmt.Errorf("session: width %d out of range %d-%d", w, MinWidth, MaxWidth)
	}
	s.Width = w
	return nil
}

// SetASCIIWidth applies a new inline art width, clamped to its bounds,
// and returns the width that took effect.
func (s *Settings) SetASCIIWidth(w int) int {
	s.ASCIIWidth = max(MinASCIIWidth, min(MaxASCIIWidth, w))
	return s.ASCIIWidth
}

// ApplyResolutionPreset switches to the compact 80-column profile used
// on narrow terminals.
func (s *Settings) ApplyResolutionPreset() {
	s.Width = 80
	s.RowAspect = 0.5
	s.ASCIIWidth = 60
}
