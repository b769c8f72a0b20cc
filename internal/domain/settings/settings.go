// Package settings defines the player preferences persisted between sessions.
package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality is the cosmetic graphics level forwarded to presentation clients.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

func (q Quality) IsValid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	default:
		return false
	}
}

// Settings are the persisted player preferences.
type Settings struct {
	SoundEnabled    bool    `json:"soundEnabled"`
	Volume          float64 `json:"volume"` // 0.0 - 1.0
	GraphicsQuality Quality `json:"graphicsQuality"`
}

// Defaults is used when nothing has been stored yet.
func Defaults() Settings {
	return Settings{
		SoundEnabled:    true,
		Volume:          0.7,
		GraphicsQuality: QualityHigh,
	}
}

// Normalize clamps the volume and replaces an unknown quality with high.
func (s Settings) Normalize() Settings {
	if s.Volume < 0 {
		s.Volume = 0
	}
	if s.Volume > 1 {
		s.Volume = 1
	}
	if !s.GraphicsQuality.IsValid() {
		s.GraphicsQuality = QualityHigh
	}
	return s
}

// Apply updates a single setting by its persisted key.
// Volume accepts either a fraction ("0.4") or a percentage ("40%").
func (s Settings) Apply(key, value string) (Settings, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "soundEnabled", "sound":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("invalid soundEnabled %q: %w", value, err)
		}
		s.SoundEnabled = b
	case "volume":
		pct := strings.HasSuffix(value, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return s, fmt.Errorf("invalid volume %q: %w", value, err)
		}
		if pct {
			f /= 100
		}
		s.Volume = f
	case "graphicsQuality", "graphics":
		q := Quality(strings.ToLower(value))
		if !q.IsValid() {
			return s, fmt.Errorf("invalid graphicsQuality %q", value)
		}
		s.GraphicsQuality = q
	default:
		return s, fmt.Errorf("unknown setting %q", key)
	}
	return s.Normalize(), nil
}
