// Package models provides data models for the ecosystem hub core.
package models

import "github.com/ecosystem-hub/internal/types"

// Settings represents the persisted user preferences
type Settings struct {
	Theme          types.Theme          `json:"theme"`
	Notifications  bool                 `json:"notifications"`
	Biometrics     bool                 `json:"biometrics"`
	Language       string               `json:"language"`
	GlassIntensity types.GlassIntensity `json:"glassIntensity"`
	HasPassword    bool                 `json:"hasPassword"`
}

// DefaultSettings returns the preferences used when storage is empty or corrupt
func DefaultSettings() Settings {
	return Settings{
		Theme:          types.ThemeDark,
		Notifications:  true,
		Biometrics:     false,
		Language:       "en",
		GlassIntensity: types.GlassMedium,
	}
}

// Language is a selectable UI language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
