package models

// Theme selects the display color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// FontSize selects the display text size.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Settings is the single process-wide preferences object. It is mutated only
// through an explicit save and persisted on every save.
type Settings struct {
	AutoScroll        bool     `json:"autoScroll"`
	SoundEffects      bool     `json:"soundEffects"`
	MarkdownRendering bool     `json:"markdownRendering"`
	Theme             Theme    `json:"theme"`
	FontSize          FontSize `json:"fontSize"`
	Model             string   `json:"model"`
}

// DefaultSettings are used both at first run and on reset.
func DefaultSettings() Settings {
	return Settings{
		AutoScroll:        true,
		SoundEffects:      true,
		MarkdownRendering: true,
		Theme:             ThemeAuto,
		FontSize:          FontMedium,
		Model:             "gemini-2.5-flash-lite",
	}
}
