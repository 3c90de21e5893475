package client

// Theme modes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Palette is the set of colours a frontend binds to.
type Palette struct {
	Background string
	Surface    string
	Text       string
	Primary    string
	Accent     string
}

var palettes = map[string]Palette{
	ThemeLight: {
		Background: "#fafafa",
		Surface:    "#ffffff",
		Text:       "#1a1a1a",
		Primary:    "#1565c0",
		Accent:     "#ef6c00",
	},
	ThemeDark: {
		Background: "#121212",
		Surface:    "#1e1e1e",
		Text:       "#ececec",
		Primary:    "#64b5f6",
		Accent:     "#ffb74d",
	},
}

// ThemeState is the theme store's state snapshot.
type ThemeState struct {
	Mode    string
	Palette Palette
}

type themeAction struct {
	mode string
}

func themeReduce(_ ThemeState, a themeAction) ThemeState {
	mode := a.mode
	if _, known := palettes[mode]; !known {
		mode = ThemeLight
	}
	return ThemeState{Mode: mode, Palette: palettes[mode]}
}

const themeStorageKey = "theme"

// ThemeStore holds the UI theme and persists the chosen mode.
type ThemeStore struct {
	*Store[ThemeState, themeAction]
	storage Storage
}

// NewThemeStore rehydrates the persisted mode, defaulting to light.
func NewThemeStore(storage Storage) *ThemeStore {
	mode := ThemeLight
	if raw, err := storage.Load(themeStorageKey); err == nil {
		if _, known := palettes[string(raw)]; known {
			mode = string(raw)
		}
	}

	s := &ThemeStore{
		Store:   NewStore(themeReduce(ThemeState{}, themeAction{mode: mode}), themeReduce),
		storage: storage,
	}
	s.Subscribe(func(state ThemeState) {
		s.storage.Save(themeStorageKey, []byte(state.Mode)) //nolint:errcheck
	})
	return s
}

// Toggle flips between light and dark.
func (s *ThemeStore) Toggle() {
	next := ThemeDark
	if s.State().Mode == ThemeDark {
		next = ThemeLight
	}
	s.Dispatch(themeAction{mode: next})
}

// SetMode selects a mode explicitly. Unknown modes fall back to light.
func (s *ThemeStore) SetMode(mode string) {
	s.Dispatch(themeAction{mode: mode})
}
