package client

// App bundles the three stores a frontend needs, constructed in the same
// order the web app nests its contexts: theme, then auth, then products.
type App struct {
	Theme    *ThemeStore
	Auth     *AuthStore
	Products *ProductStore
}

// NewApp wires the stores against baseURL, persisting through storage.
func NewApp(baseURL string, storage Storage) *App {
	api := NewAPI(baseURL)
	return &App{
		Theme:    NewThemeStore(storage),
		Auth:     NewAuthStore(api, storage),
		Products: NewProductStore(api),
	}
}
