package client

import (
	"encoding/json"
	"errors"
)

// User is the account shape the API returns.
type User struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Phone         string `json:"phone,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// Tokens is the access/refresh pair issued by the server.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthState is the auth store's state snapshot.
type AuthState struct {
	User          *User
	Tokens        Tokens
	Authenticated bool
	Loading       bool
	Err           string
}

type authKind int

const (
	authStart authKind = iota
	authSuccess
	authFailure
	authRefreshed
	authLoggedOut
	authProfileUpdated
	authClearError
)

type authAction struct {
	kind   authKind
	user   *User
	tokens Tokens
	err    string
}

func authReduce(s AuthState, a authAction) AuthState {
	switch a.kind {
	case authStart:
		s.Loading = true
		s.Err = ""
	case authSuccess:
		s = AuthState{User: a.user, Tokens: a.tokens, Authenticated: true}
	case authFailure:
		s = AuthState{Err: a.err}
	case authRefreshed:
		s.Tokens = a.tokens
		if a.user != nil {
			s.User = a.user
		}
	case authLoggedOut:
		s = AuthState{}
	case authProfileUpdated:
		s.User = a.user
	case authClearError:
		s.Err = ""
	}
	return s
}

const authStorageKey = "auth"

// persistedAuth is what survives restarts, mirroring what the web app
// keeps in localStorage.
type persistedAuth struct {
	User   *User  `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// AuthStore drives login, registration and session state against the REST
// API. Every transition is persisted to Storage; construction rehydrates
// the previous session.
type AuthStore struct {
	*Store[AuthState, authAction]
	api     *API
	storage Storage
}

// NewAuthStore rehydrates any persisted session and wires persistence on
// every transition.
func NewAuthStore(api *API, storage Storage) *AuthStore {
	initial := AuthState{}
	if raw, err := storage.Load(authStorageKey); err == nil {
		var saved persistedAuth
		if json.Unmarshal(raw, &saved) == nil && saved.Tokens.AccessToken != "" {
			initial = AuthState{
				User:          saved.User,
				Tokens:        saved.Tokens,
				Authenticated: true,
			}
		}
	}

	s := &AuthStore{
		Store:   NewStore(initial, authReduce),
		api:     api,
		storage: storage,
	}
	s.Subscribe(s.persist)
	return s
}

func (s *AuthStore) persist(state AuthState) {
	if !state.Authenticated {
		s.storage.Delete(authStorageKey) //nolint:errcheck
		return
	}
	raw, err := json.Marshal(persistedAuth{User: state.User, Tokens: state.Tokens})
	if err != nil {
		return
	}
	s.storage.Save(authStorageKey, raw) //nolint:errcheck
}

// authEnvelope matches the server's auth responses.
type authEnvelope struct {
	User   *User  `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// Login authenticates with email and password.
func (s *AuthStore) Login(email, password string) Result {
	s.Dispatch(authAction{kind: authStart})

	var env authEnvelope
	err := s.api.Post("/api/users/login", "", map[string]string{
		"email": email, "password": password,
	}, &env)
	if err != nil {
		s.Dispatch(authAction{kind: authFailure, err: err.Error()})
		return failErr(err)
	}

	s.Dispatch(authAction{kind: authSuccess, user: env.User, tokens: env.Tokens})
	return ok()
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Register creates an account and signs in.
func (s *AuthStore) Register(input RegisterInput) Result {
	s.Dispatch(authAction{kind: authStart})

	var env authEnvelope
	if err := s.api.Post("/api/users/register", "", input, &env); err != nil {
		s.Dispatch(authAction{kind: authFailure, err: err.Error()})
		return failErr(err)
	}

	s.Dispatch(authAction{kind: authSuccess, user: env.User, tokens: env.Tokens})
	return ok()
}

// Refresh rotates the token pair. On a rejected refresh token the session
// is cleared, matching the server's single-session semantics.
func (s *AuthStore) Refresh() Result {
	state := s.State()
	if state.Tokens.RefreshToken == "" {
		return failErr(errors.New("no session to refresh"))
	}

	var env authEnvelope
	err := s.api.Post("/api/users/refresh-token", "", map[string]string{
		"refresh_token": state.Tokens.RefreshToken,
	}, &env)
	if err != nil {
		s.Dispatch(authAction{kind: authLoggedOut})
		return failErr(err)
	}

	s.Dispatch(authAction{kind: authRefreshed, user: env.User, tokens: env.Tokens})
	return ok()
}

// Logout revokes the session server-side and clears local state either way.
func (s *AuthStore) Logout() Result {
	state := s.State()
	if state.Tokens.RefreshToken != "" {
		s.api.Post("/api/users/logout", "", map[string]string{ //nolint:errcheck
			"refresh_token": state.Tokens.RefreshToken,
		}, nil)
	}
	s.Dispatch(authAction{kind: authLoggedOut})
	return ok()
}

// UpdateProfile patches the signed-in user's profile.
func (s *AuthStore) UpdateProfile(fields map[string]any) Result {
	state := s.State()
	if !state.Authenticated {
		return failErr(errors.New("not signed in"))
	}

	var env struct {
		User *User `json:"user"`
	}
	if err := s.api.Put("/api/users/profile", state.Tokens.AccessToken, fields, &env); err != nil {
		return failErr(err)
	}

	s.Dispatch(authAction{kind: authProfileUpdated, user: env.User})
	return ok()
}

// ChangePassword swaps the password. The server revokes every session, so
// local state is cleared on success.
func (s *AuthStore) ChangePassword(current, next string) Result {
	state := s.State()
	if !state.Authenticated {
		return failErr(errors.New("not signed in"))
	}

	err := s.api.Put("/api/users/change-password", state.Tokens.AccessToken, map[string]string{
		"current_password": current, "new_password": next,
	}, nil)
	if err != nil {
		return failErr(err)
	}

	s.Dispatch(authAction{kind: authLoggedOut})
	return ok()
}

// ClearError drops the last error from state.
func (s *AuthStore) ClearError() {
	s.Dispatch(authAction{kind: authClearError})
}
