package client

import (
	"fmt"
	"strings"

	"github.com/shashiranjanraj/bazaar/pkg/http"
)

// Result is how every store operation reports its outcome. Failures are
// values, never panics.
type Result struct {
	Success bool
	Error   string
}

func ok() Result               { return Result{Success: true} }
func failErr(err error) Result { return Result{Error: err.Error()} }

// API is a thin typed wrapper over the REST surface, built on the fluent
// HTTP client.
type API struct {
	base string
}

func NewAPI(baseURL string) *API {
	return &API{base: strings.TrimRight(baseURL, "/")}
}

// errorBody matches the server's JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decode(res *http.Response, dest any) error {
	if !res.OK() {
		var body errorBody
		if err := res.JSON(&body); err == nil && body.Message != "" {
			return fmt.Errorf("%s", body.Message)
		}
		return fmt.Errorf("request failed with status %d", res.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return res.JSON(dest)
}

func (a *API) request(req *http.Request, token string, dest any) error {
	if token != "" {
		req = req.Bearer(token)
	}
	res, err := req.Send()
	if err != nil {
		return err
	}
	return decode(res, dest)
}

// Get performs an authenticated GET and decodes the response into dest.
func (a *API) Get(path, token string, dest any) error {
	return a.request(http.Get(a.base+path), token, dest)
}

// Post sends body as JSON and decodes the response into dest.
func (a *API) Post(path, token string, body, dest any) error {
	req := http.Post(a.base + path)
	if body != nil {
		req = req.Body(body)
	}
	return a.request(req, token, dest)
}

// Put sends body as JSON and decodes the response into dest.
func (a *API) Put(path, token string, body, dest any) error {
	req := http.Put(a.base + path)
	if body != nil {
		req = req.Body(body)
	}
	return a.request(req, token, dest)
}

// Delete performs an authenticated DELETE.
func (a *API) Delete(path, token string, dest any) error {
	return a.request(http.Delete(a.base+path), token, dest)
}
