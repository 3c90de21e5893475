package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/graph"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	// Keep the limiters and bcrypt out of the way; each test fires many
	// requests from the same fake client IP.
	os.Setenv("RATE_LIMIT_MAX", "1000000")
	os.Setenv("AUTH_RATE_LIMIT_MAX", "1000000")
	os.Setenv("BCRYPT_COST", "4")
	os.Exit(m.Run())
}

// api is a fully wired HTTP surface over an isolated in-memory database.
type api struct {
	handler http.Handler
	db      *gorm.DB
}

func newAPI(t *testing.T) *api {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenDSN("sqlite", fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Session{},
		&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.Review{},
	))

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)
	adapter := repositories.NewAuthAdapter(users, products, orders)
	authSvc := services.NewAuthService(sessions, users)

	schema, err := graph.NewSchema(products)
	require.NoError(t, err)

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Users:    controllers.NewUserController(users, authSvc),
		Products: controllers.NewProductController(products),
		Orders:   controllers.NewOrderController(orders),
		Uploads:  controllers.NewUploadController(),
		Health:   controllers.NewHealthController(),
		Auth:     adapter,
		Owners:   adapter,
		Hub:      ws.NewHub(),
		Schema:   schema,
	})

	return &api{handler: r.Handler(), db: db}
}

// do fires a JSON request and decodes the response body into a generic map.
func (a *api) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"%s %s: body %q", method, path, rec.Body.String())
	}
	return rec.Code, decoded
}

// testShipping is a minimal valid shipping address payload.
func testShipping() map[string]string {
	return map[string]string{
		"full_name":   "Pat Buyer",
		"line1":       "1 Main St",
		"city":        "Springfield",
		"postal_code": "12345",
		"country":     "US",
	}
}

// register creates an account through the API and returns its id and tokens.
func (a *api) register(t *testing.T, email, role string) (uint, string, string) {
	t.Helper()

	code, body := a.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":     strings.Split(email, "@")[0],
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, code, "register %s: %v", email, body)

	user := body["user"].(map[string]interface{})
	tokens := body["tokens"].(map[string]interface{})
	return uint(user["id"].(float64)),
		tokens["access_token"].(string),
		tokens["refresh_token"].(string)
}

// promote flips an account to admin directly in the database, then signs
// it back in so the token carries the new role.
func (a *api) promote(t *testing.T, id uint, email string) string {
	t.Helper()

	require.NoError(t, a.db.Model(&models.User{}).Where("id = ?", id).
		Update("role", models.RoleAdmin).Error)

	code, body := a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	return body["tokens"].(map[string]interface{})["access_token"].(string)
}

// addProduct creates a listing as the given seller token. Listing creation
// sits behind the verified-email gate, so the seller is verified first.
func (a *api) addProduct(t *testing.T, token, title string, price float64, stock int) uint {
	t.Helper()

	code, _ := a.do(t, http.MethodPost, "/api/users/verify-email", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := a.do(t, http.MethodPost, "/api/products", token, map[string]interface{}{
		"title":       title,
		"description": "test listing",
		"price":       price,
		"stock":       stock,
		"category":    "electronics",
	})
	require.Equal(t, http.StatusCreated, code, "create product: %v", body)
	return uint(body["product"].(map[string]interface{})["id"].(float64))
}
