package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/medlembra/medlembra/internal/db"
	"github.com/medlembra/medlembra/internal/i18n"
	"github.com/medlembra/medlembra/internal/services"
	"gorm.io/gorm"
)

const testSecretKey = "test-secret-key-with-at-least-32-characters"

type testClock struct {
	mu    sync.Mutex
	value time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.value
}

func (clock *testClock) Advance(duration time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.value = clock.value.Add(duration)
}

type googleVerifierStub struct {
	identities map[string]services.GoogleIdentity
}

func (stub googleVerifierStub) Verify(_ context.Context, idToken string) (services.GoogleIdentity, error) {
	identity, ok := stub.identities[idToken]
	if !ok {
		return services.GoogleIdentity{}, services.ErrGoogleTokenInvalid
	}
	return identity, nil
}

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	clock    *testClock
	handler  *Handler
}

func newTestApp(t *testing.T, options Options) *testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "medlembra-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.LoadEmbedded(i18n.LangPT)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	clock := &testClock{value: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	if options.Now == nil {
		options.Now = clock.Now
	}
	handler, err := NewHandler(database, testSecretKey, time.UTC, i18nManager, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, database: database, clock: clock, handler: handler}
}

func (env *testApp) do(t *testing.T, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (env *testApp) registerUser(t *testing.T, email string, name string) (string, services.UserProfile) {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "StrongPass1",
		"name":     name,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}
	payload := struct {
		Token string               `json:"token"`
		User  services.UserProfile `json:"user"`
	}{}
	decodeJSON(t, response.Body, &payload)
	if payload.Token == "" {
		t.Fatal("expected token in register response")
	}
	return payload.Token, payload.User
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	content, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(content, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(content), err)
	}
}

func readAPIError(t *testing.T, body io.Reader) (string, string) {
	t.Helper()

	payload := map[string]string{}
	decodeJSON(t, body, &payload)
	return payload["code"], payload["error"]
}

func expectAPIError(t *testing.T, response *http.Response, status int, code string) {
	t.Helper()

	if response.StatusCode != status {
		t.Fatalf("expected status %d, got %d", status, response.StatusCode)
	}
	gotCode, message := readAPIError(t, response.Body)
	if gotCode != code {
		t.Fatalf("expected error code %q, got %q (%s)", code, gotCode, message)
	}
	if message == "" || message == code {
		t.Fatalf("expected localized message for %q, got %q", code, message)
	}
}
