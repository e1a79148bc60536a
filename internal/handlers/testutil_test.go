package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/authgate/api/internal/middleware"
	"github.com/authgate/api/internal/models"
	"github.com/authgate/api/internal/notify"
	"github.com/authgate/api/internal/services"
	"github.com/authgate/api/internal/store"
	"github.com/authgate/api/pkg/logger"
	"github.com/authgate/api/pkg/utils"
)

var testInitOnce sync.Once

// recordingNotifier captures delivered OTP codes so endpoint tests can drive
// the full registration round trip.
type recordingNotifier struct {
	mu        sync.Mutex
	lastCode  map[string]string
	delivered chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		lastCode:  make(map[string]string),
		delivered: make(chan string, 16),
	}
}

func (n *recordingNotifier) Deliver(_ context.Context, identifier, code string) error {
	n.mu.Lock()
	n.lastCode[identifier] = code
	n.mu.Unlock()
	n.delivered <- code
	return nil
}

func (n *recordingNotifier) waitForCode(t *testing.T) string {
	t.Helper()
	select {
	case code := <-n.delivered:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OTP delivery")
		return ""
	}
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	notifier *recordingNotifier
	users    *store.UserStore
	otps     *store.OtpStore
}

var _ notify.Notifier = (*recordingNotifier)(nil)

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testInitOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
		utils.ConfigureHashing(4)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.OtpChallenge{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	users := store.NewUserStore(db)
	otps := store.NewOtpStore(db)
	notifier := newRecordingNotifier()
	authService := services.NewAuthService(users, otps, notifier, 5*time.Minute)

	authHandler := NewAuthHandler(authService)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/version", GetVersion)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/request-otp", authHandler.RequestOTP)
	authRoutes.Post("/verify", authHandler.Verify)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	return &testEnv{
		app:      app,
		db:       db,
		notifier: notifier,
		users:    users,
		otps:     otps,
	}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body []byte, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal request payload: %v", err)
	}
	return performRequest(t, app, method, path, body, headers)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()

	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, wantMessage string) {
	t.Helper()

	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != wantMessage {
		t.Fatalf("expected error %q, got %q", wantMessage, got)
	}
}

// registerAccount drives the request-otp/verify flow end to end.
func registerAccount(t *testing.T, env *testEnv, identifier, password string) {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/request-otp",
		map[string]string{"identifier": identifier}, nil)
	assertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	code := env.notifier.waitForCode(t)

	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/auth/verify",
		map[string]string{"identifier": identifier, "otp": code, "password": password}, nil)
	assertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()
}

func loginAccount(t *testing.T, env *testEnv, identifier, password string) (string, map[string]any) {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login",
		map[string]string{"identifier": identifier, "password": password}, nil)
	assertStatus(t, resp, http.StatusOK)
	body := decodeJSONMap(t, resp)

	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", body["data"])
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("expected non-empty token in login response")
	}
	return token, data
}
