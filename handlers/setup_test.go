package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"live-session-backend/config"
	"live-session-backend/handlers"
	"live-session-backend/limiter"
	"live-session-backend/registry"
	"live-session-backend/routes"
	"live-session-backend/service"
	"live-session-backend/websocket"
)

type testDeps struct {
	registry  *registry.Registry
	lifecycle *service.Lifecycle
	hub       *websocket.Hub
}

// SetupTestEnvironment wires the full stack (registry, hub, services,
// router) the same way main.go does, with rate limiting disabled.
func SetupTestEnvironment(t *testing.T, maxParticipants int) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Port:             "0",
		AllowOrigins:     []string{"*"},
		MaxParticipants:  maxParticipants,
		MaxWSConnections: 100,
		GlobalRateLimit:  100,
		UserRateLimit:    10,
	}

	reg := registry.New(cfg.MaxParticipants)
	hub := websocket.NewHub(cfg.MaxWSConnections, logger)
	go hub.Run()

	lifecycle := service.NewLifecycle(reg, hub, logger)
	submission := service.NewSubmission(reg, lifecycle, hub, logger)
	handler := handlers.New(reg, lifecycle, submission, hub, logger)
	rateLimit := handlers.NewRateLimitMiddleware(
		limiter.NewLocalLimiter(cfg.GlobalRateLimit, cfg.GlobalRateLimit*2, cfg.UserRateLimit, cfg.UserRateLimit*2),
		logger)

	router := routes.SetupRouter(cfg, handler, rateLimit)
	return router, &testDeps{registry: reg, lifecycle: lifecycle, hub: hub}
}

// doJSON performs a JSON request against the router
func doJSON(t *testing.T, router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

// decodeBody decodes a JSON response body into a map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// createTestSession creates a session via the API and returns its id
func createTestSession(t *testing.T, router *gin.Engine, moderatorID string) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/sessions", gin.H{"moderator_id": moderatorID})
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeBody(t, w)["session_id"].(string)
}

// joinTestSession joins a participant via the API
func joinTestSession(t *testing.T, router *gin.Engine, sessionID, participantID, name string) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/sessions/"+sessionID+"/join",
		gin.H{"participant_id": participantID, "name": name})
	require.Equal(t, http.StatusCreated, w.Code)
}

// openTestQuestion opens a question via the API and returns (questionID, optionIDs)
func openTestQuestion(t *testing.T, router *gin.Engine, sessionID string, options []string, deadlineSeconds int) (string, []string) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/sessions/"+sessionID+"/questions", gin.H{
		"text":             "Test question?",
		"options":          options,
		"deadline_seconds": deadlineSeconds,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	questionID := body["id"].(string)
	rawOptions := body["options"].([]interface{})
	optionIDs := make([]string, len(rawOptions))
	for i, raw := range rawOptions {
		optionIDs[i] = raw.(map[string]interface{})["id"].(string)
	}
	return questionID, optionIDs
}
