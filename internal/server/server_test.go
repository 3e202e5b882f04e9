package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/cookbot/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAnswerer returns a canned answer and records the last query
type fakeAnswerer struct {
	answer model.Answer
	last   model.Query
	calls  int
}

func (f *fakeAnswerer) Answer(ctx context.Context, q model.Query) model.Answer {
	f.calls++
	f.last = q
	return f.answer
}

func newTestServer(answerer Answerer, debug bool) *Server {
	return New(model.ServerConfig{Addr: "127.0.0.1:0", Debug: debug}, answerer, zap.NewNop())
}

func postQuery(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeAnswerer{}, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestQuery_Answered(t *testing.T) {
	answerer := &fakeAnswerer{answer: model.Answer{
		RequestID: "req-1",
		Text:      "One-Pot Chicken Soup\n...",
		Intent:    model.IntentRecipeRequestWithCookware,
		Outcome:   model.OutcomeAnswered,
		Stages:    []model.Stage{model.StageStart, model.StageAnswered},
	}}
	s := newTestServer(answerer, false)

	w := postQuery(t, s, `{"query":"chicken soup","cookware":["pot"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chicken soup", answerer.last.Text)
	assert.Equal(t, []string{"pot"}, answerer.last.Cookware)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "One-Pot Chicken Soup\n...", resp["response"])
	assert.Equal(t, true, resp["relevant"])
	assert.Equal(t, "recipe_request_with_cookware", resp["intent"])
	assert.Equal(t, "answered", resp["outcome"])
	assert.Equal(t, false, resp["degraded"])
	assert.Equal(t, "req-1", resp["request_id"])
	assert.NotContains(t, resp, "debug_info")
}

func TestQuery_Refused(t *testing.T) {
	answerer := &fakeAnswerer{answer: model.Answer{
		Text:    "I am a cooking assistant...",
		Intent:  model.IntentOutOfScope,
		Outcome: model.OutcomeRefused,
	}}
	s := newTestServer(answerer, false)

	w := postQuery(t, s, `{"query":"How do I fix my car?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["relevant"])
	assert.Equal(t, "out_of_scope", resp["intent"])
}

func TestQuery_DebugInfo(t *testing.T) {
	recipe := &model.Recipe{Title: "Stovetop Rice", Equipment: []model.CookwareItem{"saucepan"}}
	answerer := &fakeAnswerer{answer: model.Answer{
		Intent:  model.IntentRecipeRequest,
		Outcome: model.OutcomeAnswered,
		Recipe:  recipe,
		Stages:  []model.Stage{model.StageStart, model.StageClassified, model.StageSearched, model.StageAnswered},
	}}
	s := newTestServer(answerer, true)

	w := postQuery(t, s, `{"query":"rice"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		DebugInfo *struct {
			Stages []string      `json:"stages"`
			Recipe *model.Recipe `json:"recipe"`
		} `json:"debug_info"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.DebugInfo)
	assert.Equal(t, []string{"start", "classified", "searched", "answered"}, resp.DebugInfo.Stages)
	assert.Equal(t, "Stovetop Rice", resp.DebugInfo.Recipe.Title)
}

func TestQuery_Unavailable(t *testing.T) {
	answerer := &fakeAnswerer{answer: model.Answer{
		Text:     "Sorry, the cooking assistant is experiencing service problems",
		Intent:   model.IntentTechniqueQuestion,
		Outcome:  model.OutcomeUnavailable,
		Degraded: true,
	}}
	s := newTestServer(answerer, false)

	w := postQuery(t, s, `{"query":"how long do eggs keep?"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp["outcome"])
	assert.Equal(t, true, resp["degraded"])
}

func TestQuery_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"query":`},
		{"missing query", `{"cookware":["pot"]}`},
		{"blank query", `{"query":"   "}`},
		{"wrong type", `{"query":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerer := &fakeAnswerer{}
			s := newTestServer(answerer, false)

			w := postQuery(t, s, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Equal(t, 0, answerer.calls)
		})
	}
}

func TestCORS(t *testing.T) {
	s := New(model.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}}, &fakeAnswerer{}, zap.NewNop())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(&fakeAnswerer{}, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
