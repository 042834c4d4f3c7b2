package tester

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/relay"
	"github.com/router-for-me/GraphQLTester/internal/security"
	"github.com/router-for-me/GraphQLTester/internal/session"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/store"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "jwt-test-secret"
	upstreamAPIKey = "sk-upstream-7f3a9c"
)

type testServer struct {
	router   *gin.Engine
	slots    *store.MemorySlots
	upstream *httptest.Server
	hits     *atomic.Int32
	lastBody *atomic.Value
}

func newTestServer(t *testing.T, upstreamResponse string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hits := &atomic.Int32{}
	lastBody := &atomic.Value{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		lastBody.Store(string(data))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, upstreamResponse)
	}))
	t.Cleanup(upstream.Close)

	verifier := session.NewJWTVerifier(testSecret, "")
	client, err := relay.NewClient(relay.Config{BaseURL: upstream.URL, APIKey: upstreamAPIKey})
	require.NoError(t, err)

	slots := store.NewMemorySlots()
	router := gin.New()
	RegisterTesterRoutes(router, Deps{
		Verifier: verifier,
		Registry: workbench.NewRegistry(slots, workbench.DefaultIdleTTL),
		Sender:   relay.NewAction(verifier, client),
		Snippets: snippet.Options{BaseURL: upstream.URL},
	})
	return &testServer{router: router, slots: slots, upstream: upstream, hits: hits, lastBody: lastBody}
}

func userToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := security.GenerateToken(testSecret, userID, "biz_1", time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(session.DefaultHeader, token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) workbench.State {
	t.Helper()
	var state workbench.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func TestRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, `{}`)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v0/tester/session"},
		{http.MethodGet, "/v0/tester/draft"},
		{http.MethodPost, "/v0/tester/send"},
		{http.MethodGet, "/v0/tester/history"},
	} {
		rec := srv.do(t, tc.method, tc.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}

	rec := srv.do(t, http.MethodGet, "/v0/tester/config", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected public config without session, got %d", rec.Code)
	}
}

func TestSessionReturnsIdentity(t *testing.T) {
	srv := newTestServer(t, `{}`)
	rec := srv.do(t, http.MethodGet, "/v0/tester/session", userToken(t, "user_1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id":"user_1","company_id":"biz_1"}`, rec.Body.String())
}

func TestSendRoundTripRecordsHistory(t *testing.T) {
	srv := newTestServer(t, `{"data":{"me":{"id":"123"}}}`)
	token := userToken(t, "user_1")

	rec := srv.do(t, http.MethodPut, "/v0/tester/draft", token,
		`{"endpoint":"getUser","query":"{ me { id } }","variables":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeState(t, rec).CanSubmit)

	rec = srv.do(t, http.MethodPost, "/v0/tester/send", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"me":{"id":"123"}}}`, rec.Body.String())
	require.Equal(t, `{"query":"{ me { id } }","operationName":"getUser"}`, srv.lastBody.Load())

	rec = srv.do(t, http.MethodGet, "/v0/tester/history", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"entries":[{"endpoint":"getUser","query":"{ me { id } }","variables":""}],"max":20}`,
		rec.Body.String())

	// Another user sees nothing.
	rec = srv.do(t, http.MethodGet, "/v0/tester/history", userToken(t, "user_2"), "")
	require.JSONEq(t, `{"entries":[],"max":20}`, rec.Body.String())
}

func TestSendBodyOverridesStaleDraft(t *testing.T) {
	srv := newTestServer(t, `{"data":{"user":{"id":"2"}}}`)
	token := userToken(t, "user_1")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token,
		`{"endpoint":"getUse","query":"{ me }","variables":""}`)
	rec := srv.do(t, http.MethodPost, "/v0/tester/send", token,
		`{"endpoint":"getUser","query":"query($id: ID!) { user(id: $id) { id } }","variables":"{\"id\":\"2\"}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"user":{"id":"2"}}}`, rec.Body.String())
	require.JSONEq(t,
		`{"query":"query($id: ID!) { user(id: $id) { id } }","variables":{"id":"2"},"operationName":"getUser"}`,
		srv.lastBody.Load().(string))

	rec = srv.do(t, http.MethodGet, "/v0/tester/draft", token, "")
	require.Equal(t, "getUser", decodeState(t, rec).Draft.Endpoint)

	rec = srv.do(t, http.MethodGet, "/v0/tester/history", token, "")
	require.JSONEq(t,
		`{"entries":[{"endpoint":"getUser","query":"query($id: ID!) { user(id: $id) { id } }","variables":"{\"id\":\"2\"}"}],"max":20}`,
		rec.Body.String())
}

func TestSendBodyIsRevalidated(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token,
		`{"endpoint":"getUser","query":"{ me { id } }","variables":""}`)
	rec := srv.do(t, http.MethodPost, "/v0/tester/send", token,
		`{"endpoint":"getUser","query":"{ me { id } }","variables":"{bad"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"variables"`)
	require.Equal(t, int32(0), srv.hits.Load())

	rec = srv.do(t, http.MethodPost, "/v0/tester/send", token, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, int32(0), srv.hits.Load())
}

func TestSendRejectsInvalidDraft(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token,
		`{"endpoint":"getUser","query":"{ me { id } }","variables":"{bad"}`)
	rec := srv.do(t, http.MethodPost, "/v0/tester/send", token, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"variables"`)
	require.Equal(t, int32(0), srv.hits.Load())
}

func TestUpdateDraftKeepsOmittedFields(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"endpoint":"getUser","query":"{ me { id } }"}`)
	rec := srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"variables":"{\"id\": 1}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.Equal(t, "getUser", state.Draft.Endpoint)
	require.Equal(t, `{"id": 1}`, state.Draft.Variables)

	rec = srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormatRoutes(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"query":"{ me { id } }","variables":"{\"a\":1}"}`)

	rec := srv.do(t, http.MethodPost, "/v0/tester/format/variables", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "{\n    \"a\": 1\n}", decodeState(t, rec).Draft.Variables)

	rec = srv.do(t, http.MethodPost, "/v0/tester/format/query", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decodeState(t, rec).Draft.Query, "me")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"query":"{ me { "}`)
	rec = srv.do(t, http.MethodPost, "/v0/tester/format/query", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "{ me { ", decodeState(t, rec).Draft.Query)
}

func TestValidateRoute(t *testing.T) {
	srv := newTestServer(t, `{}`)
	rec := srv.do(t, http.MethodPost, "/v0/tester/validate", userToken(t, "user_1"),
		`{"query":"{ me { id } }","variables":"[1,"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Query     struct{ Valid bool } `json:"query"`
		Variables struct{ Valid bool } `json:"variables"`
		CanSubmit bool                 `json:"can_submit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Query.Valid)
	require.False(t, body.Variables.Valid)
	require.False(t, body.CanSubmit)
}

func TestSnippetRoute(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")
	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"endpoint":"getUser","query":"{ me { id } }"}`)

	rec := srv.do(t, http.MethodPost, "/v0/tester/snippet?format=curl", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Format        string          `json:"format"`
		Snippet       string          `json:"snippet"`
		CopiedFlashMS int64           `json:"copied_flash_ms"`
		State         workbench.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "curl", body.Format)
	require.Contains(t, body.Snippet, "$GRAPHQL_API_KEY")
	require.NotContains(t, body.Snippet, upstreamAPIKey)
	require.Equal(t, int64(750), body.CopiedFlashMS)
	require.True(t, body.State.Copied)

	rec = srv.do(t, http.MethodPost, "/v0/tester/snippet?format=python", token, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnippetNeverEmbedsUpstreamKey(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")
	srv.do(t, http.MethodPut, "/v0/tester/draft", token,
		`{"endpoint":"getUser","query":"{ me { id } }","variables":"{\"id\": 1}"}`)

	for _, format := range []string{"js", "curl"} {
		rec := srv.do(t, http.MethodPost, "/v0/tester/snippet?format="+format, token, "")
		require.Equal(t, http.StatusOK, rec.Code, format)
		var body struct {
			Snippet string `json:"snippet"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.Snippet, format)
		require.NotContains(t, body.Snippet, upstreamAPIKey, format)
		require.Contains(t, body.Snippet, "GRAPHQL_API_KEY", format)
	}
}

func TestHistorySelectAndClear(t *testing.T) {
	srv := newTestServer(t, `{"data":{}}`)
	token := userToken(t, "user_1")

	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"endpoint":"first","query":"{ a }"}`)
	srv.do(t, http.MethodPost, "/v0/tester/send", token, "")
	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"endpoint":"second","query":"{ b }"}`)
	srv.do(t, http.MethodPost, "/v0/tester/send", token, "")

	rec := srv.do(t, http.MethodPost, "/v0/tester/history/1/select", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.Equal(t, "first", state.Draft.Endpoint)
	require.Equal(t, "{ a }", state.Draft.Query)

	rec = srv.do(t, http.MethodPost, "/v0/tester/history/7/select", token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(t, http.MethodPost, "/v0/tester/history/x/select", token, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/v0/tester/history", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodGet, "/v0/tester/history", token, "")
	require.JSONEq(t, `{"entries":[],"max":20}`, rec.Body.String())
}

func TestClearDraftRoute(t *testing.T) {
	srv := newTestServer(t, `{}`)
	token := userToken(t, "user_1")
	srv.do(t, http.MethodPut, "/v0/tester/draft", token, `{"endpoint":"getUser"}`)

	rec := srv.do(t, http.MethodDelete, "/v0/tester/draft", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeState(t, rec).Draft.IsZero())
}
