package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/spleiner/slussen/internal/app"
	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/logging"
	"github.com/spleiner/slussen/internal/models"
	"github.com/spleiner/slussen/internal/sl"
)

// fakeSL mimics both SL endpoints. Site 9192 serves the recorded fixtures,
// every other site answers with empty lists. With mixed set, site 9192 serves
// departures with one malformed entry and every other site answers 503.
type fakeSL struct {
	server   *httptest.Server
	failing  atomic.Bool
	mixed    atomic.Bool
	requests atomic.Int32
}

func newFakeSL(t *testing.T) *fakeSL {
	t.Helper()
	departures, err := os.ReadFile(filepath.Join("..", "sl", "testdata", "departures_9192.json"))
	require.NoError(t, err)
	deviations, err := os.ReadFile(filepath.Join("..", "sl", "testdata", "deviations.json"))
	require.NoError(t, err)
	mixed, err := os.ReadFile(filepath.Join("..", "sl", "testdata", "departures_mixed.json"))
	require.NoError(t, err)

	fake := &fakeSL{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites/{site}/departures", func(w http.ResponseWriter, r *http.Request) {
		fake.requests.Add(1)
		if fake.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body := departures
		if fake.mixed.Load() {
			if r.PathValue("site") != "9192" {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			body = mixed
		}
		w.Header().Set("Content-Type", "application/json")
		if r.PathValue("site") == "9192" {
			_, _ = w.Write(body)
			return
		}
		_, _ = w.Write([]byte(`{"departures": []}`))
	})
	mux.HandleFunc("GET /messages", func(w http.ResponseWriter, r *http.Request) {
		fake.requests.Add(1)
		if fake.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("site") == "9192" {
			_, _ = w.Write(deviations)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)
	return fake
}

// createTestApi wires a RestAPI against upstream with a single attempt per request.
func createTestApi(t *testing.T, upstream *fakeSL) *RestAPI {
	t.Helper()
	cfg := appconf.Default()
	cfg.Env = appconf.Test
	cfg.RateLimit = 0
	cfg.Upstream.DeparturesBaseURL = upstream.server.URL
	cfg.Upstream.DisruptionsBaseURL = upstream.server.URL
	cfg.Upstream.RetryAttempts = 1
	cfg.Upstream.RetryDelay = 0
	cfg.Upstream.RequestTimeout = 2 * time.Second

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := sl.NewClient(cfg.Upstream, logger)

	application := &app.Application{
		Config: cfg,
		Logger: logger,
		Board:  board.NewManager(cfg, client, logger),
	}
	return NewRestAPI(application)
}

func (api *RestAPI) testHandler() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	return api.Handler(router)
}

// serveApiAndRetrieveEndpoint sets up a test server, makes a request to the
// endpoint, and returns the response and decoded envelope.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, method, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	server := httptest.NewServer(api.testHandler())
	defer server.Close()

	req, err := http.NewRequest(method, server.URL+endpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}

func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*fakeSL, *http.Response, models.ResponseModel) {
	t.Helper()
	upstream := newFakeSL(t)
	api := createTestApi(t, upstream)
	resp, model := serveApiAndRetrieveEndpoint(t, api, http.MethodGet, endpoint)
	return upstream, resp, model
}

func dataMap(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object, got %T", model.Data)
	return data
}

func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	list, ok := dataMap(t, model)["list"].([]interface{})
	require.True(t, ok, "data.list should be an array")
	return list
}
