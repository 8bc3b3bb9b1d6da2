package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoplan/adapters/nucleardata"
	"isoplan/adapters/registry"
	"isoplan/adapters/resultstore"
	"isoplan/app"
	"isoplan/domain/core"
	"isoplan/internal"
	"isoplan/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const lu177Body = `{"route_id":"lu177-direct","conditions":{"flux":1e14,"target_mass_g":0.001,"enrichment":0.75,"irradiation_s":432000,"application":"medical"}}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewPlanningService(reg, nucleardata.Builtin(), resultstore.NewMemory(0), app.ServiceOptions{}, logger)
	s := NewServer(svc, logger)
	t.Cleanup(s.hub.Close)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)

	do(t, s, http.MethodPost, "/v1/evaluate", lu177Body)
	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "isoplan_evaluations_total")
}

func TestListRoutes(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/routes?product=Lu-177", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count       int    `json:"count"`
		Fingerprint string `json:"registry_fingerprint"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.NotEmpty(t, body.Fingerprint)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/routes/nope", "").Code)
}

func TestEvaluateAndReport(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/v1/evaluate", lu177Body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ev ports.Evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.Equal(t, core.RouteID("lu177-direct"), ev.Result.RouteID)
	require.NotEmpty(t, ev.Result.EvaluationID)

	w = do(t, s, http.MethodGet, "/v1/evaluations/"+ev.Result.EvaluationID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/v1/report/"+ev.Result.EvaluationID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "lu177-direct")

	w = do(t, s, http.MethodGet, "/v1/report/"+ev.Result.EvaluationID.String()+"?format=md", "")
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Route lu177-direct"))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/report/unknown", "").Code)
}

func TestEvaluateInlineRoute(t *testing.T) {
	s := newTestServer(t)
	body := `{"route":{"id":"custom","target":"Co-59","product":"Co-60","reaction":"(n,γ)","cross_section_barns":37.2,
		"half_life_days":1925.28,"chemically_separable":true,"carrier_added_acceptable":true,"regulatory":"standard"},
		"conditions":{"flux":1e14,"target_mass_g":1,"irradiation_s":86400,"application":"industrial"}}`
	w := do(t, s, http.MethodPost, "/v1/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEvaluateErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing route", `{"conditions":{"flux":1}}`, http.StatusBadRequest},
		{"unknown route", `{"route_id":"nope","conditions":{"flux":1}}`, http.StatusNotFound},
		{"negative flux", `{"route_id":"lu177-direct","conditions":{"flux":-1,"application":"medical"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/evaluate", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"code"`)
		})
	}
}

func TestBatch(t *testing.T) {
	s := newTestServer(t)
	cond := `{"flux":1e14,"target_mass_g":0.001,"enrichment":0.75,"irradiation_s":432000,"application":"medical"}`
	body := `{"items":[{"route_id":"lu177-direct","conditions":` + cond + `},{"route_id":"nope","conditions":` + cond + `}]}`

	w := do(t, s, http.MethodPost, "/v1/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res app.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Outcomes, 2)
	assert.NotNil(t, res.Outcomes[0].Evaluation)
	assert.NotEmpty(t, res.Outcomes[1].Error)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/v1/batch", `{"items":[]}`).Code)
}

func TestStartBatchAccepted(t *testing.T) {
	s := newTestServer(t)
	cond := `{"flux":1e14,"target_mass_g":0.001,"enrichment":0.75,"irradiation_s":432000,"application":"medical"}`
	w := do(t, s, http.MethodPost, "/v1/batch/async", `{"batch_id":"b-1","items":[{"route_id":"lu177-direct","conditions":`+cond+`}]}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "b-1")

	// the stored evaluation appears once the background batch finishes
	assert.Eventually(t, func() bool {
		w := do(t, s, http.MethodGet, "/v1/evaluations", "")
		return strings.Contains(w.Body.String(), `"count":1`)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestChainCurveAndSource(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/chain",
		`{"isotopes":[{"name":"Mo-99"},{"name":"Tc-99m","parents":[{"parent":"Mo-99","branching_ratio":0.876}]}],"initial":{"Mo-99":1e15},"times_s":[0,86400]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var chain app.ChainResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chain))
	assert.Len(t, chain.Points, 2)

	w = do(t, s, http.MethodPost, "/v1/chain", `{"isotopes":[{"name":"Mo-99"}],"times_s":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/v1/curve",
		`{"route_id":"lu177-direct","conditions":{"flux":1e14,"target_mass_g":0.001,"enrichment":0.75,"irradiation_s":432000,"application":"medical"},"decay_s":86400,"points":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "activity_bq")

	w = do(t, s, http.MethodPost, "/v1/source", `{"source_rate_n_per_s":1e12,"distance_cm":5,"target_radius_cm":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, s, http.MethodPost, "/v1/source", `{"source_rate_n_per_s":1e12,"distance_cm":5,"target_radius_cm":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
