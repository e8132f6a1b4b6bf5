package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...func(*EstimateConfig)) *httptest.Server {
	t.Helper()
	cfg := &Config{
		Estimate: EstimateConfig{
			Timeout:    time.Minute,
			MaxSamples: 100000,
			MaxWorkers: 2,
			MaxRounds:  1000,
			LogLevel:   "disabled",
		},
	}
	for _, opt := range opts {
		opt(&cfg.Estimate)
	}
	server := httptest.NewServer(NewRouter(NewHandlers(cfg)))
	t.Cleanup(server.Close)
	return server
}

type decodedResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, method, url string, body interface{}) (*http.Response, decodedResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out decodedResponse
	if resp.ContentLength != 0 {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func electionBody(first, second int) map[string]interface{} {
	return electionBodyWithDispersion(first, second, 0.01)
}

func electionBodyWithDispersion(first, second int, sigma float64) map[string]interface{} {
	return map[string]interface{}{
		"candidates":  2,
		"voters":      3,
		"designated":  1,
		"references":  [][]int{{first, second}, {first, second}, {first, second}},
		"dispersions": []float64{sigma, sigma, sigma},
		"epsilon":     0.1,
		"delta":       0.05,
	}
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, http.MethodGet, server.URL+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	assert.Equal(t, resp.Header.Get(requestIDHeader), body.RequestID)
}

func TestListMethods(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, http.MethodGet, server.URL+"/api/v1/methods", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var methods []map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &methods))
	require.Len(t, methods, 2)
	assert.Equal(t, "montecarlo", methods[0]["name"])
	assert.Equal(t, "lll", methods[1]["name"])
}

func TestCreateEstimate(t *testing.T) {
	server := newTestServer(t)
	seed := int64(42)

	resp, body := do(t, http.MethodPost, server.URL+"/api/v1/estimates", map[string]interface{}{
		"election": electionBody(1, 2),
		"samples":  1000,
		"seed":     seed,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Error)
	assert.True(t, body.Success)

	var report struct {
		Samples    int   `json:"samples"`
		Seed       int64 `json:"seed"`
		MonteCarlo *struct {
			Estimate float64 `json:"estimate"`
		} `json:"montecarlo"`
		LLL *struct {
			Estimate float64 `json:"estimate"`
		} `json:"lll"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &report))
	assert.Equal(t, 1000, report.Samples)
	assert.Equal(t, seed, report.Seed)
	require.NotNil(t, report.MonteCarlo)
	require.NotNil(t, report.LLL)
	assert.InDelta(t, 1.0, report.MonteCarlo.Estimate, 0.03)
	assert.InDelta(t, 1.0, report.LLL.Estimate, 0.03)
}

func TestCreateEstimateSingleMethod(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, http.MethodPost, server.URL+"/api/v1/estimates", map[string]interface{}{
		"election": electionBody(2, 1),
		"method":   "montecarlo",
		"samples":  500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Error)

	var report map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body.Data, &report))
	assert.Contains(t, report, "montecarlo")
	assert.NotContains(t, report, "lll")
}

func TestCreateEstimateNotConverged(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, http.MethodPost, server.URL+"/api/v1/estimates", map[string]interface{}{
		"election":   electionBody(2, 1),
		"method":     "lll",
		"samples":    100,
		"max_rounds": 2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)

	var report map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body.Data, &report))
	assert.Contains(t, report, "lll")
}

func TestCreateEstimateRejectsBadRequests(t *testing.T) {
	server := newTestServer(t)

	badElection := electionBody(1, 2)
	badElection["designated"] = 5

	badDispersion := electionBody(1, 2)
	badDispersion["dispersions"] = []float64{0.1, -1, 0.1}

	tinyEpsilon := electionBody(1, 2)
	tinyEpsilon["epsilon"] = 1e-9

	tests := []struct {
		name      string
		body      interface{}
		wantField string
	}{
		{"malformed json", `{"election":`, ""},
		{"unknown field", map[string]interface{}{"election": electionBody(1, 2), "bogus": true}, ""},
		{"designated out of range", map[string]interface{}{"election": badElection}, "designated"},
		{"negative dispersion", map[string]interface{}{"election": badDispersion}, "dispersions[1]"},
		{"unknown method", map[string]interface{}{"election": electionBody(1, 2), "method": "exact"}, "method"},
		{"too many samples", map[string]interface{}{"election": electionBody(1, 2), "samples": 200000}, "samples"},
		{"derived sample count overflows", map[string]interface{}{"election": tinyEpsilon}, "samples"},
		{"round cap over limit", map[string]interface{}{"election": electionBody(1, 2), "max_rounds": 5000}, "max_rounds"},
		{"negative round cap", map[string]interface{}{"election": electionBody(1, 2), "max_rounds": -1}, "max_rounds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, server.URL+"/api/v1/estimates", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.False(t, body.Success)

			if tt.wantField == "" {
				return
			}
			var data struct {
				ValidationErrors map[string]string `json:"validation_errors"`
			}
			require.NoError(t, json.Unmarshal(body.Data, &data))
			assert.Contains(t, data.ValidationErrors, tt.wantField)
		})
	}
}

func TestUnknownEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, http.MethodGet, server.URL+"/api/v1/clusters", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)

	resp, _ = do(t, http.MethodOptions, server.URL+"/api/v1/estimates", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, requestIDHeader, resp.Header.Get("Access-Control-Expose-Headers"))
}

func TestCreateEstimateTimesOutWithinRun(t *testing.T) {
	server := newTestServer(t, func(cfg *EstimateConfig) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.MaxRounds = 1_000_000_000
	})

	start := time.Now()
	resp, body := do(t, http.MethodPost, server.URL+"/api/v1/estimates", map[string]interface{}{
		"election":   electionBodyWithDispersion(2, 1, 1e-12),
		"method":     "lll",
		"samples":    1,
		"max_rounds": 1_000_000_000,
	})
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "deadline exceeded")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestCreateEstimateClampsDefaultRoundCap(t *testing.T) {
	server := newTestServer(t, func(cfg *EstimateConfig) {
		cfg.MaxRounds = 2
	})

	resp, body := do(t, http.MethodPost, server.URL+"/api/v1/estimates", map[string]interface{}{
		"election": electionBody(2, 1),
		"method":   "lll",
		"samples":  50,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var report struct {
		LLL struct {
			LLL struct {
				RoundCap int `json:"round_cap"`
			} `json:"lll"`
		} `json:"lll"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &report))
	assert.Equal(t, 2, report.LLL.LLL.RoundCap)
}
