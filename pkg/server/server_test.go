package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/de-tools/pricelist-atlas/pkg/services/catalog"
	"github.com/de-tools/pricelist-atlas/pkg/services/chat"
	"github.com/de-tools/pricelist-atlas/pkg/store/pricelist"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, history []chat.Turn, message string) (string, error) {
	args := m.Called(ctx, history, message)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T, proxy *chat.Proxy) *httptest.Server {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	config := Config{
		Addr:            ":3000",
		ShutdownTimeout: 10 * time.Second,
		Family:          "verifiedpermissions",
		Dependencies: Dependencies{
			Catalog: catalog.NewService(pricelist.NewFSStore("../services/catalog/testdata"), "verifiedpermissions"),
			Chat:    proxy,
			Logger:  logger,
		},
	}
	testServer := httptest.NewServer(ConfigureRouter(config))
	t.Cleanup(testServer.Close)
	return testServer
}

func TestWebAPI_Endpoints(t *testing.T) {
	testServer := newTestServer(t, chat.NewProxy(nil, 0))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "Health",
			path:           "/health",
			expectedStatus: http.StatusOK,
			expected:       api.HealthResponse{Status: "healthy"},
			parseResponse:  unmarshalResponse[api.HealthResponse](),
		},
		{
			name:           "GetAllServices",
			path:           "/api/getAllServices",
			expectedStatus: http.StatusOK,
			expected:       []string{"AWSLambda", "AmazonVerifiedPermissions"},
			parseResponse: func(data []byte) (interface{}, error) {
				var doc domain.ServiceCatalog
				err := json.Unmarshal(data, &doc)
				keys := make([]string, 0, len(doc.Offers))
				for _, k := range []string{"AWSLambda", "AmazonVerifiedPermissions"} {
					if _, ok := doc.Offers[k]; ok {
						keys = append(keys, k)
					}
				}
				return keys, err
			},
		},
		{
			name:           "GetFile_Invalid",
			path:           "/api/verifiedpermissions/bogus",
			expectedStatus: http.StatusBadRequest,
			expected:       api.ErrorResponse{Error: "Invalid file requested"},
			parseResponse:  unmarshalResponse[api.ErrorResponse](),
		},
		{
			name:           "GetRegionFile_Missing",
			path:           "/api/verifiedpermissions/regions/us-east-1",
			expectedStatus: http.StatusNotFound,
			expected:       api.ErrorResponse{Error: "File not found or invalid JSON"},
			parseResponse:  unmarshalResponse[api.ErrorResponse](),
		},
		{
			name:           "GetDurations",
			path:           "/api/durations",
			expectedStatus: http.StatusOK,
			expected: []api.Option{
				{Label: "On-Demand", Value: "OnDemand"},
				{Label: "Reserved", Value: "Reserved"},
			},
			parseResponse: unmarshalResponse[[]api.Option](),
		},
		{
			name:           "GetProductOptions",
			path:           "/api/options/products?region=us-east-1",
			expectedStatus: http.StatusOK,
			expected: []api.Option{
				{Label: "PolicyStoreCalls", Value: "PolicyStoreCalls"},
				{Label: "Requests", Value: "Requests"},
			},
			parseResponse: unmarshalResponse[[]api.Option](),
		},
		{
			name:           "GetPricingTable",
			path:           "/api/pricing/table?version=20250301000000&region=us-east-1&product=Requests&duration=OnDemand",
			expectedStatus: http.StatusOK,
			expected: api.PricingTable{
				State: "ready",
				Rows: []api.PricingRow{{
					UsageType:   "Requests",
					RegionCodes: "us-east-1",
					Locations:   "US East (N. Virginia)",
					Description: "$0.000004 per authorization request",
					PriceRange:  "0.000004",
					MinPrice:    0.000004,
					MaxPrice:    0.000004,
					Unit:        "Requests",
				}},
				VersionBegin: "2025-03-01",
				VersionEnd:   "N/A",
			},
			parseResponse: unmarshalResponse[api.PricingTable](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_Chatbot(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		testServer := newTestServer(t, chat.NewProxy(nil, 0))

		resp, err := http.Post(testServer.URL+"/api/chatbot", "application/json",
			strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"reply":"Gemini API key not configured."}`, string(body))
	})

	t.Run("configured", func(t *testing.T) {
		completer := new(mockCompleter)
		completer.On("Complete", mock.Anything, []chat.Turn{}, "hi").Return("hello", nil)
		testServer := newTestServer(t, chat.NewProxy(completer, 0))

		resp, err := http.Post(testServer.URL+"/api/chatbot", "application/json",
			strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"reply":"hello"}`, string(body))
	})
}

func TestWebAPI_CORSAndMetrics(t *testing.T) {
	testServer := newTestServer(t, chat.NewProxy(nil, 0))

	req, err := http.NewRequest(http.MethodGet, testServer.URL+"/api/durations", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pricelist_atlas_http_requests_total{code="200",method="GET",route="/api/durations"} 1`)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
