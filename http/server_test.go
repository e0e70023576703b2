package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leohentschker/vslint"
	vslinthttp "github.com/leohentschker/vslint/http"
	"github.com/leohentschker/vslint/mock"
)

func validRequest() *vslint.ReviewRequest {
	return &vslint.ReviewRequest{
		Content: "<button>Save</button>",
		Rules: []vslint.Rule{{
			RuleID:      "contrast",
			Description: "If the text has poor contrast against its background, mark it as true; otherwise, mark it as false.",
		}},
		Model:       vslint.Model{Name: "gpt-4o", Key: "sk-test"},
		TestDetails: vslint.TestDetails{Name: "renders save button"},
	}
}

func postReview(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, vslinthttp.ReviewPath, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_DesignReview(t *testing.T) {
	t.Parallel()

	t.Run("returns the service verdict", func(t *testing.T) {
		t.Parallel()
		service := &mock.ReviewService{
			ReviewFn: func(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
				return &vslint.ReviewResponse{
					Name:        req.TestDetails.Name,
					ContentHash: vslint.ContentHash(req.Content),
					Pass:        true,
					Explanation: vslint.PassedExplanation,
					Violations: map[string]vslint.Violation{
						"contrast": {Fail: false, Rule: req.Rules[0].Description},
					},
				}, nil
			},
		}
		server := vslinthttp.NewServer(service)

		rec := postReview(t, server, validRequest())
		require.Equal(t, http.StatusOK, rec.Code)

		var resp vslint.ReviewResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Pass)
		assert.Equal(t, "renders save button", resp.Name)
		assert.Contains(t, resp.Violations, "contrast")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()
		server := vslinthttp.NewServer(&mock.ReviewService{})
		req := httptest.NewRequest(http.MethodPost, vslinthttp.ReviewPath, bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid request", body["error"])
	})

	t.Run("rejects missing content", func(t *testing.T) {
		t.Parallel()
		server := vslinthttp.NewServer(&mock.ReviewService{})
		req := validRequest()
		req.Content = ""
		rec := postReview(t, server, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "content is required")
	})

	t.Run("rejects invalid rules", func(t *testing.T) {
		t.Parallel()
		server := vslinthttp.NewServer(&mock.ReviewService{})
		req := validRequest()
		req.Rules[0].Description = "too short"
		rec := postReview(t, server, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an empty rule set", func(t *testing.T) {
		t.Parallel()
		server := vslinthttp.NewServer(&mock.ReviewService{})
		req := validRequest()
		req.Rules = nil
		rec := postReview(t, server, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "at least one rule is required")
	})

	t.Run("maps service failure to 500", func(t *testing.T) {
		t.Parallel()
		service := &mock.ReviewService{
			ReviewFn: func(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
				return nil, &vslint.ProviderError{Provider: "openai", Cause: fmt.Errorf("rate limited")}
			},
		}
		server := vslinthttp.NewServer(service)
		rec := postReview(t, server, validRequest())
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "rate limited")
	})
}

func TestClient_Review(t *testing.T) {
	t.Parallel()

	t.Run("round-trips through the server", func(t *testing.T) {
		t.Parallel()
		service := &mock.ReviewService{
			ReviewFn: func(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
				return &vslint.ReviewResponse{
					Name:        req.TestDetails.Name,
					ContentHash: vslint.ContentHash(req.Content),
					Pass:        false,
					Explanation: "Text overflows its container.",
					Violations: map[string]vslint.Violation{
						"contrast": {Fail: true, Rule: req.Rules[0].Description},
					},
				}, nil
			},
		}
		ts := httptest.NewServer(vslinthttp.NewServer(service))
		defer ts.Close()

		client := vslinthttp.NewClient(ts.URL)
		resp, err := client.Review(t.Context(), validRequest())
		require.NoError(t, err)
		assert.False(t, resp.ComputePass())
		assert.Equal(t, "Text overflows its container.", resp.Explanation)
		assert.True(t, resp.Violations["contrast"].Fail)
	})

	t.Run("surfaces server error messages", func(t *testing.T) {
		t.Parallel()
		service := &mock.ReviewService{
			ReviewFn: func(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
				return nil, fmt.Errorf("browser crashed")
			},
		}
		ts := httptest.NewServer(vslinthttp.NewServer(service))
		defer ts.Close()

		client := vslinthttp.NewClient(ts.URL)
		_, err := client.Review(t.Context(), validRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "browser crashed")
	})

	t.Run("tolerates trailing slash in base URL", func(t *testing.T) {
		t.Parallel()
		service := &mock.ReviewService{
			ReviewFn: func(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
				return &vslint.ReviewResponse{Pass: true, Violations: map[string]vslint.Violation{}}, nil
			},
		}
		ts := httptest.NewServer(vslinthttp.NewServer(service))
		defer ts.Close()

		client := vslinthttp.NewClient(ts.URL + "/")
		resp, err := client.Review(t.Context(), validRequest())
		require.NoError(t, err)
		assert.True(t, resp.Pass)
	})
}
