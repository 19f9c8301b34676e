package challengeapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/models"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func newServer(t *testing.T, h http.HandlerFunc) (*challengeapi.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return challengeapi.New(srv.URL+"/", challengeapi.WithTimeout(2*time.Second)), srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestListChallenges_DecodesTitleAndNameFallback(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/challenges", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"challenges":[
			{"id":1,"title":"Two Sum","difficulty":"easy","points":100,"examples":[{"input":"[2,7], 9","output":"[0,1]"}]},
			{"id":2,"name":"Valid Parentheses","difficulty":"Medium","points":200}
		],"total":2}`)
	})

	list, err := client.ListChallenges(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Two Sum", list[0].Title)
	assert.Len(t, list[0].Examples, 1)
	assert.Equal(t, "Valid Parentheses", list[1].Title)
	assert.Equal(t, "medium", list[1].DifficultyClass())
}

func TestListChallenges_EmptyIsNotNil(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"total":0}`)
	})

	list, err := client.ListChallenges(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCoreEndpoint_Non2xxIsProtocolError(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		// A 503 with a body that looks successful is still a failure.
		writeJSON(w, http.StatusServiceUnavailable, `{"leaderboard":[]}`)
	})

	_, err := client.Leaderboard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProtocol))
}

func TestCoreEndpoint_UndecodableBody(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>oops</html>`)
	})

	_, err := client.Leaderboard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProtocol))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := challengeapi.New(base)
	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetwork))
}

func TestSubmit_SendsPayloadAndDecodesReceipt(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, map[string]any{
			"challenge_id":     float64(3),
			"solution":         "print(1)",
			"participant_name": "Alice",
		}, got)

		writeJSON(w, http.StatusCreated, `{"submission_id":"s1","challenge_title":"Sum Two","status":"accepted","score":100,"timestamp":"2025-01-01T00:00:00Z"}`)
	})

	receipt, err := client.Submit(context.Background(), models.SubmissionRequest{
		ChallengeID:     3,
		Solution:        "print(1)",
		ParticipantName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", receipt.SubmissionID)
	assert.Equal(t, 100, receipt.Score)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), receipt.Timestamp.UTC())
}

func TestSubmit_ValidationFailureCarriesMissingFields(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"Missing required fields","missing_fields":["solution","participant_name"]}`)
	})

	_, err := client.Submit(context.Background(), models.SubmissionRequest{ChallengeID: 1})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeProtocol, appErr.Code)
	assert.Equal(t, "Missing required fields", appErr.Message)
	assert.Equal(t, []string{"solution", "participant_name"}, appErr.MissingFields)
}

func TestGetSubmission_FastAPIDetailAndEscaping(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/submissions/a%2Fb", r.URL.EscapedPath())
		writeJSON(w, http.StatusNotFound, `{"detail":"Submission not found"}`)
	})

	_, err := client.GetSubmission(context.Background(), "a/b")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Submission not found", appErr.Message)
}

func TestGetSubmission_PythonTimestamps(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"sub_1","challenge_title":"Merge Sort","status":"error","score":null,"submitted_at":"2025-03-04T05:06:07.123456","error_message":"timeout"}`)
	})

	detail, err := client.GetSubmission(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, 0, detail.Score)
	assert.Equal(t, "timeout", detail.ErrorMessage)
	assert.Equal(t, 2025, detail.SubmittedAt.Year())
	assert.Equal(t, 7, detail.SubmittedAt.Second())
}

func TestProxy_SuccessIsDecidedByBodyFlag(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{name: "success flag on 200", status: 200, body: `{"status":"success","source":"httpbin","data":{"a":1}}`},
		{name: "success flag on 502", status: 502, body: `{"status":"success","source":"httpbin"}`},
		{name: "error flag on 200", status: 200, body: `{"status":"error","message":"upstream down"}`, wantCode: errors.ErrCodeApplication},
		{name: "not json", status: 200, body: `not json`, wantCode: errors.ErrCodeProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			res, err := client.HTTPBin(context.Background())
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "httpbin", res.Source)
			assert.Contains(t, res.Pretty, "\n  \"status\": \"success\"")
		})
	}
}

func TestWeather_EncodesCity(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/external/weather", r.URL.Path)
		assert.Equal(t, "São Paulo", r.URL.Query().Get("city"))
		writeJSON(w, http.StatusOK, `{"status":"success","source":"weather"}`)
	})

	_, err := client.Weather(context.Background(), "São Paulo")
	require.NoError(t, err)
}

func TestCustom_OmitsEmptyBody(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "https://example.com", got["url"])
		assert.Equal(t, "GET", got["method"])
		_, hasBody := got["body"]
		assert.False(t, hasBody)
		writeJSON(w, http.StatusOK, `{"status":"success"}`)
	})

	_, err := client.Custom(context.Background(), models.CustomRequest{URL: "https://example.com", Method: "GET"})
	require.NoError(t, err)
}

func TestMetricsRecordOutcomes(t *testing.T) {
	m := metrics.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"error","message":"nope"}`)
	}))
	t.Cleanup(srv.Close)

	client := challengeapi.New(srv.URL, challengeapi.WithMetrics(m))
	_, _ = client.JSONPlaceholder(context.Background())

	assert.Equal(t, 1.0, promtest.ToFloat64(m.UpstreamRequests().WithLabelValues("jsonplaceholder", metrics.OutcomeApplication)))
}
