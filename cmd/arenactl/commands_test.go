package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChallengeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "challenge-api", "timestamp": "2025-05-01T09:30:00"})
	})
	mux.HandleFunc("/api/challenges", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"challenges": []map[string]any{
			{"id": 1, "title": "Two Sum", "difficulty": "Easy", "points": 10, "description": "add"},
			{"id": 2, "title": "LRU Cache", "difficulty": "Medium", "points": 50, "description": "cache"},
		}})
	})
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["solution"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required fields", "missing_fields": []string{"solution"}})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"submission_id": "s1", "challenge_title": "Two Sum", "status": "pending", "score": 0,
			"timestamp": "2025-05-01T09:31:00",
		})
	})
	mux.HandleFunc("/api/submissions/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/submissions/s1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Submission not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "s1", "challenge_id": 1, "challenge_title": "Two Sum", "status": "accepted", "score": 100,
			"submitted_at": "2025-05-01T09:31:00",
		})
	})
	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"leaderboard": []map[string]any{
			{"rank": 1, "participant_name": "Alice", "total_score": 300, "challenges_solved": 3, "last_submission": nil},
			{"rank": 2, "participant_name": "Bob", "total_score": 100, "challenges_solved": 1, "last_submission": nil},
		}})
	})
	mux.HandleFunc("/api/external/weather", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success", "source": "wttr.in", "city": r.URL.Query().Get("city"),
		})
	})
	mux.HandleFunc("/api/external/httpbin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": "upstream timeout"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	srv := fakeChallengeServer(t)
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	err := app.Run(append([]string{"arenactl", "--api", srv.URL}, args...))
	return out.String(), err
}

func TestHealth(t *testing.T) {
	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
	assert.Contains(t, out, "challenge-api")
}

func TestChallenges_Filter(t *testing.T) {
	out, err := run(t, "challenges", "--difficulty", "medium")
	require.NoError(t, err)
	assert.Contains(t, out, "LRU Cache")
	assert.NotContains(t, out, "Two Sum")

	out, err = run(t, "challenges", "--difficulty", "hard")
	require.NoError(t, err)
	assert.Contains(t, out, "No challenges found")
}

func TestSubmit_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.py")
	require.NoError(t, os.WriteFile(path, []byte("def solve(): return 1\n"), 0o644))

	out, err := run(t, "submit", "--participant", "Alice", "--challenge", "1", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Solution Submitted Successfully!")
	assert.Contains(t, out, "s1")
}

func TestSubmit_EmptySolutionRejectedLocally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.py")
	require.NoError(t, os.WriteFile(path, []byte("   \n"), 0o644))

	_, err := run(t, "submit", "--participant", "Alice", "--challenge", "1", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter your solution code")
}

func TestSubmit_DefaultParticipantRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := run(t, "submit", "--participant", "   ", "--challenge", "1", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid name")
}

func TestSubmission_Detail(t *testing.T) {
	out, err := run(t, "submission", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "accepted")
	assert.Contains(t, out, "100/100")

	_, err = run(t, "submission", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load submission details")
}

func TestLeaderboard_MarksParticipant(t *testing.T) {
	out, err := run(t, "leaderboard", "--participant", "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob (You)")
	assert.NotContains(t, out, "Alice (You)")
	assert.Contains(t, out, "#1")
}

func TestExternal_Weather(t *testing.T) {
	out, err := run(t, "external", "weather", "--city", "Paris")
	require.NoError(t, err)
	assert.Contains(t, out, "Weather for Paris")
	assert.Contains(t, out, `"city": "Paris"`)
}

func TestExternal_EnvelopeFailure(t *testing.T) {
	_, err := run(t, "external", "httpbin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestExternal_CustomValidation(t *testing.T) {
	_, err := run(t, "external", "custom", "--url", "https://example.com", "--method", "TRACE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported method: TRACE")
}
