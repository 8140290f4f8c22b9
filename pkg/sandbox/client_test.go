package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Run(t *testing.T) {
	var gotReq RunRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submissions", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("wait"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(RunResult{
			Stdout:     "42\n",
			StatusID:   StatusAccepted,
			StatusName: "Accepted",
			Time:       0.012,
			Memory:     3400,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	result, err := client.Run(context.Background(), 71, "print(42)", "", "42")
	require.NoError(t, err)

	assert.True(t, result.Passed())
	assert.Equal(t, "42\n", result.Stdout)

	assert.Equal(t, 71, gotReq.LanguageID)
	assert.Equal(t, "print(42)", gotReq.SourceCode)
	assert.Equal(t, "42", gotReq.ExpectedOutput)
	assert.Greater(t, gotReq.CPUTimeLimit, 0.0)
	assert.Greater(t, gotReq.MemoryLimit, 0)
}

func TestClient_Run_WrongAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RunResult{
			Stdout:     "41\n",
			StatusID:   StatusWrongAnswer,
			StatusName: "Wrong Answer",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	result, err := client.Run(context.Background(), 63, "console.log(41)", "", "42")
	require.NoError(t, err)
	assert.False(t, result.Passed())
}

func TestClient_Run_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	_, err := client.Run(context.Background(), 63, "code", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Run_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)

	_, err := client.Run(context.Background(), 63, "code", "", "")
	require.Error(t, err)
}

func TestClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	require.NoError(t, client.HealthCheck(context.Background()))
}
