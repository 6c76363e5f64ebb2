package judge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/infrastructure"
)

func newTestClient(t *testing.T, serverURL string) *CodeforcesClient {
	t.Helper()
	return NewCodeforcesClient(&infrastructure.JudgeConfig{
		CodeforcesBaseURL: serverURL,
		RequestTimeout:    2 * time.Second,
		MaxRetries:        1,
		RetryBackoff:      10 * time.Millisecond,
	}, zap.NewNop())
}

func TestFetchSolvedKeys_DeduplicatesAcceptedSubmissions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user.status", r.URL.Path)
		assert.Equal(t, "tourist", r.URL.Query().Get("handle"))
		w.Write([]byte(`{
			"status": "OK",
			"result": [
				{"id": 1, "verdict": "OK", "problem": {"contestId": 1523, "index": "A"}},
				{"id": 2, "verdict": "OK", "problem": {"contestId": 1523, "index": "A"}},
				{"id": 3, "verdict": "WRONG_ANSWER", "problem": {"contestId": 1523, "index": "B"}},
				{"id": 4, "verdict": "OK", "problem": {"contestId": 1131, "index": "B2"}}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	keys, err := client.FetchSolvedKeys(context.Background(), "tourist")
	require.NoError(t, err)

	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "1523A")
	assert.Contains(t, keys, "1131B2")
	assert.NotContains(t, keys, "1523B")
}

func TestFetchSolvedKeys_JudgeFailureCarriesComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": "FAILED", "comment": "handle: User with handle ghost not found"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchSolvedKeys(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrJudgeUnavailable)
	assert.Contains(t, err.Error(), "ghost not found")
}

func TestFetchSolvedKeys_JudgeFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status": "FAILED", "comment": "nope"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchSolvedKeys(context.Background(), "someone")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchSolvedKeys_RetriesTransportFailureOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Break the first connection mid-response
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{"status": "OK", "result": [{"id": 1, "verdict": "OK", "problem": {"contestId": 1, "index": "A"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	keys, err := client.FetchSolvedKeys(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Contains(t, keys, "1A")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchSolvedKeys_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchSolvedKeys(context.Background(), "someone")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrJudgeUnavailable)
}

func TestFetchSolvedKeys_EmptyHandle(t *testing.T) {
	client := newTestClient(t, "http://unused")
	_, err := client.FetchSolvedKeys(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoJudgeHandle)
}
