package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL+"/"),
		WithHTTPClient(server.Client()),
		WithLogger(zaptest.NewLogger(t)),
	)
}

func TestRanking(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ranking", r.URL.Path)
		_, _ = w.Write([]byte(`[{"localidade":"BR","sexo":null,"res":[{"nome":"MARIA","frequencia":500,"ranking":1},{"nome":"JOSE","frequencia":480,"ranking":2}]}]`))
	})

	records, err := client.Ranking(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "MARIA", records[0].Nome)
	require.EqualValues(t, 480, records[1].Frequencia)
	require.Equal(t, 2, records[1].Ranking)
}

func TestRankingEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	records, err := client.Ranking(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestRankingStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Ranking(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStatus))
	require.False(t, errors.Is(err, ErrRequestFailed))
}

func TestNameHistoryLowercasesAndEscapes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/joão", r.URL.Path)
		assert.Equal(t, "/jo%C3%A3o", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`[{"nome":"JOAO","res":[{"periodo":"1990","frequencia":120},{"periodo":"2000","frequencia":340}]}]`))
	})

	records, err := client.NameHistory(context.Background(), "  JOÃO ")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "1990", records[0].Periodo)
	require.EqualValues(t, 340, records[1].Frequencia)
}

func TestNameHistoryNotFound(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty body", status: http.StatusOK, body: `[]`, wantErr: ErrNotFound},
		{name: "empty res", status: http.StatusOK, body: `[{"res":[]}]`, wantErr: ErrNotFound},
		{name: "status 404", status: http.StatusNotFound, body: `{}`, wantErr: ErrStatus},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.NameHistory(context.Background(), "xyzabc")
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			require.False(t, errors.Is(err, ErrRequestFailed))
		})
	}
}

func TestNameHistoryEmptyName(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:0"))
	_, err := client.NameHistory(context.Background(), "   ")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url), WithTimeout(time.Second))
	_, err := client.NameHistory(context.Background(), "ana")
	require.True(t, errors.Is(err, ErrRequestFailed), "got %v", err)
	_, err = client.Ranking(context.Background())
	require.True(t, errors.Is(err, ErrRequestFailed), "got %v", err)
	client.httpClient.CloseIdleConnections()
}

func TestUndecodableBodyIsRequestFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	_, err := client.NameHistory(context.Background(), "ana")
	require.True(t, errors.Is(err, ErrRequestFailed), "got %v", err)
}

func TestRankingCoalescesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			close(entered)
		}
		<-release
		_, _ = w.Write([]byte(`[{"res":[{"nome":"ANA","frequencia":1}]}]`))
	})

	var wg sync.WaitGroup
	results := make([]int, 2)
	call := func(i int) {
		defer wg.Done()
		records, err := client.Ranking(context.Background())
		if err == nil {
			results[i] = len(records)
		}
	}
	wg.Add(1)
	go call(0)
	<-entered
	wg.Add(1)
	go call(1)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, hits.Load())
	require.Equal(t, []int{1, 1}, results)
}
