package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/ratelimit"
)

func TestFetchReturnsHTMLPage(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>Referee fees: $40 per game</body></html>"))
	}))
	defer srv.Close()

	f := New(Config{}, nil, zap.NewNop())
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, 200, page.StatusCode)
	assert.Contains(t, page.HTML, "$40 per game")
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetchSkipsNonHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	f := New(Config{}, nil, zap.NewNop())
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestFetchCapsBodySize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>" + strings.Repeat("x", 64*1024) + "</html>"))
	}))
	defer srv.Close()

	f := New(Config{MaxBytes: 4096}, nil, zap.NewNop())
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.LessOrEqual(t, len(page.HTML), 4096)
}

func TestFetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Config{}, nil, zap.NewNop())
	page, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Nil(t, page)
}

func TestFetchUnreachableHost(t *testing.T) {
	t.Parallel()

	// A server that is already closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := New(Config{Timeout: 2 * time.Second}, nil, zap.NewNop())
	_, err := f.Fetch(context.Background(), url)
	assert.Error(t, err)
}

func TestFetchHonorsPolitenessCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	limiter := ratelimit.New(ratelimit.Config{MinInterval: time.Minute})
	f := New(Config{}, limiter, zap.NewNop())

	// First fetch consumes the host's burst.
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil, nil)
	assert.Equal(t, DefaultUserAgent, f.cfg.UserAgent)
	assert.Equal(t, defaultTimeout, f.cfg.Timeout)
	assert.Equal(t, defaultMaxBytes, f.cfg.MaxBytes)
}
