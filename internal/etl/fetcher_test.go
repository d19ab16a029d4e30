package etl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maya/screenrank/internal/config"
	"github.com/stretchr/testify/require"
)

func newFetcherForTest(t *testing.T, baseURL string) *SourceFetcher {
	t.Helper()
	return NewSourceFetcher(&config.ETLConfig{
		BaseURL: baseURL + "/",
		DataDir: t.TempDir(),
		Timeout: 5 * time.Second,
	})
}

func TestFetchSkipsDownloadWhenSizeMatches(t *testing.T) {
	payload := []byte("tconst\taverageRating\tnumVotes\ntt0000001\t8.0\t1000\n")
	var gets, heads atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			heads.Add(1)
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			gets.Add(1)
			w.Write(payload)
		}
	}))
	t.Cleanup(srv.Close)

	f := newFetcherForTest(t, srv.URL)
	ctx := context.Background()

	path, err := f.Fetch(ctx, DatasetRatings)
	require.NoError(t, err)
	require.EqualValues(t, 1, gets.Load())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, len(payload), info.Size())

	// Second fetch sees a size match and short-circuits
	path2, err := f.Fetch(ctx, DatasetRatings)
	require.NoError(t, err)
	require.Equal(t, path, path2)
	require.EqualValues(t, 1, gets.Load())
	require.EqualValues(t, 2, heads.Load())
}

func TestFetchDownloadsWhenProbeFails(t *testing.T) {
	payload := []byte("data\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	f := newFetcherForTest(t, srv.URL)

	path, err := f.Fetch(context.Background(), DatasetPeople)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFetchRedownloadsWhenLocalSizeDiffers(t *testing.T) {
	payload := []byte("fresh contents longer than the stale copy\n")
	var gets atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	f := newFetcherForTest(t, srv.URL)
	ctx := context.Background()

	// Stale local copy with a different size
	require.NoError(t, os.MkdirAll(f.dataDir, 0755))
	localPath := f.dataDir + "/" + DatasetTitles.Filename()
	require.NoError(t, os.WriteFile(localPath, []byte("stale"), 0644))

	path, err := f.Fetch(ctx, DatasetTitles)
	require.NoError(t, err)
	require.EqualValues(t, 1, gets.Load())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFetchWrapsDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	f := newFetcherForTest(t, srv.URL)

	_, err := f.Fetch(context.Background(), DatasetCredits)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, DatasetCredits, fetchErr.Dataset)
}
