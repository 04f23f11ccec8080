package syncjob_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/catalog"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/sync"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/feature/syncjob"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRemote resolves every search to one fixed candidate.
type fakeRemote struct {
	healthy bool
}

func (f *fakeRemote) FetchOwnedSnapshot(ctx context.Context) (map[string]hardcover.OwnedBook, error) {
	return map[string]hardcover.OwnedBook{}, nil
}

func (f *fakeRemote) SearchByISBN(ctx context.Context, isbn string) []hardcover.SearchCandidate {
	return []hardcover.SearchCandidate{{ID: "42"}}
}

func (f *fakeRemote) SearchByTitle(ctx context.Context, title string) []hardcover.SearchCandidate {
	return []hardcover.SearchCandidate{{ID: "42"}}
}

func (f *fakeRemote) MarkOwned(ctx context.Context, bookID string) bool {
	return true
}

func (f *fakeRemote) CreateBook(ctx context.Context, book hardcover.NewBook) string {
	return "100"
}

func (f *fakeRemote) TestConnection(ctx context.Context) bool {
	return f.healthy
}

// fakeStore serves a two-book library.
type fakeStore struct{}

func (fakeStore) AllIDs(ctx context.Context) ([]int64, error) {
	return []int64{1, 2}, nil
}

func (fakeStore) GetMetadata(ctx context.Context, id int64) (*catalog.Book, error) {
	return &catalog.Book{
		ID:    id,
		Title: fmt.Sprintf("Book %d", id),
		ISBN:  fmt.Sprintf("978044101359%d", id),
	}, nil
}

func newTestApp(t *testing.T, remote *fakeRemote) *fiber.App {
	t.Helper()

	app := fiber.New()
	feature := syncjob.NewFeature(remote, remote, fakeStore{}, zap.NewNop(), sync.Options{})
	require.NoError(t, feature.Load(app))
	return app
}

func TestHandleStartAndPollSync(t *testing.T) {
	app := newTestApp(t, &fakeRemote{healthy: true})

	body := bytes.NewBufferString(`{"ids":[1]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sync", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var started struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	require.NotEmpty(t, started.RunID)

	// Poll until the background run completes.
	deadline := time.Now().Add(5 * time.Second)
	for {
		pollReq := httptest.NewRequest(http.MethodGet, "/api/sync/"+started.RunID, nil)
		pollResp, err := app.Test(pollReq)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, pollResp.StatusCode)

		var run struct {
			Done     bool `json:"done"`
			Progress int  `json:"progress"`
			Result   *struct {
				Added int `json:"added"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(pollResp.Body).Decode(&run))

		if run.Done {
			assert.Equal(t, 100, run.Progress)
			require.NotNil(t, run.Result)
			assert.Equal(t, 1, run.Result.Added)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not complete in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandleGetSyncUnknownID(t *testing.T) {
	app := newTestApp(t, &fakeRemote{})

	req := httptest.NewRequest(http.MethodGet, "/api/sync/no-such-run", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	t.Run("Reachable", func(t *testing.T) {
		app := newTestApp(t, &fakeRemote{healthy: true})

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Unreachable", func(t *testing.T) {
		app := newTestApp(t, &fakeRemote{healthy: false})

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
