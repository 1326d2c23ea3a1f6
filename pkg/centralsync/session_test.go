package centralsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/fivetwenty-io/sophos-central/pkg/centralsync"
)

var errScanRejected = errors.New("scan rejected")

// fakeClient stubs the client surface the bridge drives. Unset operations
// panic through the embedded nil interface, which is fine in tests.
type fakeClient struct {
	central.Client

	getFunc     func(ctx context.Context, path string, query url.Values) (map[string]interface{}, error)
	postFunc    func(ctx context.Context, path string, body interface{}) (map[string]interface{}, error)
	patchFunc   func(ctx context.Context, path string, body interface{}) (map[string]interface{}, error)
	deleteFunc  func(ctx context.Context, path string) (map[string]interface{}, error)
	listFunc    func(ctx context.Context, path string, params *central.QueryParams) (*central.ListResponse[map[string]interface{}], error)
	tokenFunc   func(ctx context.Context) (string, error)
	refreshFunc func(ctx context.Context) error
	whoamiFunc  func(ctx context.Context) (*central.WhoAmI, error)

	idleClosed atomic.Bool
}

func (f *fakeClient) Get(ctx context.Context, path string, query url.Values) (map[string]interface{}, error) {
	return f.getFunc(ctx, path, query)
}

func (f *fakeClient) Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	return f.postFunc(ctx, path, body)
}

func (f *fakeClient) Patch(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	return f.patchFunc(ctx, path, body)
}

func (f *fakeClient) Delete(ctx context.Context, path string) (map[string]interface{}, error) {
	return f.deleteFunc(ctx, path)
}

func (f *fakeClient) List(
	ctx context.Context,
	path string,
	params *central.QueryParams,
) (*central.ListResponse[map[string]interface{}], error) {
	return f.listFunc(ctx, path, params)
}

func (f *fakeClient) AccessToken(ctx context.Context) (string, error) {
	return f.tokenFunc(ctx)
}

func (f *fakeClient) RefreshToken(ctx context.Context) error {
	return f.refreshFunc(ctx)
}

func (f *fakeClient) WhoAmI(ctx context.Context) (*central.WhoAmI, error) {
	return f.whoamiFunc(ctx)
}

func (f *fakeClient) CloseIdleConnections() {
	f.idleClosed.Store(true)
}

// mapPage builds one generic list page holding the given item IDs.
func mapPage(nextKey string, ids ...string) *central.ListResponse[map[string]interface{}] {
	page := &central.ListResponse[map[string]interface{}]{
		Pages: central.PageInfo{Size: len(ids), NextKey: nextKey},
	}

	for _, id := range ids {
		page.Items = append(page.Items, map[string]interface{}{"id": id})
	}

	return page
}

func itemIDs(items []map[string]interface{}) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item["id"].(string))
	}

	return ids
}

// pagedClient serves the given pages in order and records the cursor of
// every fetch. The worker serializes fetches, so no locking is needed.
func pagedClient(pages []*central.ListResponse[map[string]interface{}]) (*fakeClient, *[]string) {
	cursors := &[]string{}
	index := 0

	client := &fakeClient{
		listFunc: func(_ context.Context, _ string, params *central.QueryParams) (*central.ListResponse[map[string]interface{}], error) {
			*cursors = append(*cursors, params.PageFromKey)
			page := pages[index]
			index++

			return page, nil
		},
	}

	return client, cursors
}

func TestOpenClient_NilClient(t *testing.T) {
	t.Parallel()

	_, err := centralsync.OpenClient(nil)
	require.ErrorIs(t, err, centralsync.ErrNilClient)
}

func TestSession_RawOperations(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{
		getFunc: func(_ context.Context, path string, query url.Values) (map[string]interface{}, error) {
			assert.Equal(t, "/endpoint/v1/endpoints", path)
			assert.Equal(t, "10", query.Get("pageSize"))

			return map[string]interface{}{"method": "get"}, nil
		},
		postFunc: func(_ context.Context, path string, body interface{}) (map[string]interface{}, error) {
			assert.Equal(t, "/endpoint/v1/endpoints/ep-1/scans", path)
			assert.Equal(t, map[string]string{"comment": "weekly"}, body)

			return map[string]interface{}{"method": "post"}, nil
		},
		patchFunc: func(_ context.Context, _ string, _ interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"method": "patch"}, nil
		},
		deleteFunc: func(_ context.Context, _ string) (map[string]interface{}, error) {
			return map[string]interface{}{}, nil
		},
	}

	session, err := centralsync.OpenClient(fake)
	require.NoError(t, err)

	defer func() { _ = session.Close() }()

	result, err := session.Get("/endpoint/v1/endpoints", url.Values{"pageSize": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, "get", result["method"])

	result, err = session.Post("/endpoint/v1/endpoints/ep-1/scans", map[string]string{"comment": "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "post", result["method"])

	result, err = session.Patch("/endpoint/v1/endpoints/ep-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "patch", result["method"])

	result, err = session.Delete("/endpoint/v1/endpoints/ep-1")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestSession_ErrorsPassThroughUnchanged(t *testing.T) {
	t.Parallel()

	rateLimitErr := &central.RateLimitError{
		APIError:   central.APIError{StatusCode: http.StatusTooManyRequests, Message: "slow down"},
		RetryAfter: 2 * time.Second,
	}

	fake := &fakeClient{
		getFunc: func(_ context.Context, _ string, _ url.Values) (map[string]interface{}, error) {
			return nil, rateLimitErr
		},
	}

	session, err := centralsync.OpenClient(fake)
	require.NoError(t, err)

	defer func() { _ = session.Close() }()

	_, err = session.Get("/common/v1/alerts", nil)
	require.Error(t, err)

	var gotErr *central.RateLimitError

	require.ErrorAs(t, err, &gotErr)
	assert.Same(t, rateLimitErr, gotErr)

	retryAfter, limited := central.IsRateLimit(err)
	assert.True(t, limited)
	assert.Equal(t, 2*time.Second, retryAfter)
}

func TestSession_TokenOperations(t *testing.T) {
	t.Parallel()

	var refreshed atomic.Bool

	fake := &fakeClient{
		tokenFunc: func(_ context.Context) (string, error) {
			return "bridged-token", nil
		},
		refreshFunc: func(_ context.Context) error {
			refreshed.Store(true)

			return nil
		},
		whoamiFunc: func(_ context.Context) (*central.WhoAmI, error) {
			return &central.WhoAmI{ID: "tenant-1", IDType: central.IDTypeTenant}, nil
		},
	}

	session, err := centralsync.OpenClient(fake)
	require.NoError(t, err)

	defer func() { _ = session.Close() }()

	token, err := session.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "bridged-token", token)

	require.NoError(t, session.RefreshToken())
	assert.True(t, refreshed.Load())

	identity, err := session.WhoAmI()
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", identity.ID)
	assert.Equal(t, central.IDTypeTenant, identity.IDType)
}

func TestSession_CollectAll(t *testing.T) {
	t.Parallel()

	t.Run("walks every cursor in order", func(t *testing.T) {
		t.Parallel()

		fake, cursors := pagedClient([]*central.ListResponse[map[string]interface{}]{
			mapPage("K2", "a", "b"),
			mapPage("K3", "c", "d"),
			mapPage("", "e"),
		})

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		items, err := session.CollectAll("/endpoint/v1/endpoints", nil, 0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, itemIDs(items))
		assert.Equal(t, []string{"", "K2", "K3"}, *cursors)
	})

	t.Run("maxItems stops mid page", func(t *testing.T) {
		t.Parallel()

		fake, cursors := pagedClient([]*central.ListResponse[map[string]interface{}]{
			mapPage("K2", "a", "b", "c"),
			mapPage("", "d"),
		})

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		items, err := session.CollectAll("/endpoint/v1/endpoints", nil, 0, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, itemIDs(items))
		assert.Equal(t, []string{""}, *cursors, "collection should stop before the second fetch")
	})

	t.Run("maxPages bounds the walk", func(t *testing.T) {
		t.Parallel()

		fake, cursors := pagedClient([]*central.ListResponse[map[string]interface{}]{
			mapPage("K2", "a"),
			mapPage("K3", "b"),
			mapPage("", "c"),
		})

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		items, err := session.CollectAll("/endpoint/v1/endpoints", nil, 0, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, itemIDs(items))
		assert.Len(t, *cursors, 2)
	})

	t.Run("params carry page size and filters", func(t *testing.T) {
		t.Parallel()

		fake := &fakeClient{
			listFunc: func(_ context.Context, _ string, params *central.QueryParams) (*central.ListResponse[map[string]interface{}], error) {
				assert.Equal(t, 25, params.PageSize)
				assert.Equal(t, []string{"bad"}, params.Filters["healthStatus"])

				return mapPage("", "a"), nil
			},
		}

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		params := central.NewQueryParams().WithFilter("healthStatus", "bad")

		items, err := session.CollectAll("/endpoint/v1/endpoints", params, 25, 0, 0)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("fetch failures surface as pagination errors", func(t *testing.T) {
		t.Parallel()

		notFound := &central.NotFoundError{
			APIError: central.APIError{StatusCode: http.StatusNotFound, Message: "no such listing"},
		}

		fake := &fakeClient{
			listFunc: func(_ context.Context, _ string, _ *central.QueryParams) (*central.ListResponse[map[string]interface{}], error) {
				return nil, notFound
			},
		}

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		_, err = session.CollectAll("/endpoint/v1/nope", nil, 0, 0, 0)
		require.Error(t, err)

		var pageErr *central.PaginationError

		require.ErrorAs(t, err, &pageErr)
		assert.True(t, central.IsNotFound(err), "the cause must stay reachable")
	})
}

func TestSession_FirstPage(t *testing.T) {
	t.Parallel()

	fake, cursors := pagedClient([]*central.ListResponse[map[string]interface{}]{
		mapPage("K2", "a", "b"),
	})

	session, err := centralsync.OpenClient(fake)
	require.NoError(t, err)

	defer func() { _ = session.Close() }()

	page, err := session.FirstPage("/common/v1/alerts", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, itemIDs(page.Items))
	assert.Equal(t, "K2", page.Pages.NextKey)
	assert.Equal(t, []string{""}, *cursors)
}

func TestSession_EachPage(t *testing.T) {
	t.Parallel()

	t.Run("delivers pages in order", func(t *testing.T) {
		t.Parallel()

		fake, _ := pagedClient([]*central.ListResponse[map[string]interface{}]{
			mapPage("K2", "a"),
			mapPage("", "b"),
		})

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		var seen []string

		err = session.EachPage("/endpoint/v1/endpoints", nil, 0, 0,
			func(page *central.ListResponse[map[string]interface{}]) error {
				seen = append(seen, itemIDs(page.Items)...)

				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, seen)
	})

	t.Run("callback errors stop the walk unchanged", func(t *testing.T) {
		t.Parallel()

		fake, cursors := pagedClient([]*central.ListResponse[map[string]interface{}]{
			mapPage("K2", "a"),
			mapPage("", "b"),
		})

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		err = session.EachPage("/endpoint/v1/endpoints", nil, 0, 0,
			func(_ *central.ListResponse[map[string]interface{}]) error {
				return errScanRejected
			})
		require.ErrorIs(t, err, errScanRejected)
		assert.Equal(t, []string{""}, *cursors)
	})

	t.Run("nil callback is rejected", func(t *testing.T) {
		t.Parallel()

		session, err := centralsync.OpenClient(&fakeClient{})
		require.NoError(t, err)

		defer func() { _ = session.Close() }()

		err = session.EachPage("/endpoint/v1/endpoints", nil, 0, 0, nil)
		require.ErrorIs(t, err, central.ErrNilPageFunc)
	})
}

func TestSession_Close(t *testing.T) {
	t.Parallel()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		fake := &fakeClient{}

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		require.NoError(t, session.Close())
		require.NoError(t, session.Close())
		assert.True(t, fake.idleClosed.Load())
	})

	t.Run("releases after failed operations", func(t *testing.T) {
		t.Parallel()

		fake := &fakeClient{
			getFunc: func(_ context.Context, _ string, _ url.Values) (map[string]interface{}, error) {
				return nil, &central.ServerError{
					APIError: central.APIError{StatusCode: http.StatusInternalServerError},
				}
			},
		}

		session, err := centralsync.OpenClient(fake)
		require.NoError(t, err)

		_, err = session.Get("/endpoint/v1/endpoints", nil)
		require.Error(t, err)

		require.NoError(t, session.Close())
		assert.True(t, fake.idleClosed.Load())
	})

	t.Run("operations after close fail", func(t *testing.T) {
		t.Parallel()

		session, err := centralsync.OpenClient(&fakeClient{})
		require.NoError(t, err)
		require.NoError(t, session.Close())

		_, err = session.Get("/endpoint/v1/endpoints", nil)
		require.ErrorIs(t, err, centralsync.ErrSessionClosed)

		_, err = session.Post("/endpoint/v1/endpoints/ep-1/scans", nil)
		require.ErrorIs(t, err, centralsync.ErrSessionClosed)

		_, err = session.GetToken()
		require.ErrorIs(t, err, centralsync.ErrSessionClosed)

		err = session.RefreshToken()
		require.ErrorIs(t, err, centralsync.ErrSessionClosed)

		_, err = session.CollectAll("/endpoint/v1/endpoints", nil, 0, 0, 0)
		require.ErrorIs(t, err, centralsync.ErrSessionClosed)
	})

	t.Run("zero value session is closed", func(t *testing.T) {
		t.Parallel()

		var session centralsync.Session

		_, err := session.Get("/endpoint/v1/endpoints", nil)
		require.ErrorIs(t, err, centralsync.ErrSessionClosed)
		require.NoError(t, session.Close())
	})
}

func TestSession_SerializesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var (
		active     atomic.Int64
		overlapped atomic.Bool
	)

	fake := &fakeClient{
		getFunc: func(_ context.Context, _ string, _ url.Values) (map[string]interface{}, error) {
			if active.Add(1) > 1 {
				overlapped.Store(true)
			}
			defer active.Add(-1)

			time.Sleep(time.Millisecond)

			return map[string]interface{}{}, nil
		},
	}

	session, err := centralsync.OpenClient(fake)
	require.NoError(t, err)

	defer func() { _ = session.Close() }()

	const callers = 10

	var waitGroup sync.WaitGroup

	errs := make([]error, callers)

	for i := range callers {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			_, errs[i] = session.Get("/endpoint/v1/endpoints", nil)
		}()
	}

	waitGroup.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
	}

	assert.False(t, overlapped.Load(), "bridged calls must never run concurrently")
}

func TestOpen_ValidationError(t *testing.T) {
	t.Parallel()

	_, err := centralsync.Open(&central.Config{ClientSecret: "secret"})
	require.ErrorIs(t, err, central.ErrMissingClientID)
}

func TestOpen_EndToEnd(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "session-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"id": "ep-1"}], "pages": {"size": 1}}`))
	}))
	defer apiServer.Close()

	session, err := centralsync.Open(&central.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenURL:     tokenServer.URL,
		BaseURL:      apiServer.URL,
	})
	require.NoError(t, err)

	defer func() { _ = session.Close() }()

	token, err := session.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)

	result, err := session.Get("/endpoint/v1/endpoints", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result["items"])

	items, err := session.CollectAll("/endpoint/v1/endpoints", nil, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ep-1", items[0]["id"])

	require.NoError(t, session.Close())
}
