package centralsync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/fivetwenty-io/sophos-central/pkg/centralclient"
)

// Static errors for err113 compliance.
var (
	// ErrSessionClosed is returned by operations on a session that has not
	// been opened or has already been closed.
	ErrSessionClosed = errors.New("session is closed")
	// ErrNilClient is returned by OpenClient when no client is provided.
	ErrNilClient = errors.New("client cannot be nil")
)

// call is one bridged operation queued to the session worker.
type call struct {
	run  func(ctx context.Context)
	done chan struct{}
}

// Session bridges the asynchronous client onto a synchronous surface.
//
// All execution happens on the session's worker goroutine; public methods
// queue their work and block until it has run to completion. The zero value
// is unusable; construct sessions with Open or OpenClient.
type Session struct {
	client central.Client

	mu     sync.Mutex
	closed bool
	calls  chan *call
	done   chan struct{}
}

// Open builds a client from config and starts a session around it. Client
// construction, including token acquisition and data-region discovery, runs
// on the session worker; when it fails the session is closed and the
// construction error is returned.
func Open(config *central.Config) (*Session, error) {
	session := newSession()

	var (
		client   central.Client
		buildErr error
	)

	err := session.submit(func(ctx context.Context) {
		client, buildErr = centralclient.New(ctx, config)
	})
	if err != nil {
		return nil, err
	}

	if buildErr != nil {
		_ = session.Close()

		return nil, fmt.Errorf("opening session: %w", buildErr)
	}

	session.client = client

	return session, nil
}

// OpenClient starts a session around an existing client. The session takes
// over lifecycle responsibility: Close releases the client's idle
// connections.
func OpenClient(client central.Client) (*Session, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	session := newSession()
	session.client = client

	return session, nil
}

func newSession() *Session {
	session := &Session{
		calls: make(chan *call),
		done:  make(chan struct{}),
	}

	go session.worker()

	return session
}

// worker executes queued calls one at a time until the session closes. Each
// call runs to completion before the next is received.
func (s *Session) worker() {
	defer close(s.done)

	for queued := range s.calls {
		queued.run(context.Background())
		close(queued.done)
	}
}

// submit queues fn to the worker and blocks until it has run. The mutex is
// held across the channel send so Close never races a submission.
func (s *Session) submit(fn func(ctx context.Context)) error {
	s.mu.Lock()

	if s.closed || s.calls == nil {
		s.mu.Unlock()

		return ErrSessionClosed
	}

	queued := &call{run: fn, done: make(chan struct{})}
	s.calls <- queued
	s.mu.Unlock()

	<-queued.done

	return nil
}

// Close shuts the session down: queued calls finish, the worker exits, and
// the client's idle connections are released. Close is idempotent and always
// runs its release steps, even after failed operations.
func (s *Session) Close() error {
	s.mu.Lock()

	if s.closed || s.calls == nil {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.calls)
	s.mu.Unlock()

	<-s.done

	if closer, ok := s.client.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}

	return nil
}

// Get performs a GET request against the resolved API host and decodes the
// JSON response into a generic map.
func (s *Session) Get(path string, query url.Values) (map[string]interface{}, error) {
	var (
		result map[string]interface{}
		err    error
	)

	submitErr := s.submit(func(ctx context.Context) {
		result, err = s.client.Get(ctx, path, query)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return result, err
}

// Post performs a POST request with a JSON body and decodes the response
// into a generic map.
func (s *Session) Post(path string, body interface{}) (map[string]interface{}, error) {
	var (
		result map[string]interface{}
		err    error
	)

	submitErr := s.submit(func(ctx context.Context) {
		result, err = s.client.Post(ctx, path, body)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return result, err
}

// Patch performs a PATCH request with a JSON body and decodes the response
// into a generic map.
func (s *Session) Patch(path string, body interface{}) (map[string]interface{}, error) {
	var (
		result map[string]interface{}
		err    error
	)

	submitErr := s.submit(func(ctx context.Context) {
		result, err = s.client.Patch(ctx, path, body)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return result, err
}

// Delete performs a DELETE request and decodes the response into a generic
// map. Empty bodies decode to an empty map.
func (s *Session) Delete(path string) (map[string]interface{}, error) {
	var (
		result map[string]interface{}
		err    error
	)

	submitErr := s.submit(func(ctx context.Context) {
		result, err = s.client.Delete(ctx, path)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return result, err
}

// GetToken returns a valid access token, fetching or refreshing as needed.
func (s *Session) GetToken() (string, error) {
	var (
		token string
		err   error
	)

	submitErr := s.submit(func(ctx context.Context) {
		token, err = s.client.AccessToken(ctx)
	})
	if submitErr != nil {
		return "", submitErr
	}

	return token, err
}

// RefreshToken forces a token refresh regardless of expiry.
func (s *Session) RefreshToken() error {
	var err error

	submitErr := s.submit(func(ctx context.Context) {
		err = s.client.RefreshToken(ctx)
	})
	if submitErr != nil {
		return submitErr
	}

	return err
}

// WhoAmI resolves the authenticated principal and its API hosts.
func (s *Session) WhoAmI() (*central.WhoAmI, error) {
	var (
		identity *central.WhoAmI
		err      error
	)

	submitErr := s.submit(func(ctx context.Context) {
		identity, err = s.client.WhoAmI(ctx)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return identity, err
}

// CollectAll walks a listing path and returns its items as generic maps.
// pageSize and maxPages bound the walk as in central.PaginationOptions, with
// zero meaning the defaults; maxItems greater than zero stops collection
// mid-page once that many items are gathered.
func (s *Session) CollectAll(
	path string,
	params *central.QueryParams,
	pageSize, maxPages, maxItems int,
) ([]map[string]interface{}, error) {
	var (
		items []map[string]interface{}
		err   error
	)

	submitErr := s.submit(func(ctx context.Context) {
		paginator, paginatorErr := s.paginator(path, params, pageSize, maxPages)
		if paginatorErr != nil {
			err = paginatorErr

			return
		}

		if maxItems > 0 {
			items, err = paginator.CollectN(ctx, maxItems)
		} else {
			items, err = paginator.Collect(ctx)
		}
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return items, err
}

// FirstPage fetches only the first page of a listing path.
func (s *Session) FirstPage(
	path string,
	params *central.QueryParams,
	pageSize int,
) (*central.ListResponse[map[string]interface{}], error) {
	var (
		page *central.ListResponse[map[string]interface{}]
		err  error
	)

	submitErr := s.submit(func(ctx context.Context) {
		paginator, paginatorErr := s.paginator(path, params, pageSize, 0)
		if paginatorErr != nil {
			err = paginatorErr

			return
		}

		page, err = paginator.FirstPage(ctx)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	return page, err
}

// EachPage walks a listing path and hands each page to fn, stopping at the
// first error from either the walk or fn. fn executes on the session worker,
// so it must not call back into the session.
func (s *Session) EachPage(
	path string,
	params *central.QueryParams,
	pageSize, maxPages int,
	fn func(page *central.ListResponse[map[string]interface{}]) error,
) error {
	if fn == nil {
		return central.ErrNilPageFunc
	}

	var err error

	submitErr := s.submit(func(ctx context.Context) {
		paginator, paginatorErr := s.paginator(path, params, pageSize, maxPages)
		if paginatorErr != nil {
			err = paginatorErr

			return
		}

		for page, pageErr := range paginator.Pages(ctx) {
			if pageErr != nil {
				err = pageErr

				return
			}

			if fnErr := fn(page); fnErr != nil {
				err = fnErr

				return
			}
		}
	})
	if submitErr != nil {
		return submitErr
	}

	return err
}

// paginator builds a map-decoding paginator over path. Must run on the
// session worker.
func (s *Session) paginator(
	path string,
	params *central.QueryParams,
	pageSize, maxPages int,
) (*central.Paginator[map[string]interface{}], error) {
	base := params.Clone()

	if pageSize > 0 {
		base.PageSize = pageSize
	}

	if base.PageSize == 0 {
		base.PageSize = constants.DefaultPageSize
	}

	fetch := func(ctx context.Context, cursor string) (*central.ListResponse[map[string]interface{}], error) {
		pageParams := base.Clone()
		pageParams.PageFromKey = cursor

		return s.client.List(ctx, path, pageParams)
	}

	paginator, err := central.NewPaginator(fetch, &central.PaginationOptions{
		PageSize: base.PageSize,
		MaxPages: maxPages,
	})
	if err != nil {
		return nil, fmt.Errorf("creating paginator: %w", err)
	}

	return paginator, nil
}
