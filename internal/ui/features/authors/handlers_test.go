package authors_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/storefront/internal/actions"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/testutil"
	"github.com/leapstack-labs/storefront/internal/ui/features"
	"github.com/leapstack-labs/storefront/internal/ui/features/authors"
)

var testAuthors = []features.TestAuthor{
	{ID: "a1", Name: "Ada Lovelace", Bio: "Mathematician", Quotes: []string{"That brain of mine is something more than merely mortal."}},
	{ID: "a2", Name: "Grace Hopper", Quotes: []string{"It's easier to ask forgiveness than it is to get permission."}},
}

// setupTestHandlers creates handlers over a seeded fixture.
func setupTestHandlers(t *testing.T) (*authors.Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t, testAuthors...)
	logger := testutil.NewTestLogger(t)
	deleter := actions.NewAuthors(fixture.Store, fixture.Notifier, logger)
	h := authors.NewHandlers(fixture.Store, deleter, fixture.SessionStore, fixture.Notifier, fixture.Cart, logger)
	return h, fixture
}

func TestAuthorsPage(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/authors", nil)
	rec := httptest.NewRecorder()
	h.AuthorsPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/authors/a1"`)
	assert.Contains(t, body, "Grace Hopper")
	assert.Contains(t, body, `data-on-load="@get('/authors/updates')"`)
	assert.Contains(t, body, `data-cart-config="{&#34;mode&#34;:&#34;payment&#34;`)

	_, cached := fixture.Notifier.Cached(actions.AuthorsPath)
	assert.True(t, cached, "list should be cached after first render")
}

func TestAuthorsPage_ServedFromCache(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	h.AuthorsPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/authors", nil))

	// A write that bypasses the action is not visible until invalidation.
	require.NoError(t, fixture.Store.CreateAuthor(context.Background(), &store.Author{ID: "a3", Name: "Barbara Liskov"}))

	rec := httptest.NewRecorder()
	h.AuthorsPage(rec, httptest.NewRequest(http.MethodGet, "/authors", nil))
	assert.NotContains(t, rec.Body.String(), "Barbara Liskov")

	fixture.Notifier.Invalidate(actions.AuthorsPath)

	rec = httptest.NewRecorder()
	h.AuthorsPage(rec, httptest.NewRequest(http.MethodGet, "/authors", nil))
	assert.Contains(t, rec.Body.String(), "Barbara Liskov")
}

func TestAuthorPage(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "existing author with quotes",
			id:         "a1",
			wantStatus: http.StatusOK,
			wantBody:   []string{"Ada Lovelace", "Mathematician", "more than merely mortal", `href="/quotes/a1-q1"`},
		},
		{
			name:       "author without bio",
			id:         "a2",
			wantStatus: http.StatusOK,
			wantBody:   []string{"Grace Hopper", "No biography."},
		},
		{
			name:       "missing author",
			id:         "nope",
			wantStatus: http.StatusNotFound,
			wantBody:   []string{"Author not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t)

			req := httptest.NewRequest(http.MethodGet, "/authors/"+tt.id, nil)
			req = features.RequestWithPathParam(req, "id", tt.id)
			rec := httptest.NewRecorder()
			h.AuthorPage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

type failingStore struct{}

func (failingStore) FetchAuthorByID(context.Context, string) (*store.Author, error) {
	return nil, &store.OpError{Op: "fetch_author", Message: store.MsgFetchAuthor, Err: errors.New("connection reset")}
}

func (failingStore) ListAuthors(context.Context) ([]store.Author, error) {
	return nil, &store.OpError{Op: "list_authors", Message: store.MsgListAuthors, Err: errors.New("connection reset")}
}

func (failingStore) ListQuotesByAuthor(context.Context, string) ([]store.Quote, error) {
	return nil, nil
}

func TestAuthorPage_FetchFailure(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := authors.NewHandlers(failingStore{}, nil, fixture.SessionStore, fixture.Notifier, fixture.Cart, nil)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodGet, "/authors/a1", nil), "id", "a1")
	rec := httptest.NewRecorder()
	h.AuthorPage(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to fetch author")
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestAuthorsPage_ListFailureNotCached(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := authors.NewHandlers(failingStore{}, nil, fixture.SessionStore, fixture.Notifier, fixture.Cart, nil)

	rec := httptest.NewRecorder()
	h.AuthorsPage(rec, httptest.NewRequest(http.MethodGet, "/authors", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), store.MsgListAuthors)
	_, cached := fixture.Notifier.Cached(actions.AuthorsPath)
	assert.False(t, cached)
}

func TestDeleteAuthor_JSON(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	// Warm both caches so the invalidation is observable.
	h.AuthorsPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/authors", nil))
	h.AdminAuthorsPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/authors", nil))

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/admin/authors/a1", nil), "id", "a1")
	rec := httptest.NewRecorder()
	h.DeleteAuthor(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result actions.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, actions.Result{Success: true}, result)

	author, err := fixture.Store.FetchAuthorByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Nil(t, author)

	for _, path := range []string{actions.AuthorsPath, actions.AdminAuthorsPath} {
		_, cached := fixture.Notifier.Cached(path)
		assert.False(t, cached, "%s should be invalidated", path)
	}
}

type failingDeleter struct{}

func (failingDeleter) Delete(context.Context, string) actions.Result {
	return actions.Result{Success: false, Error: store.MsgDeleteAuthor}
}

func TestDeleteAuthor_JSONFailure(t *testing.T) {
	fixture := features.SetupTestFixture(t, testAuthors...)
	h := authors.NewHandlers(fixture.Store, failingDeleter{}, fixture.SessionStore, fixture.Notifier, fixture.Cart, nil)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/admin/authors/a1", nil), "id", "a1")
	rec := httptest.NewRecorder()
	h.DeleteAuthor(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to delete author"}`, rec.Body.String())
}

func TestDeleteAuthor_Datastar(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/admin/authors/a2", nil), "id", "a2")
	req.Header.Set("Datastar-Request", "true")
	rec := httptest.NewRecorder()
	h.DeleteAuthor(rec, req)

	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:"), "flash and table patches")
	assert.Contains(t, body, "Author deleted")
	assert.Contains(t, body, `id="admin-authors"`)
	assert.Contains(t, body, "Ada Lovelace")
	assert.NotContains(t, body, "Grace Hopper")
}

func TestDeleteAuthor_DatastarFailure(t *testing.T) {
	fixture := features.SetupTestFixture(t, testAuthors...)
	h := authors.NewHandlers(fixture.Store, failingDeleter{}, fixture.SessionStore, fixture.Notifier, fixture.Cart, nil)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/admin/authors/a1", nil), "id", "a1")
	req.Header.Set("Datastar-Request", "true")
	rec := httptest.NewRecorder()
	h.DeleteAuthor(rec, req)

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:"))
	assert.Contains(t, body, "flash-error")
	assert.Contains(t, body, store.MsgDeleteAuthor)
}

func TestDeleteAuthorForm_FlashOnNextPage(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/admin/authors/a1/delete", nil), "id", "a1")
	rec := httptest.NewRecorder()
	h.DeleteAuthorForm(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, actions.AdminAuthorsPath, rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/admin/authors", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.AdminAuthorsPage(rec, next)

	body := rec.Body.String()
	assert.Contains(t, body, "flash-success")
	assert.Contains(t, body, "Author deleted")
	assert.NotContains(t, body, "Ada Lovelace")
}

func TestAdminAuthorsPageUpdates_PatchesOnInvalidate(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/authors/updates", nil)
	req, cancel := features.RequestWithTimeout(req, 500*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.AdminAuthorsPageUpdates(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return fixture.Notifier.Listeners(actions.AdminAuthorsPath) == 1
	}, 400*time.Millisecond, 5*time.Millisecond)

	deleter := actions.NewAuthors(fixture.Store, fixture.Notifier, nil)
	require.True(t, deleter.Delete(context.Background(), "a1").Success)

	// Handler returns when the request context times out.
	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, "Grace Hopper")
	assert.NotContains(t, body, "Ada Lovelace")
	assert.Equal(t, 0, fixture.Notifier.Listeners(actions.AdminAuthorsPath))
}

func TestAuthorsPageUpdates_NoInitialState(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/authors/updates", nil)
	req, cancel := features.RequestWithTimeout(req, 50*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	h.AuthorsPageUpdates(rec, req)

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"))
}
