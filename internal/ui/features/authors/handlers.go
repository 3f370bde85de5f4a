// Package authors provides the public and admin author pages.
package authors

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/storefront/internal/actions"
	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/ui/features/common"
	"github.com/leapstack-labs/storefront/internal/ui/notifier"
)

// AuthorStore is the slice of the store the author pages read from.
type AuthorStore interface {
	FetchAuthorByID(ctx context.Context, id string) (*store.Author, error)
	ListAuthors(ctx context.Context) ([]store.Author, error)
	ListQuotesByAuthor(ctx context.Context, authorID string) ([]store.Quote, error)
}

// Deleter performs the author delete action.
type Deleter interface {
	Delete(ctx context.Context, id string) actions.Result
}

// Handlers provides HTTP handlers for the authors feature.
type Handlers struct {
	store        AuthorStore
	actions      Deleter
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	cartConfig   cart.ProviderConfig
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	st AuthorStore,
	deleter Deleter,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	cartConfig cart.ProviderConfig,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:        st,
		actions:      deleter,
		sessionStore: sessionStore,
		notifier:     notify,
		cartConfig:   cartConfig,
		logger:       logger,
	}
}

func (h *Handlers) pageData(w http.ResponseWriter, r *http.Request, title, path, updates string) common.PageData {
	return common.PageData{
		Title:       title,
		CurrentPath: path,
		CartConfig:  h.cartConfig.JSON(),
		Flash:       common.PopFlash(h.sessionStore, w, r),
		UpdatesURL:  updates,
	}
}

// renderList returns the list fragment for path, rendering it only when
// the cached copy has been invalidated.
func (h *Handlers) renderList(ctx context.Context, path string, view func([]store.Author) templ.Component) ([]byte, error) {
	return h.notifier.Render(path, func(w io.Writer) error {
		authors, err := h.store.ListAuthors(ctx)
		if err != nil {
			return err
		}
		return view(authors).Render(ctx, w)
	})
}

func (h *Handlers) listPage(w http.ResponseWriter, r *http.Request, title, path string, view func([]store.Author) templ.Component) {
	body, err := h.renderList(r.Context(), path, view)
	data := h.pageData(w, r, title, path, path+"/updates")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = common.Layout(data, common.Message("Something went wrong", err.Error())).Render(r.Context(), w)
		return
	}

	if err := common.Layout(data, templ.Raw(string(body))).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "path", path, "error", err)
	}
}

// listUpdates is the long-lived SSE endpoint for a list page. It sends
// nothing up front; the page itself was server-rendered. Each invalidation
// of path patches in a fresh render.
func (h *Handlers) listUpdates(w http.ResponseWriter, r *http.Request, path string, view func([]store.Author) templ.Component) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(path)
	defer h.notifier.Unsubscribe(path, updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			body, err := h.renderList(ctx, path, view)
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(templ.Raw(string(body))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// AuthorsPage renders the public author list.
func (h *Handlers) AuthorsPage(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, "Authors", actions.AuthorsPath, AuthorsList)
}

// AuthorsPageUpdates streams re-renders of the public author list.
func (h *Handlers) AuthorsPageUpdates(w http.ResponseWriter, r *http.Request) {
	h.listUpdates(w, r, actions.AuthorsPath, AuthorsList)
}

// AdminAuthorsPage renders the admin author table.
func (h *Handlers) AdminAuthorsPage(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, "Manage authors", actions.AdminAuthorsPath, AdminAuthorsList)
}

// AdminAuthorsPageUpdates streams re-renders of the admin author table.
func (h *Handlers) AdminAuthorsPageUpdates(w http.ResponseWriter, r *http.Request) {
	h.listUpdates(w, r, actions.AdminAuthorsPath, AdminAuthorsList)
}

// AuthorPage renders one author and their quotes.
func (h *Handlers) AuthorPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	data := h.pageData(w, r, "Author", actions.AuthorsPath, "")

	author, err := h.store.FetchAuthorByID(ctx, id)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = common.Layout(data, common.Message("Something went wrong", err.Error())).Render(ctx, w)
		return
	}
	if author == nil {
		w.WriteHeader(http.StatusNotFound)
		_ = common.Layout(data, common.Message("Author not found", "No author has id "+id+".")).Render(ctx, w)
		return
	}

	quotes, err := h.store.ListQuotesByAuthor(ctx, author.ID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = common.Layout(data, common.Message("Something went wrong", err.Error())).Render(ctx, w)
		return
	}

	data.Title = author.Name
	if err := common.Layout(data, AuthorDetail(author, quotes)).Render(ctx, w); err != nil {
		h.logger.ErrorContext(ctx, "failed to render author", "id", id, "error", err)
	}
}

func resultFlash(result actions.Result) *common.Flash {
	if result.Success {
		return &common.Flash{Kind: common.FlashSuccess, Message: "Author deleted"}
	}
	return &common.Flash{Kind: common.FlashError, Message: result.Error}
}

// DeleteAuthor runs the delete action. Datastar requests get the flash and
// the refreshed admin table patched in over SSE; anything else gets the
// action result as JSON.
func (h *Handlers) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := h.actions.Delete(ctx, chi.URLParam(r, "id"))

	if r.Header.Get("Datastar-Request") != "true" {
		status := http.StatusOK
		if !result.Success {
			status = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(common.FlashBanner(resultFlash(result))); err != nil {
		return
	}
	if !result.Success {
		return
	}

	body, err := h.renderList(ctx, actions.AdminAuthorsPath, AdminAuthorsList)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = sse.PatchElementTempl(templ.Raw(string(body)))
}

// DeleteAuthorForm is the no-script delete: it stores the outcome as a
// flash and redirects back to the admin table.
func (h *Handlers) DeleteAuthorForm(w http.ResponseWriter, r *http.Request) {
	result := h.actions.Delete(r.Context(), chi.URLParam(r, "id"))

	if err := common.SetFlash(h.sessionStore, w, r, *resultFlash(result)); err != nil {
		h.logger.WarnContext(r.Context(), "failed to save flash", "error", err)
	}
	http.Redirect(w, r, actions.AdminAuthorsPath, http.StatusSeeOther)
}
