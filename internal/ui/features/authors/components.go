package authors

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/ui/features/common"
)

// Element ids patched by SSE updates.
const (
	AuthorsListID      = "authors"
	AdminAuthorsListID = "admin-authors"
)

func authorURL(id string) string {
	return "/authors/" + url.PathEscape(id)
}

func quoteURL(id string) string {
	return "/quotes/" + url.PathEscape(id)
}

func adminAuthorURL(id string) string {
	return "/admin/authors/" + url.PathEscape(id)
}

// AuthorsList renders the public list of authors.
func AuthorsList(authors []store.Author) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Raw("<section id=\"", AuthorsListID, "\"><h1>Authors</h1>")
		if len(authors) == 0 {
			h.Raw("<p class=\"muted\">No authors yet.</p>")
		} else {
			h.Raw("<ul>")
			for _, a := range authors {
				h.Raw("<li><a href=\"").Text(authorURL(a.ID)).Raw("\">").Text(a.Name).Raw("</a></li>")
			}
			h.Raw("</ul>")
		}
		return h.Raw("</section>").Err()
	})
}

// AuthorDetail renders one author with their quotes.
func AuthorDetail(author *store.Author, quotes []store.Quote) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Raw("<article class=\"author\"><h1>").Text(author.Name).Raw("</h1>")
		h.Raw("<p class=\"muted\">").Text(common.Deref(author.Bio, "No biography.")).Raw("</p>")
		h.Raw("<h2>Quotes</h2>")
		if len(quotes) == 0 {
			h.Raw("<p class=\"muted\">No quotes attributed.</p>")
		}
		for _, q := range quotes {
			h.Raw("<blockquote class=\"quote\"><a href=\"").Text(quoteURL(q.ID)).Raw("\">").
				Text(q.Text).Raw("</a></blockquote>")
		}
		return h.Raw("<p><a href=\"/authors\">All authors</a></p></article>").Err()
	})
}

// AdminAuthorsList renders the admin table with a delete control per row.
// The button issues a datastar DELETE; the form is the no-script fallback.
func AdminAuthorsList(authors []store.Author) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Raw("<section id=\"", AdminAuthorsListID, "\"><h1>Manage authors</h1>")
		if len(authors) == 0 {
			return h.Raw("<p class=\"muted\">No authors yet.</p></section>").Err()
		}

		h.Raw("<table><thead><tr><th>Name</th><th>Added</th><th></th></tr></thead><tbody>")
		for _, a := range authors {
			target := adminAuthorURL(a.ID)
			h.Raw("<tr id=\"author-").Text(a.ID).Raw("\"><td><a href=\"").Text(authorURL(a.ID)).Raw("\">").
				Text(a.Name).Raw("</a></td><td>").Text(common.FormatDate(a.CreatedAt)).Raw("</td><td>")
			h.Raw("<form method=\"post\" action=\"").Text(target+"/delete").Raw("\">",
				"<button type=\"submit\" class=\"danger\" data-on-click__prevent=\"@delete('").
				Text(target).Raw("')\">Delete</button></form></td></tr>")
		}
		return h.Raw("</tbody></table></section>").Err()
	})
}
