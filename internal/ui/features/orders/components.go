package orders

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/ui/features/common"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ordersURL(p OrderSearchParams) string {
	if q := p.Query().Encode(); q != "" {
		return "/orders?" + q
	}
	return "/orders"
}

// OrdersList renders the search form, the current page of orders and the pager.
func OrdersList(page *store.OrderPage, params OrderSearchParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Raw("<section id=\"orders\"><h1>Orders</h1>",
			"<form method=\"get\" action=\"/orders\" role=\"search\">",
			"<input type=\"search\" name=\"q\" placeholder=\"Search by id, email or status\" value=\"").
			Text(params.Q).Raw("\"><button type=\"submit\">Search</button></form>")

		if len(page.Orders) == 0 {
			h.Raw("<p class=\"muted\">No orders found.</p>")
		} else {
			h.Raw("<table><thead><tr><th>Order</th><th>Customer</th><th>Status</th>",
				"<th>Placed</th><th class=\"num\">Total</th></tr></thead><tbody>")
			for _, o := range page.Orders {
				h.Raw("<tr><td><code>").Text(o.ID).Raw("</code></td><td>").
					Text(o.CustomerEmail).Raw("</td><td>").
					Text(o.Status).Raw("</td><td>").
					Text(common.FormatDate(o.CreatedAt)).Raw("</td><td class=\"num\">").
					Text(cart.FormatCents(o.TotalCents, o.Currency)).Raw("</td></tr>")
			}
			h.Raw("</tbody></table>")
		}

		h.Raw("<nav class=\"pager\">")
		if page.Page > 1 {
			h.Raw("<a rel=\"prev\" href=\"").Text(ordersURL(params.WithPage(page.Page - 1))).Raw("\">Previous</a>")
		}
		h.Raw("<span>Page ").Text(itoa(page.Page)).Raw(" of ").Text(itoa(page.TotalPages)).
			Raw(" (").Text(strconv.FormatInt(page.Total, 10)).Raw(" orders)</span>")
		if page.Page < page.TotalPages {
			h.Raw("<a rel=\"next\" href=\"").Text(ordersURL(params.WithPage(page.Page + 1))).Raw("\">Next</a>")
		}
		h.Raw("</nav></section>")
		return h.Err()
	})
}
