package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/antonminaichev/storefront-orders/internal/types/order"
)

// ConfirmationEmail renders the customer-facing order confirmation.
func ConfirmationEmail(o *order.Order) (subject, body string) {
	subject = fmt.Sprintf("Order confirmation %s", o.OrderNumber)

	var b strings.Builder
	b.WriteString("<h1>Thank you for your order!</h1>")
	fmt.Fprintf(&b, "<p>Hi %s, we received your order <strong>%s</strong>.</p>",
		html.EscapeString(o.FirstName), html.EscapeString(o.OrderNumber))
	writeItemsTable(&b, o)
	fmt.Fprintf(&b, "<p>Total: <strong>%s %s</strong></p>",
		o.TotalPrice.StringFixed(2), html.EscapeString(o.Currency))
	fmt.Fprintf(&b, "<p>Shipping to: %s, %s %s, %s</p>",
		html.EscapeString(o.Street), html.EscapeString(o.PostalCode),
		html.EscapeString(o.City), html.EscapeString(o.Country))
	b.WriteString("<p>We will let you know as soon as your order ships.</p>")
	return subject, b.String()
}

// NotificationEmail renders the internal new-order notification.
func NotificationEmail(o *order.Order) (subject, body string) {
	subject = fmt.Sprintf("New order %s (%s %s)", o.OrderNumber, o.TotalPrice.StringFixed(2), o.Currency)

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New order %s</h2>", html.EscapeString(o.OrderNumber))
	fmt.Fprintf(&b, "<p>Customer: %s &lt;%s&gt;</p>",
		html.EscapeString(o.CustomerName()), html.EscapeString(o.Email))
	fmt.Fprintf(&b, "<p>Payment status: %s</p>", o.PaymentStatus)
	writeItemsTable(&b, o)
	fmt.Fprintf(&b, "<p>Total: %s %s</p>", o.TotalPrice.StringFixed(2), html.EscapeString(o.Currency))
	fmt.Fprintf(&b, "<p>Address: %s, %s %s, %s</p>",
		html.EscapeString(o.Street), html.EscapeString(o.PostalCode),
		html.EscapeString(o.City), html.EscapeString(o.Country))
	if o.DeliveryNotes != nil && *o.DeliveryNotes != "" {
		fmt.Fprintf(&b, "<p>Notes: %s</p>", html.EscapeString(*o.DeliveryNotes))
	}
	return subject, b.String()
}

func writeItemsTable(b *strings.Builder, o *order.Order) {
	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, it := range o.Items {
		name := it.Name
		if it.Size != nil && *it.Size != "" {
			name = fmt.Sprintf("%s (%s)", name, *it.Size)
		}
		fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(name), it.Quantity, it.UnitPrice.StringFixed(2))
	}
	b.WriteString("</table>")
}
