package email

import (
	"fmt"
	"strings"

	"github.com/example/order-service/internal/domain"
)

// BuildOrderConfirmationBody builds the plain-text body for the order
// confirmation email.
func BuildOrderConfirmationBody(event domain.OrderEvent) string {
	var b strings.Builder

	b.WriteString("Hello,\r\n\r\n")
	b.WriteString("Thank you for your order!\r\n\r\n")
	b.WriteString("Order Details:\r\n")
	b.WriteString("--------------\r\n")
	fmt.Fprintf(&b, "Order ID: %d\r\n", event.OrderID)
	fmt.Fprintf(&b, "Product: %s\r\n", event.ProductID)
	fmt.Fprintf(&b, "Quantity: %d\r\n", event.Quantity)
	fmt.Fprintf(&b, "Total Price: $%.2f\r\n", event.TotalPrice)
	fmt.Fprintf(&b, "Status: %s\r\n\r\n", event.Status)
	b.WriteString("We will notify you once your order is shipped.\r\n\r\n")
	b.WriteString("Best regards,\r\nThe Order Management Team\r\n")

	return b.String()
}
