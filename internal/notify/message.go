// Package notify delivers order status updates to a Telegram chat.
package notify

import (
	"fmt"
	"strings"

	"github.com/Additional-Code/luxe/internal/entity"
)

// StatusInfo is the banner shown for a status.
type StatusInfo struct {
	Emoji       string
	Description string
}

var statusTable = map[string]StatusInfo{
	entity.StatusRequested: {"📋", "Your order has been received and is awaiting review"},
	entity.StatusApproved:  {"✅", "Your order has been approved and will be prepared soon"},
	entity.StatusPreparing: {"📦", "Your order is being prepared"},
	entity.StatusDelivery:  {"🚚", "Your order is out for delivery"},
	entity.StatusCompleted: {"🎉", "Your order has been completed. Thank you for your purchase!"},
	entity.StatusCancelled: {"❌", "Your order has been cancelled"},
}

// Info returns the banner for status. Unknown statuses get a generic one.
func Info(status string) StatusInfo {
	if info, ok := statusTable[status]; ok {
		return info
	}
	return StatusInfo{Emoji: "ℹ️", Description: "Status updated to: " + status}
}

// Render formats the chat message for order moving to status. Amounts are
// rounded to whole dollars.
func Render(order *entity.Order, status string) string {
	info := Info(status)

	var b strings.Builder
	fmt.Fprintf(&b, "%s ORDER STATUS UPDATE\n\n", info.Emoji)
	fmt.Fprintf(&b, "📋 Order: %s\n", order.Number)
	fmt.Fprintf(&b, "👤 Name: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "📞 Contact: %s\n\n", order.Contact())
	fmt.Fprintf(&b, "%s\n\n", info.Description)
	b.WriteString("📦 Products:\n")
	for i, item := range order.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s x%d – $%s", i+1, item.ProductName, item.Quantity, item.Amount().StringFixed(0))
	}
	fmt.Fprintf(&b, "\n\n💰 Total: $%s\n\n", order.Total.StringFixed(0))
	fmt.Fprintf(&b, "Current Status: %s", strings.ToUpper(status))
	return b.String()
}

// ContactMessage is a storefront "send message" request.
type ContactMessage struct {
	Name    string
	Contact string
	Email   string
	Message string
}

// RenderContact formats a customer message. The email line is omitted when
// no email was given.
func RenderContact(msg ContactMessage) string {
	var b strings.Builder
	b.WriteString("💬 NEW MESSAGE\n\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "📞 Contact: %s\n", msg.Contact)
	if msg.Email != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", msg.Email)
	}
	fmt.Fprintf(&b, "\n%s", msg.Message)
	return b.String()
}
