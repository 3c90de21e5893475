package jobs

import (
	"fmt"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/collection"
	"github.com/shashiranjanraj/bazaar/pkg/notification"
)

// OrderConfirmation emails the buyer a receipt after checkout.
type OrderConfirmation struct {
	OrderID uint `json:"order_id"`
	BuyerID uint `json:"buyer_id"`
}

func (j *OrderConfirmation) Handle() error {
	order, err := orders.ByID(j.OrderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", j.OrderID, err)
	}
	buyer, err := users.FindByID(j.BuyerID)
	if err != nil {
		return fmt.Errorf("load buyer %d: %w", j.BuyerID, err)
	}

	lines := collection.Map(order.Items, func(item models.OrderItem) string {
		return fmt.Sprintf("<li>%s x %d at $%.2f</li>", item.ProductTitle, item.Quantity, item.Price)
	})

	n := orderReceipt{
		subject: fmt.Sprintf("Order #%d confirmed", order.ID),
		body: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your order is confirmed.</p><ul>%s</ul><p>Total: $%.2f</p>",
			buyer.Name, strings.Join(lines, ""), order.TotalAmount,
		),
	}
	if errs := notification.Send(buyer.Email, n); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

type orderReceipt struct {
	subject string
	body    string
}

func (n orderReceipt) Via() []string { return []string{"mail"} }

func (n orderReceipt) ToMail() notification.MailData {
	return notification.MailData{Subject: n.subject, Body: n.body}
}
