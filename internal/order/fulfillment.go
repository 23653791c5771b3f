package order

import (
	"context"
	"sync"
	"time"

	"github.com/antonminaichev/storefront-orders/internal/email"
	"github.com/antonminaichev/storefront-orders/internal/types/order"
	log "github.com/sirupsen/logrus"
)

// StockDecrementer applies purchased quantities to catalog stock counts.
type StockDecrementer interface {
	DecrementStock(ctx context.Context, productID, size string, qty int64) error
}

// Fulfiller runs the side effects that follow order creation: customer
// confirmation email, internal notification email, inventory decrement, and
// the email-status write-back. Every step is individually fallible and none
// of them affects the webhook response; failures degrade the order's status
// fields instead.
type Fulfiller struct {
	repo       OrderRepository
	stock      StockDecrementer
	mailer     email.Mailer
	from       string
	adminEmail string
	timeout    time.Duration
}

func NewFulfiller(repo OrderRepository, stock StockDecrementer, mailer email.Mailer, from, adminEmail string, timeout time.Duration) *Fulfiller {
	return &Fulfiller{
		repo:       repo,
		stock:      stock,
		mailer:     mailer,
		from:       from,
		adminEmail: adminEmail,
		timeout:    timeout,
	}
}

// Fulfill dispatches both emails concurrently, decrements stock per item, then
// records both email outcomes in a single update. Wait-for-all: one failed
// send never cancels the other.
func (f *Fulfiller) Fulfill(ctx context.Context, o *order.Order) {
	var (
		wg           sync.WaitGroup
		confirmation order.EmailResult
		notification order.EmailResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		subject, body := email.ConfirmationEmail(o)
		confirmation = f.send(ctx, o, "confirmation", o.Email, subject, body)
	}()
	go func() {
		defer wg.Done()
		subject, body := email.NotificationEmail(o)
		notification = f.send(ctx, o, "notification", f.adminEmail, subject, body)
	}()

	f.decrementInventory(ctx, o)
	wg.Wait()

	if err := f.repo.UpdateEmailStatus(ctx, o.ID, confirmation, notification); err != nil {
		log.WithFields(log.Fields{
			"order_number": o.OrderNumber,
		}).WithError(err).Error("failed to record email status")
	}
}

func (f *Fulfiller) send(ctx context.Context, o *order.Order, kind, to, subject, body string) order.EmailResult {
	sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	id, err := f.mailer.Send(sendCtx, email.Message{
		From:    f.from,
		To:      []string{to},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"order_number": o.OrderNumber,
			"email":        kind,
			"to":           to,
		}).WithError(err).Error("email send failed")
		return order.EmailResult{}
	}
	now := time.Now().UTC()
	log.WithFields(log.Fields{
		"order_number": o.OrderNumber,
		"email":        kind,
		"message_id":   id,
	}).Info("email sent")
	return order.EmailResult{Sent: true, SentAt: &now}
}

// decrementInventory is best-effort per item: a missing product or failed
// update is logged and skipped so the remaining items still apply.
func (f *Fulfiller) decrementInventory(ctx context.Context, o *order.Order) {
	for _, it := range o.Items {
		if it.ProductID == "" {
			continue
		}
		size := ""
		if it.Size != nil {
			size = *it.Size
		}
		decCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.stock.DecrementStock(decCtx, it.ProductID, size, it.Quantity)
		cancel()
		if err != nil {
			log.WithFields(log.Fields{
				"order_number": o.OrderNumber,
				"product_id":   it.ProductID,
				"quantity":     it.Quantity,
			}).WithError(err).Error("inventory decrement failed")
			continue
		}
	}
}
