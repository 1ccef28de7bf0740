package notification

import (
	"context"
	"encoding/json"

	"github.com/example/ec-catalog-cart/internal/activity"
	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/email"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Alerter delivers a low stock alert. *email.Service is the production Alerter.
type Alerter interface {
	SendLowStockAlert(to string, alert email.LowStockAlert) error
}

// Handler turns product.stock_low activity events into alert emails
type Handler struct {
	alerter   Alerter
	recipient string
	log       *log.Entry
}

func NewHandler(alerter Alerter, recipient string) *Handler {
	return &Handler{
		alerter:   alerter,
		recipient: recipient,
		log:       log.WithField("component", "notifier"),
	}
}

// HandleEvent processes one activity message. Messages of other types are
// skipped; the type header is trusted when present so their payload is never decoded.
func (h *Handler) HandleEvent(ctx context.Context, eventType string, key, value []byte) error {
	if eventType != "" && eventType != product.EventStockLow {
		return nil
	}

	var event activity.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return errors.Wrap(err, "decode activity event")
	}
	if event.Type != product.EventStockLow {
		return nil
	}
	return h.handleStockLow(event)
}

func (h *Handler) handleStockLow(event activity.Event) error {
	var e product.StockLow
	if err := event.Decode(&e); err != nil {
		return err
	}

	entry := h.log.WithFields(log.Fields{
		"eventId":    event.ID,
		"productId":  e.ProductID,
		"sku":        e.SKU,
		"stockLevel": e.StockLevel,
	})
	if h.recipient == "" {
		entry.Warn("low stock alert not sent, no recipient configured")
		return nil
	}

	err := h.alerter.SendLowStockAlert(h.recipient, email.LowStockAlert{
		ProductID:  e.ProductID,
		SKU:        e.SKU,
		Name:       e.Name,
		StockLevel: e.StockLevel,
		Threshold:  e.Threshold,
		DetectedAt: e.DetectedAt,
	})
	if err != nil {
		return err
	}

	entry.WithField("to", h.recipient).Info("low stock alert sent")
	return nil
}
