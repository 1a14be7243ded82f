package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

// NotificationHandler prints POS events for a kitchen or cashier display.
type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger, out io.Writer) *NotificationHandler {
	if out == nil {
		out = os.Stdout
	}
	return &NotificationHandler{
		logger: logger,
		out:    out,
	}
}

func (h *NotificationHandler) HandleEvent(ctx context.Context, routingKey string, body []byte) error {
	switch {
	case strings.HasPrefix(routingKey, interfaces.EventOrderCreated),
		strings.HasPrefix(routingKey, interfaces.EventOrderStatus):
		var msg interfaces.OrderEvent
		if err := json.Unmarshal(body, &msg); err != nil {
			h.logger.Error("message_parse_failed", "Failed to parse order event", "", map[string]interface{}{
				"routing_key": routingKey,
			}, err)
			return err
		}
		h.printOrder(routingKey, msg)

	case strings.HasPrefix(routingKey, interfaces.EventTableStatus):
		var msg interfaces.TableEvent
		if err := json.Unmarshal(body, &msg); err != nil {
			h.logger.Error("message_parse_failed", "Failed to parse table event", "", map[string]interface{}{
				"routing_key": routingKey,
			}, err)
			return err
		}
		h.logger.Debug("notification_received", fmt.Sprintf("Table %d is now %s", msg.TableID, msg.Status), "",
			map[string]interface{}{
				"table_id": msg.TableID,
				"status":   msg.Status,
			})
		fmt.Fprintf(h.out, "Table %d is now %s\n", msg.TableID, msg.Status)

	default:
		return fmt.Errorf("unknown routing key %q", routingKey)
	}
	return nil
}

func (h *NotificationHandler) printOrder(routingKey string, msg interfaces.OrderEvent) {
	h.logger.Debug("notification_received", fmt.Sprintf("Received %s for order %d", routingKey, msg.OrderID), "",
		map[string]interface{}{
			"order_id":   msg.OrderID,
			"new_status": msg.Status,
		})

	// Print to console
	if routingKey == interfaces.EventOrderCreated {
		fmt.Fprintf(h.out, "New order %d for %s: total %d (%s)\n",
			msg.OrderID, msg.CustomerName, msg.Total, msg.PaymentMethod)
		return
	}
	changedBy := msg.ChangedBy
	if changedBy == "" {
		changedBy = "self-order"
	}
	fmt.Fprintf(h.out, "Order %d: status changed from '%s' to '%s' by %s\n",
		msg.OrderID, msg.OldStatus, msg.Status, changedBy)
}
