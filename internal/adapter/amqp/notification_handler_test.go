package amqp

import (
	"bytes"
	"context"
	"testing"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
)

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "orderCreated",
			key:  "order.created",
			body: `{"order_id":7,"customer_name":"Budi","payment_method":"cash","total":55000,"status":"pending"}`,
			want: "New order 7 for Budi: total 55000 (cash)\n",
		},
		{
			name: "orderStatus",
			key:  "order.status.paid",
			body: `{"order_id":7,"old_status":"served","status":"paid","changed_by":"kasir@resto.id"}`,
			want: "Order 7: status changed from 'served' to 'paid' by kasir@resto.id\n",
		},
		{
			name: "tableStatus",
			key:  "table.status.available",
			body: `{"table_id":3,"status":"available"}`,
			want: "Table 3 is now available\n",
		},
		{
			name:    "malformedBody",
			key:     "order.created",
			body:    `{`,
			wantErr: true,
		},
		{
			name:    "unknownKey",
			key:     "kitchen.ticket",
			body:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := NewNotificationHandler(logger.Nop(), &out)

			err := h.HandleEvent(context.Background(), tt.key, []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}
