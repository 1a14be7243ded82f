package apptest

import (
	"context"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

// Publisher records routing keys of published events. Err, when set, is
// returned by every publish after recording.
type Publisher struct {
	mu     sync.Mutex
	keys   []string
	Orders []interfaces.OrderEvent
	Tables []interfaces.TableEvent
	Err    error
}

func (p *Publisher) PublishOrderCreated(_ context.Context, evt interfaces.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, interfaces.EventOrderCreated)
	p.Orders = append(p.Orders, evt)
	return p.Err
}

func (p *Publisher) PublishOrderStatus(_ context.Context, evt interfaces.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, fmt.Sprintf("%s.%s", interfaces.EventOrderStatus, evt.Status))
	p.Orders = append(p.Orders, evt)
	return p.Err
}

func (p *Publisher) PublishTableStatus(_ context.Context, evt interfaces.TableEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, fmt.Sprintf("%s.%s", interfaces.EventTableStatus, evt.Status))
	p.Tables = append(p.Tables, evt)
	return p.Err
}

func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}
