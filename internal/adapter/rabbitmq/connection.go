package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/YelzhanWeb/kasir/internal/config"
)

// ErrBrokerUnavailable is returned without dialing while the last failed
// dial is younger than the redial backoff.
var ErrBrokerUnavailable = errors.New("rabbitmq unavailable")

type Connection interface {
	Channel() (Channel, error)
	Close() error
}

// Channel is the subset of *amqp.Channel the publisher and consumer use.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Close() error
	NotifyClose() <-chan *amqp.Error
}

type Queue struct {
	Name string
}

type brokerConn interface {
	Channel() (*amqp.Channel, error)
	IsClosed() bool
	Close() error
}

type dialFunc func(url string) (brokerConn, error)

type amqpConnection struct {
	url     string
	dial    dialFunc
	backoff time.Duration
	now     func() time.Time

	mu         sync.Mutex
	conn       brokerConn
	lastFailed time.Time
	closed     bool
}

// Connect dials the broker once so a wrong address fails at startup.
// Later channels redial a dropped connection, at most once per
// cfg.RedialBackoff.
func Connect(cfg config.RabbitMQConfig) (Connection, error) {
	c := newConnection(dialURL(cfg), timeoutDialer(cfg.DialTimeout), cfg.RedialBackoff)
	if err := c.ensure(); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return c, nil
}

func newConnection(url string, dial dialFunc, backoff time.Duration) *amqpConnection {
	return &amqpConnection{url: url, dial: dial, backoff: backoff, now: time.Now}
}

func timeoutDialer(timeout time.Duration) dialFunc {
	return func(url string) (brokerConn, error) {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(timeout),
		})
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

func dialURL(cfg config.RabbitMQConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
}

func (c *amqpConnection) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLocked(); err != nil {
		return nil, err
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &amqpChannel{ch: ch}, nil
}

func (c *amqpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

func (c *amqpConnection) ensure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLocked()
}

func (c *amqpConnection) ensureLocked() error {
	if c.closed {
		return fmt.Errorf("connection permanently closed")
	}
	// соединение живое, переподключение не нужно
	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}
	if !c.lastFailed.IsZero() && c.now().Sub(c.lastFailed) < c.backoff {
		return ErrBrokerUnavailable
	}

	conn, err := c.dial(c.url)
	if err != nil {
		c.lastFailed = c.now()
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	c.conn = conn
	c.lastFailed = time.Time{}
	return nil
}

type amqpChannel struct {
	ch *amqp.Channel
}

func (ch *amqpChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return ch.ch.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

func (ch *amqpChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (Queue, error) {
	q, err := ch.ch.QueueDeclare(name, durable, autoDelete, exclusive, noWait, args)
	if err != nil {
		return Queue{}, err
	}
	return Queue{Name: q.Name}, nil
}

func (ch *amqpChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return ch.ch.QueueBind(name, key, exchange, noWait, args)
}

func (ch *amqpChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return ch.ch.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

func (ch *amqpChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return ch.ch.Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
}

func (ch *amqpChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	return ch.ch.Qos(prefetchCount, prefetchSize, global)
}

func (ch *amqpChannel) Close() error {
	return ch.ch.Close()
}

func (ch *amqpChannel) NotifyClose() <-chan *amqp.Error {
	return ch.ch.NotifyClose(make(chan *amqp.Error, 1))
}
