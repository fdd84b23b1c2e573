package gateway

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/mqtt"
)

// Transport is the broker session a Handle runs over. *mqtt.Client satisfies it.
type Transport interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Dialer establishes a Transport.
type Dialer func(ctx context.Context) (Transport, error)

// Logger is the subset of logging.Logger the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Update describes a change to one device record. Device is nil when the
// record was removed.
type Update struct {
	InstanceID int
	Device     *RawDevice
}

// Options configures a Client.
type Options struct {
	Topics      mqtt.Topics
	QoS         byte
	SettleDelay time.Duration
	DialTimeout time.Duration
	Logger      Logger
}

const defaultDialTimeout = 10 * time.Second

// Client owns the process-wide gateway Handle.
type Client struct {
	dial        Dialer
	topics      mqtt.Topics
	qos         byte
	settleDelay time.Duration
	dialTimeout time.Duration
	logger      Logger

	connect singleflight.Group

	mu        sync.Mutex
	handle    *Handle
	listeners []func(Update)
}

// NewClient creates a Client. No connection is made until Connect.
func NewClient(dial Dialer, opts Options) *Client {
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &Client{
		dial:        dial,
		topics:      opts.Topics,
		qos:         opts.QoS,
		settleDelay: opts.SettleDelay,
		dialTimeout: timeout,
		logger:      opts.Logger,
	}
}

// Connect returns the established Handle, dialing on first use. Concurrent
// callers share one dial, which is bounded by the dial timeout rather than
// any one caller's context; later callers get the same Handle.
func (c *Client) Connect(ctx context.Context) (*Handle, error) {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()
	if h != nil {
		return h, nil
	}

	v, err, _ := c.connect.Do("connect", func() (any, error) {
		c.mu.Lock()
		existing := c.handle
		c.mu.Unlock()
		if existing != nil {
			return existing, nil
		}

		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.dialTimeout)
		defer cancel()
		t, err := c.dial(dialCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		h := newHandle(c, t)
		c.mu.Lock()
		c.handle = h
		c.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// Connected reports whether a Handle has been established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// ObserveDevices subscribes h to device records. Repeat calls on the same
// Handle are no-ops; a failed subscribe may be retried.
func (c *Client) ObserveDevices(h *Handle) error {
	h.observeMu.Lock()
	defer h.observeMu.Unlock()

	h.mu.RLock()
	observing := h.observing
	h.mu.RUnlock()
	if observing {
		return nil
	}

	started := time.Now()
	if err := h.transport.Subscribe(c.topics.AllDeviceStates(), c.qos, c.handleRecord(h)); err != nil {
		return fmt.Errorf("%w: observing devices: %w", ErrUnavailable, err)
	}

	h.mu.Lock()
	h.observing = true
	h.observedAt = started
	h.mu.Unlock()
	return nil
}

// OnUpdate registers fn to receive every device record change.
// fn runs on the transport's delivery goroutine and must not block.
func (c *Client) OnUpdate(fn func(Update)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Client) handleRecord(h *Handle) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		id, ok := c.topics.ParseDeviceStateTopic(topic)
		if !ok {
			return fmt.Errorf("unexpected topic %q", topic)
		}
		h.store(id, payload)

		c.mu.Lock()
		listeners := slices.Clone(c.listeners)
		c.mu.Unlock()
		if len(listeners) == 0 {
			return nil
		}

		u := Update{InstanceID: id}
		if len(payload) > 0 {
			d, err := decode(id, payload)
			if err != nil {
				return err
			}
			u.Device = &d
		}
		for _, fn := range listeners {
			fn(u)
		}
		return nil
	}
}
