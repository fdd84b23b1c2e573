package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Lazy resolves a device record on demand.
type Lazy func() (RawDevice, error)

// Handle is an established gateway session and its device cache.
type Handle struct {
	transport Transport
	client    *Client

	// observeMu serializes ObserveDevices. Records arrive while Subscribe
	// is in flight, so it is separate from mu.
	observeMu sync.Mutex

	mu         sync.RWMutex
	records    map[int]json.RawMessage
	observing  bool
	observedAt time.Time
}

func newHandle(c *Client, t Transport) *Handle {
	return &Handle{
		transport: t,
		client:    c,
		records:   make(map[int]json.RawMessage),
	}
}

// DeviceIDs returns known instance IDs in ascending order.
func (h *Handle) DeviceIDs() []int {
	h.mu.RLock()
	ids := make([]int, 0, len(h.records))
	for id := range h.records {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Ints(ids)
	return ids
}

// DeviceCount returns the number of cached device records.
func (h *Handle) DeviceCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Device decodes the current record for id.
func (h *Handle) Device(id int) (RawDevice, error) {
	h.mu.RLock()
	raw, ok := h.records[id]
	h.mu.RUnlock()
	if !ok {
		return RawDevice{}, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}
	return decode(id, raw)
}

// Devices returns a lazily resolved view of every cached record. Each
// Lazy decodes the record captured at call time.
func (h *Handle) Devices() map[int]Lazy {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[int]Lazy, len(h.records))
	for id, raw := range h.records {
		out[id] = func() (RawDevice, error) { return decode(id, raw) }
	}
	return out
}

// WaitSettled blocks until the settle delay has elapsed since observation
// started. It returns immediately once the handle has settled.
func (h *Handle) WaitSettled(ctx context.Context) error {
	h.mu.RLock()
	observing, since := h.observing, h.observedAt
	h.mu.RUnlock()

	if !observing {
		return ErrNotObserving
	}

	remaining := time.Until(since.Add(h.client.settleDelay))
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// store replaces the record for id. An empty payload clears it, which is
// how a retained message is deleted.
func (h *Handle) store(id int, payload []byte) {
	h.mu.Lock()
	if len(payload) == 0 {
		delete(h.records, id)
	} else {
		h.records[id] = append(json.RawMessage(nil), payload...)
	}
	h.mu.Unlock()
}

func decode(id int, raw json.RawMessage) (RawDevice, error) {
	var d RawDevice
	if err := json.Unmarshal(raw, &d); err != nil {
		return RawDevice{}, fmt.Errorf("%w: device %d: %w", ErrMalformedRecord, id, err)
	}
	if d.InstanceID == 0 {
		d.InstanceID = id
	}
	return d, nil
}
