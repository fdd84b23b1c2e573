package device

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/influxdb"
)

// Gateway is the gateway client surface the reader needs.
type Gateway interface {
	Connect(ctx context.Context) (*gateway.Handle, error)
	ObserveDevices(h *gateway.Handle) error
}

// Recorder receives one reading per listed device. *influxdb.Client satisfies it.
type Recorder interface {
	WriteDeviceState(state influxdb.DeviceState, at time.Time)
}

// Logger is the subset of logging.Logger the reader needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// Reader lists normalized device snapshots from the gateway.
type Reader struct {
	gateway  Gateway
	recorder Recorder
	notes    NoteRepository
	logger   Logger
}

// NewReader creates a Reader. recorder and logger may be nil.
func NewReader(gw Gateway, recorder Recorder, logger Logger) *Reader {
	return &Reader{gateway: gw, recorder: recorder, logger: logger}
}

// WithNotes merges stored notes into listed snapshots.
func (r *Reader) WithNotes(notes NoteRepository) *Reader {
	r.notes = notes
	return r
}

// Snapshots connects if needed, waits for initial state to settle, and
// returns one snapshot per classified device ordered by instance ID.
// Records that fail to decode are skipped and logged.
func (r *Reader) Snapshots(ctx context.Context) ([]Snapshot, error) {
	h, err := r.gateway.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.gateway.ObserveDevices(h); err != nil {
		return nil, err
	}
	if err := h.WaitSettled(ctx); err != nil {
		return nil, fmt.Errorf("waiting for device state: %w", err)
	}

	notes := r.loadNotes(ctx)

	now := time.Now()
	ids := h.DeviceIDs()
	out := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		raw, err := h.Device(id)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping device record", "instance_id", id, "error", err)
			}
			continue
		}
		s := Normalize(raw)
		if s == nil {
			continue
		}
		if n, ok := notes[id]; ok {
			s.Note = n.Text
		}
		out = append(out, *s)
		r.record(s, now)
	}
	return out, nil
}

// loadNotes never fails the listing; a broken notes table only hides notes.
func (r *Reader) loadNotes(ctx context.Context) map[int]Note {
	if r.notes == nil {
		return nil
	}
	notes, err := r.notes.Notes(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("loading device notes", "error", err)
		}
		return nil
	}
	return notes
}

func (r *Reader) record(s *Snapshot, at time.Time) {
	if r.recorder == nil {
		return
	}
	r.recorder.WriteDeviceState(influxdb.DeviceState{
		InstanceID:     s.InstanceID,
		Name:           s.Name,
		Kind:           string(s.Kind),
		BatteryPercent: s.BatteryPercent,
		OnOff:          s.OnOff,
		DimmerLevel:    s.DimmerLevel,
	}, at)
}
