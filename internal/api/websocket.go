package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/logging"
)

// Device feed message types.
const (
	FeedSnapshot = "devices.snapshot"
	FeedUpdate   = "device.updated"
	FeedError    = "error"
	FeedPong     = "pong"

	// feedSendBuffer bounds queued messages per viewer. A viewer that falls
	// further behind misses updates until the next snapshot.
	feedSendBuffer = 64

	// feedSnapshotTimeout bounds the initial listing for a new viewer.
	feedSnapshotTimeout = 5 * time.Second
)

// FeedMessage is one frame sent to a dashboard viewer.
type FeedMessage struct {
	Type      string            `json:"type"`
	Timestamp string            `json:"timestamp"`
	Devices   []device.Snapshot `json:"devices,omitempty"`
	Update    *DeviceEvent      `json:"update,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// DeviceEvent describes one gateway change. Device is nil when the gateway
// removed the record.
type DeviceEvent struct {
	InstanceID int              `json:"instance_id"`
	Removed    bool             `json:"removed,omitempty"`
	Device     *device.Snapshot `json:"device,omitempty"`
}

func encodeFrame(msg FeedMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}

// DeviceFeed fans gateway updates out to connected dashboard viewers.
type DeviceFeed struct {
	logger  *logging.Logger
	mu      sync.Mutex
	viewers map[*viewer]struct{}
}

// viewer is one connected dashboard. Frames broadcast before its snapshot
// is queued are held back and replayed after it; device frames carry full
// state, so a replay is harmless.
type viewer struct {
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	ready   bool
	closed  bool
	pending [][]byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// NewDeviceFeed creates an empty feed.
func NewDeviceFeed(logger *logging.Logger) *DeviceFeed {
	return &DeviceFeed{
		logger:  logger,
		viewers: make(map[*viewer]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every viewer.
func (f *DeviceFeed) Run(ctx context.Context) {
	<-ctx.Done()

	f.mu.Lock()
	viewers := f.viewers
	f.viewers = make(map[*viewer]struct{})
	f.mu.Unlock()

	for v := range viewers {
		v.close()
		if v.conn != nil {
			v.conn.Close()
		}
	}
}

func (f *DeviceFeed) add(v *viewer) {
	f.mu.Lock()
	f.viewers[v] = struct{}{}
	n := len(f.viewers)
	f.mu.Unlock()
	f.logger.Debug("dashboard viewer connected", "viewers", n)
}

func (f *DeviceFeed) remove(v *viewer) {
	f.mu.Lock()
	_, ok := f.viewers[v]
	delete(f.viewers, v)
	n := len(f.viewers)
	f.mu.Unlock()
	if ok {
		v.close()
		f.logger.Debug("dashboard viewer disconnected", "viewers", n)
	}
}

// Publish sends ev to every viewer.
func (f *DeviceFeed) Publish(ev DeviceEvent) {
	data, err := encodeFrame(FeedMessage{Type: FeedUpdate, Update: &ev})
	if err != nil {
		f.logger.Error("encoding device update", "error", err)
		return
	}

	f.mu.Lock()
	viewers := make([]*viewer, 0, len(f.viewers))
	for v := range f.viewers {
		viewers = append(viewers, v)
	}
	f.mu.Unlock()

	for _, v := range viewers {
		v.deliver(data)
	}
}

func (v *viewer) deliver(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if !v.ready {
		if len(v.pending) < feedSendBuffer {
			v.pending = append(v.pending, data)
		}
		return
	}
	select {
	case v.send <- data:
	default:
	}
}

// start queues the first frame, then anything held back while it was built.
func (v *viewer) start(first []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	for _, data := range append([][]byte{first}, v.pending...) {
		select {
		case v.send <- data:
		default:
		}
	}
	v.pending = nil
	v.ready = true
}

func (v *viewer) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		v.closed = true
		close(v.send)
	}
}

// relayDeviceUpdates publishes gateway record changes to the feed.
// Unclassifiable devices are not sent.
func (s *Server) relayDeviceUpdates() {
	if s.updates == nil {
		return
	}
	s.updates.OnUpdate(func(u gateway.Update) {
		ev := DeviceEvent{InstanceID: u.InstanceID, Removed: u.Device == nil}
		if u.Device != nil {
			if ev.Device = device.Normalize(*u.Device); ev.Device == nil {
				return
			}
		}
		s.feed.Publish(ev)
	})
}

// snapshotFrame lists current devices for a new viewer.
func (s *Server) snapshotFrame(ctx context.Context) FeedMessage {
	if s.devices == nil {
		return FeedMessage{Type: FeedSnapshot, Devices: []device.Snapshot{}}
	}
	ctx, cancel := context.WithTimeout(ctx, feedSnapshotTimeout)
	defer cancel()

	snapshots, err := s.devices.Snapshots(ctx)
	if err != nil {
		s.logger.Warn("listing devices for dashboard feed", "error", err)
		return FeedMessage{Type: FeedError, Message: "lighting gateway unavailable"}
	}
	if snapshots == nil {
		snapshots = []device.Snapshot{}
	}
	return FeedMessage{Type: FeedSnapshot, Devices: snapshots}
}

// handleWebSocket streams a device snapshot followed by live updates.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	v := &viewer{conn: conn, send: make(chan []byte, feedSendBuffer)}
	s.feed.add(v)
	s.logger.Info("dashboard feed opened", "subject", subjectFromContext(r.Context()))

	go v.writeLoop(s.wsCfg)
	go v.readLoop(s.feed, s.wsCfg)

	first, err := encodeFrame(s.snapshotFrame(r.Context()))
	if err != nil {
		s.logger.Error("encoding device snapshot", "error", err)
		s.feed.remove(v)
		return
	}
	v.start(first)
}

// readLoop keeps the read deadline moving and answers text pings.
// Anything else a viewer sends is ignored.
func (v *viewer) readLoop(feed *DeviceFeed, cfg config.WebSocketConfig) {
	defer func() {
		feed.remove(v)
		v.conn.Close()
	}()

	wait := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	v.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // write side reports a dead connection
	v.conn.SetReadDeadline(time.Now().Add(wait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		_, data, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				feed.logger.Warn("dashboard feed read error", "error", err)
			}
			return
		}
		//nolint:errcheck // write side reports a dead connection
		v.conn.SetReadDeadline(time.Now().Add(wait))

		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
			if pong, err := encodeFrame(FeedMessage{Type: FeedPong}); err == nil {
				v.deliver(pong)
			}
		}
	}
}

// writeLoop drains the send queue and pings on an interval.
func (v *viewer) writeLoop(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	for {
		select {
		case data, ok := <-v.send:
			//nolint:errcheck // write error caught below
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint:errcheck // connection is closing
				v.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // write error caught below
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
