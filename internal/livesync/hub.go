package livesync

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DebounceInterval is how long the hub coalesces preview updates before
// broadcasting. A burst of keystrokes produces one refresh, not one per
// keypress.
const DebounceInterval = 250 * time.Millisecond

// Role distinguishes the two ends of a room.
type Role string

const (
	RoleEditor  Role = "editor"
	RolePreview Role = "preview"
)

// subscriberBuffer is the per-connection outbound queue. A subscriber
// that falls this far behind starts losing messages rather than
// stalling the room.
const subscriberBuffer = 16

type roomKey struct {
	vendorID string
	page     string
}

// Subscriber is one connection's membership in a room. Messages arrive
// on C until Unsubscribe closes it.
type Subscriber struct {
	Role Role
	C    chan Envelope
	key  roomKey
}

type room struct {
	subs map[*Subscriber]bool
	seq  uint64

	// pending is the coalesced update waiting for the debounce timer.
	// Later updates overwrite it; only the newest state matters.
	pending *Envelope
	timer   *time.Timer
}

// Hub routes envelopes between editors and previews. The zero value is
// not usable; construct with NewHub.
type Hub struct {
	log      *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	rooms map[roomKey]*room
}

// NewHub creates a hub with the standard debounce interval.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:      log,
		debounce: DebounceInterval,
		rooms:    map[roomKey]*room{},
	}
}

// Subscribe joins the room for a vendor's page. The caller must drain
// sub.C and call Unsubscribe when done.
func (h *Hub) Subscribe(vendorID, page string, role Role) *Subscriber {
	key := roomKey{vendorID: vendorID, page: page}
	sub := &Subscriber{
		Role: role,
		C:    make(chan Envelope, subscriberBuffer),
		key:  key,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[key]
	if rm == nil {
		rm = &room{subs: map[*Subscriber]bool{}}
		h.rooms[key] = rm
	}
	rm.subs[sub] = true
	return sub
}

// Unsubscribe leaves the room and closes the subscriber's channel.
// Empty rooms are dropped, cancelling any pending broadcast.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[sub.key]
	if rm == nil || !rm.subs[sub] {
		return
	}
	delete(rm.subs, sub)
	close(sub.C)
	if len(rm.subs) == 0 {
		if rm.timer != nil {
			rm.timer.Stop()
		}
		delete(h.rooms, sub.key)
	}
}

// Publish routes an envelope from one side of a room to the other.
// Preview updates are debounced latest-wins; selection events relay
// immediately.
func (h *Hub) Publish(env Envelope) {
	if err := env.Validate(); err != nil {
		h.log.Warn("dropping sync message", "error", err)
		return
	}
	key := roomKey{vendorID: env.VendorID, page: env.Page}

	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[key]
	if rm == nil {
		return
	}

	switch env.Type {
	case TypeEditorSelect:
		h.deliverLocked(rm, env, RoleEditor)
	case TypePreviewUpdate:
		rm.pending = &env
		if rm.timer == nil {
			rm.timer = time.AfterFunc(h.debounce, func() { h.fire(key) })
		}
	}
}

// Flush delivers any pending update for a vendor's page immediately,
// without waiting out the debounce. Used when the editor explicitly
// asks for a refresh.
func (h *Hub) Flush(vendorID, page string) {
	key := roomKey{vendorID: vendorID, page: page}

	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[key]
	if rm == nil || rm.pending == nil {
		return
	}
	if rm.timer != nil {
		rm.timer.Stop()
	}
	h.firePendingLocked(key, rm)
}

func (h *Hub) fire(key roomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[key]
	if rm == nil || rm.pending == nil {
		rm.resetTimer()
		return
	}
	h.firePendingLocked(key, rm)
}

func (h *Hub) firePendingLocked(key roomKey, rm *room) {
	env := *rm.pending
	rm.pending = nil
	rm.resetTimer()
	rm.seq++
	env.Seq = rm.seq
	h.deliverLocked(rm, env, RolePreview)
}

func (rm *room) resetTimer() {
	if rm != nil && rm.timer != nil {
		rm.timer.Stop()
		rm.timer = nil
	}
}

// deliverLocked sends env to every subscriber with the given role. A
// full subscriber queue drops the message for that subscriber.
func (h *Hub) deliverLocked(rm *room, env Envelope, role Role) {
	for sub := range rm.subs {
		if sub.Role != role {
			continue
		}
		select {
		case sub.C <- env:
		default:
			h.log.Warn("sync subscriber queue full, dropping message",
				"vendor_id", env.VendorID, "page", env.Page, "type", env.Type)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The preview iframe and the editor share the origin with this
	// server, so the default same-origin check applies.
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ServeWS upgrades the request and joins the connection to the room
// named by the vendor, page, and role query parameters.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	vendorID := r.URL.Query().Get("vendor")
	page := r.URL.Query().Get("page")
	role := Role(r.URL.Query().Get("role"))
	if vendorID == "" || page == "" || (role != RoleEditor && role != RolePreview) {
		http.Error(w, "missing vendor, page, or role", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := h.Subscribe(vendorID, page, role)
	go h.writePump(conn, sub)
	h.readPump(conn, sub, vendorID, page)
}

func (h *Hub) readPump(conn *websocket.Conn, sub *Subscriber, vendorID, page string) {
	defer func() {
		h.Unsubscribe(sub)
		conn.Close()
	}()
	conn.SetReadLimit(64 << 10)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", "error", err)
			}
			return
		}
		// A connection only speaks for the room it joined.
		if env.VendorID != vendorID || env.Page != page {
			h.log.Warn("dropping sync message for wrong room",
				"got_vendor", env.VendorID, "got_page", env.Page,
				"want_vendor", vendorID, "want_page", page)
			continue
		}
		h.Publish(env)
	}
}

func (h *Hub) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case env, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
