package session

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"codebuds/internal/metrics"
	"codebuds/internal/models"
	"codebuds/internal/utils"
)

// Sink receives room lifecycle events (redis publisher in production).
type Sink interface {
	Publish(models.RoomEvent)
}

// Hub owns the presence registry and the room directory. Every state
// transition (join, leave, kick, cleanup) runs under one lock, so election
// and membership always mutate in the same logical step. Hub methods return
// snapshots of who should be notified; the protocol handler does the sends.
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	registry *Registry

	grace  time.Duration
	log    *utils.Logger
	events Sink
}

func NewHub(log *utils.Logger, grace time.Duration, events Sink) *Hub {
	return &Hub{
		rooms:    make(map[string]*Room),
		registry: NewRegistry(),
		grace:    grace,
		log:      log,
		events:   events,
	}
}

// JoinResult captures the state right after a join was applied.
type JoinResult struct {
	RoomID     string
	Members    []models.Member
	Recipients []*Client
	HostID     string

	// Previous is set when the connection was in another room and the join
	// ran the leave flow for it first.
	Previous *LeaveResult
}

// LeaveResult captures the effects of removing a connection from its room.
type LeaveResult struct {
	RoomID       string
	ConnectionID string
	Username     string
	Recipients   []*Client // members remaining in the room

	NewHostID       string // set when the host role transferred
	NewHostUsername string
	HostVacated     bool // host left an empty room; cleanup timer armed
}

// KickResult captures a host-authorized kick.
type KickResult struct {
	Target         *Client
	TargetUsername string
	KickedBy       string
	Leave          *LeaveResult
}

// Join registers presence and applies the host election table:
//  1. unseen room: the joiner becomes host
//  2. recorded host username matches: this connection reclaims the role
//  3. host seat vacant: the joiner takes it
//  4. otherwise: ordinary member
func (h *Hub) Join(c *Client, roomID, username string) JoinResult {
	h.mu.Lock()

	var prev *LeaveResult
	if p, ok := h.registry.Get(c.ID); ok && p.RoomID != roomID {
		prev = h.leaveLocked(c)
	}
	h.registry.Upsert(c.ID, username, roomID)

	room, ok := h.rooms[roomID]
	created := !ok
	if created {
		room = newRoom(roomID)
		h.rooms[roomID] = room
		metrics.RoomCreated()
	}

	switch {
	case created:
		room.hostID, room.hostUsername = c.ID, username
	case room.hostUsername == username:
		room.hostID = c.ID
	case room.hostID == "":
		room.hostID, room.hostUsername = c.ID, username
	}
	room.add(c)

	res := JoinResult{
		RoomID:     roomID,
		Members:    h.membersLocked(room),
		Recipients: room.recipients(),
		HostID:     room.hostID,
		Previous:   prev,
	}
	h.mu.Unlock()

	if created {
		h.publish(models.RoomEvent{
			Type: models.EventRoomCreated, RoomID: roomID,
			ConnectionID: c.ID, Username: username,
		})
	}
	h.publishLeave(prev)
	return res
}

// Leave removes the connection from its room and purges its presence entry.
// Returns nil when the connection never joined. Used for disconnects, the
// voluntary leave action, and room switches.
func (h *Hub) Leave(c *Client) *LeaveResult {
	h.mu.Lock()
	res := h.leaveLocked(c)
	h.mu.Unlock()

	h.publishLeave(res)
	return res
}

func (h *Hub) leaveLocked(c *Client) *LeaveResult {
	p, ok := h.registry.Get(c.ID)
	if !ok {
		return nil
	}
	res := &LeaveResult{
		RoomID:       p.RoomID,
		ConnectionID: c.ID,
		Username:     p.Username,
	}
	h.registry.Remove(c.ID)

	room, ok := h.rooms[p.RoomID]
	if !ok {
		// Directory is a best-effort mirror of the substrate; a missing
		// room is a no-op, never an error.
		return res
	}
	room.remove(c)

	if room.hostID == c.ID {
		if room.memberCount() > 0 {
			next := room.members[0]
			nextName := ""
			if np, ok := h.registry.Get(next.ID); ok {
				nextName = np.Username
			}
			room.hostID, room.hostUsername = next.ID, nextName
			res.NewHostID, res.NewHostUsername = next.ID, nextName
		} else {
			room.hostID = "" // hostUsername retained for reclaim
			res.HostVacated = true
		}
	}
	if room.memberCount() == 0 {
		h.scheduleCleanup(room.ID)
	}

	res.Recipients = room.recipients()
	return res
}

// Kick applies host-only moderation. Returns nil when the requester is not
// the room's host or the target is not a member; both cases are silent to
// the requester and only logged here.
func (h *Hub) Kick(requester *Client, roomID, targetID string) *KickResult {
	h.mu.Lock()

	room, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		h.log.Warn("kick for unknown room dropped", "room", roomID)
		return nil
	}
	if room.hostID != requester.ID {
		h.mu.Unlock()
		metrics.KickDenied()
		h.log.Warn("kick from non-host dropped",
			"room", roomID, "requester", requester.ID, "target", targetID)
		return nil
	}
	target := room.memberByID(targetID)
	if target == nil {
		h.mu.Unlock()
		h.log.Warn("kick target not in room", "room", roomID, "target", targetID)
		return nil
	}

	kickedBy := ""
	if p, ok := h.registry.Get(requester.ID); ok {
		kickedBy = p.Username
	}
	// A host kicking itself is not reachable through the protocol, but
	// leaveLocked treats it like a host disconnect if it ever happens.
	leave := h.leaveLocked(target)
	if leave == nil {
		h.mu.Unlock()
		return nil
	}
	res := &KickResult{
		Target:         target,
		TargetUsername: leave.Username,
		KickedBy:       kickedBy,
		Leave:          leave,
	}
	h.mu.Unlock()

	h.publish(models.RoomEvent{
		Type: models.EventUserKicked, RoomID: roomID,
		ConnectionID: targetID, Username: res.TargetUsername,
	})
	h.publishLeave(leave)
	return res
}

// RoomExists reports whether the room currently has at least one member.
// Purely advisory: the room can empty out between this check and a join.
func (h *Hub) RoomExists(roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	return ok && room.memberCount() > 0
}

// IsHost reports whether the connection currently holds the host role.
func (h *Hub) IsHost(roomID, connectionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	return ok && room.hostID == connectionID
}

// Peers returns every member of the room except the given connection.
func (h *Hub) Peers(roomID, exceptID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.Filter(room.members, func(m *Client, _ int) bool { return m.ID != exceptID })
}

// Lookup resolves a connection id to its client and participant record.
func (h *Hub) Lookup(connectionID string) (*Client, *Participant, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.registry.Get(connectionID)
	if !ok {
		return nil, nil, false
	}
	room, ok := h.rooms[p.RoomID]
	if !ok {
		return nil, nil, false
	}
	c := room.memberByID(connectionID)
	if c == nil {
		return nil, nil, false
	}
	return c, p, true
}

// Participant returns the presence record for a connection.
func (h *Hub) Participant(connectionID string) (*Participant, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Get(connectionID)
}

// HasRoom reports whether the directory still holds a record for the room,
// member or not (an empty room inside its grace period still counts).
func (h *Hub) HasRoom(roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[roomID]
	return ok
}

// membersLocked recomputes the membership view from live state; it is never
// cached so it cannot drift from the registry.
func (h *Hub) membersLocked(room *Room) []models.Member {
	return lo.Map(room.members, func(m *Client, _ int) models.Member {
		username := ""
		if p, ok := h.registry.Get(m.ID); ok {
			username = p.Username
		}
		return models.Member{ConnectionID: m.ID, Username: username}
	})
}

// scheduleCleanup arms the grace-period timer for an empty room. A rejoin
// does not cancel the timer; the recheck under the lock makes it a no-op.
// Callers must hold h.mu.
func (h *Hub) scheduleCleanup(roomID string) {
	time.AfterFunc(h.grace, func() {
		h.mu.Lock()
		room, ok := h.rooms[roomID]
		if !ok || room.memberCount() > 0 {
			h.mu.Unlock()
			return
		}
		delete(h.rooms, roomID)
		metrics.RoomDeleted()
		h.mu.Unlock()

		h.log.Info("empty room expired", "room", roomID)
		h.publish(models.RoomEvent{Type: models.EventRoomExpired, RoomID: roomID})
	})
}

func (h *Hub) publishLeave(res *LeaveResult) {
	if res == nil || res.NewHostID == "" {
		return
	}
	h.publish(models.RoomEvent{
		Type: models.EventHostChanged, RoomID: res.RoomID,
		ConnectionID: res.NewHostID, Username: res.NewHostUsername,
	})
}

func (h *Hub) publish(ev models.RoomEvent) {
	if h.events == nil {
		return
	}
	h.events.Publish(ev)
}
