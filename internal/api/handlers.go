package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"codebuds/internal/metrics"
	"codebuds/internal/models"
	"codebuds/internal/session"
	"codebuds/internal/utils"
)

// runner abstracts the sandbox proxy for tests.
type runner interface {
	Run(ctx context.Context, req models.RunRequest) (models.RunResult, error)
}

type Handlers struct {
	log        *utils.Logger
	hub        *session.Hub
	runner     runner
	sendBuffer int
}

func NewHandlers(log *utils.Logger, hub *session.Hub, r runner, sendBuffer int) *Handlers {
	return &Handlers{
		log:        log,
		hub:        hub,
		runner:     r,
		sendBuffer: sendBuffer,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// RoomStatus is the REST form of the room-exists query, used by the landing
// page before navigating into a room. Advisory only.
func (h *Handlers) RoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	writeJSON(w, models.RoomExistsResponse{Exists: h.hub.RoomExists(roomID)})
}

// RunCode forwards source to the external sandbox service.
func (h *Handlers) RunCode(w http.ResponseWriter, r *http.Request) {
	var req models.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	out, err := h.runner.Run(ctx, req)
	if err != nil {
		h.log.Error("sandbox run failed", "language", req.Language, "error", err.Error())
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, out)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// CollabWS is the websocket endpoint. One connection per client; rooms are
// entered by sending a join frame, mirroring the original socket protocol.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := session.NewClient(conn, h.sendBuffer)
	metrics.ClientConnected()
	h.log.Info("client connected", "connection", client.ID)

	defer func() {
		h.emitLeave(h.hub.Leave(client))
		client.Close()
		metrics.ClientDisconnected()
		h.log.Info("client disconnected", "connection", client.ID)
	}()

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		metrics.FrameReceived(frame.Type)
		h.dispatch(client, frame)
	}
}

// dispatch routes one inbound frame. A malformed frame no-ops; it must never
// take down the read loop or leak into other rooms.
func (h *Handlers) dispatch(client *session.Client, frame models.WSFrame) {
	switch frame.Type {
	case models.ActionJoin:
		h.handleJoin(client, frame)
	case models.ActionCodeChange:
		h.handleCodeChange(client, frame)
	case models.ActionSyncCode:
		h.handleSyncCode(client, frame)
	case models.ActionLanguageChange:
		h.handleLanguageChange(client, frame)
	case models.ActionCursorChange:
		h.handleCursorChange(client, frame)
	case models.ActionRoomExists:
		h.handleRoomExists(client, frame)
	case models.ActionKickUser:
		h.handleKick(client, frame)
	case models.ActionLeave:
		h.emitLeave(h.hub.Leave(client))
	default:
		h.log.Warn("unknown frame type", "type", frame.Type, "connection", client.ID)
	}
}

func (h *Handlers) handleJoin(client *session.Client, frame models.WSFrame) {
	var req models.JoinRequest
	marshal(frame.Data, &req)
	if req.RoomID == "" {
		return
	}

	res := h.hub.Join(client, req.RoomID, req.Username)
	h.emitLeave(res.Previous)

	joined := models.WSFrame{
		Type: models.ActionJoined,
		Data: models.JoinedEvent{
			Clients:      res.Members,
			Username:     req.Username,
			ConnectionID: client.ID,
			HostID:       res.HostID,
		},
	}
	for _, m := range res.Recipients {
		m.Send(joined)
	}
	h.log.Info("user joined room",
		"room", req.RoomID, "username", req.Username, "connection", client.ID)
}

func (h *Handlers) handleCodeChange(client *session.Client, frame models.WSFrame) {
	var cc models.CodeChange
	marshal(frame.Data, &cc)

	out := models.WSFrame{Type: models.ActionCodeChange, Data: models.CodeChange{Code: cc.Code}}
	for _, peer := range h.hub.Peers(h.roomOf(client, cc.RoomID), client.ID) {
		peer.Send(out)
	}
}

// handleSyncCode pushes current editor state to one newly joined member.
// When a language is supplied it goes out first: the receiving editor must
// switch modes before the code arrives. Both frames are queued back-to-back
// on the target's send channel, which delivers in order.
func (h *Handlers) handleSyncCode(client *session.Client, frame models.WSFrame) {
	var req models.SyncCodeRequest
	marshal(frame.Data, &req)

	target, _, ok := h.hub.Lookup(req.TargetID)
	if !ok {
		// Stale target, likely already disconnected.
		return
	}
	if req.Language != "" {
		target.Send(models.WSFrame{
			Type: models.ActionLanguageChange,
			Data: models.LanguageChange{Language: req.Language},
		})
	}
	target.Send(models.WSFrame{
		Type: models.ActionCodeChange,
		Data: models.CodeChange{Code: req.Code},
	})
}

func (h *Handlers) handleLanguageChange(client *session.Client, frame models.WSFrame) {
	var lc models.LanguageChange
	marshal(frame.Data, &lc)
	if lc.Language == "" {
		return
	}

	out := models.WSFrame{
		Type: models.ActionLanguageChange,
		Data: models.LanguageChange{Language: lc.Language},
	}
	for _, peer := range h.hub.Peers(h.roomOf(client, lc.RoomID), client.ID) {
		peer.Send(out)
	}
}

func (h *Handlers) handleCursorChange(client *session.Client, frame models.WSFrame) {
	var cc models.CursorChange
	marshal(frame.Data, &cc)

	// Sender identity comes from presence, never from the payload.
	username := ""
	if p, ok := h.hub.Participant(client.ID); ok {
		username = p.Username
	}
	out := models.WSFrame{
		Type: models.ActionCursorChange,
		Data: models.CursorChange{
			ConnectionID: client.ID,
			Username:     username,
			Position:     cc.Position,
		},
	}
	for _, peer := range h.hub.Peers(h.roomOf(client, cc.RoomID), client.ID) {
		peer.Send(out)
	}
}

func (h *Handlers) handleRoomExists(client *session.Client, frame models.WSFrame) {
	var req models.RoomExistsRequest
	marshal(frame.Data, &req)
	client.Send(models.WSFrame{
		Type: models.ActionRoomExists,
		Data: models.RoomExistsResponse{Exists: h.hub.RoomExists(req.RoomID)},
	})
}

func (h *Handlers) handleKick(client *session.Client, frame models.WSFrame) {
	var req models.KickRequest
	marshal(frame.Data, &req)

	res := h.hub.Kick(client, req.RoomID, req.TargetID)
	if res == nil {
		// Non-host attempt or unknown target; nothing goes back to the
		// requester. The hub already logged it.
		return
	}

	res.Target.Send(models.WSFrame{
		Type: models.ActionUserKicked,
		Data: models.UserKickedEvent{KickedBy: res.KickedBy},
	})
	h.emitLeave(res.Leave)
	h.log.Info("user kicked",
		"room", req.RoomID, "target", res.TargetUsername, "by", res.KickedBy)
}

// emitLeave broadcasts the effects of a departure: a host-changed frame when
// the role transferred, then the disconnected frame, to the remaining
// members. Nil results (connection never joined) are no-ops.
func (h *Handlers) emitLeave(res *session.LeaveResult) {
	if res == nil {
		return
	}
	if res.NewHostID != "" {
		hostChanged := models.WSFrame{
			Type: models.ActionHostChanged,
			Data: models.HostChangedEvent{HostID: res.NewHostID, HostUsername: res.NewHostUsername},
		}
		for _, m := range res.Recipients {
			m.Send(hostChanged)
		}
	}
	disconnected := models.WSFrame{
		Type: models.ActionDisconnected,
		Data: models.DisconnectedEvent{ConnectionID: res.ConnectionID, Username: res.Username},
	}
	for _, m := range res.Recipients {
		m.Send(disconnected)
	}
}

// roomOf prefers the payload's room id and falls back to the sender's
// registered room when the field is absent.
func (h *Handlers) roomOf(client *session.Client, roomID string) string {
	if roomID != "" {
		return roomID
	}
	if p, ok := h.hub.Participant(client.ID); ok {
		return p.RoomID
	}
	return ""
}

func marshal(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
