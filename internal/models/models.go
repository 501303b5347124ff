package models

type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangCPP        Language = "cpp"
)

// WSFrame is the envelope every websocket message travels in.
type WSFrame struct {
	Type string      `json:"type"` // one of the Action* constants
	Data interface{} `json:"data,omitempty"`
}

// Wire action names, shared with the frontend.
const (
	ActionJoin           = "join"
	ActionJoined         = "joined"
	ActionDisconnected   = "disconnected"
	ActionCodeChange     = "code-change"
	ActionSyncCode       = "sync-code"
	ActionLeave          = "leave"
	ActionLanguageChange = "language-change"
	ActionCursorChange   = "cursor-change"
	ActionRoomExists     = "room-exists"
	ActionKickUser       = "kick-user"
	ActionUserKicked     = "user-kicked"
	ActionHostChanged    = "host-changed"
)

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// Member is one entry of a room membership list.
type Member struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
}

// JoinedEvent is broadcast to every member (including the joiner) so that
// existing clients refresh their member list and the joiner learns who is
// present and who the host is.
type JoinedEvent struct {
	Clients      []Member `json:"clients"`
	Username     string   `json:"username"`
	ConnectionID string   `json:"connectionId"`
	HostID       string   `json:"hostId"`
}

type DisconnectedEvent struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
}

type CodeChange struct {
	RoomID string `json:"roomId,omitempty"`
	Code   string `json:"code"`
}

// SyncCodeRequest asks the server to push current editor state to a single
// newly joined member.
type SyncCodeRequest struct {
	TargetID string   `json:"targetId"`
	Code     string   `json:"code"`
	Language Language `json:"language,omitempty"`
}

type LanguageChange struct {
	RoomID   string   `json:"roomId,omitempty"`
	Language Language `json:"language"`
}

type CursorChange struct {
	RoomID       string `json:"roomId,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
	Username     string `json:"username,omitempty"`
	Position     int    `json:"position"`
}

type RoomExistsRequest struct {
	RoomID string `json:"roomId"`
}

type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

type KickRequest struct {
	RoomID   string `json:"roomId"`
	TargetID string `json:"targetId"`
}

type UserKickedEvent struct {
	KickedBy string `json:"kickedBy"`
}

type HostChangedEvent struct {
	HostID       string `json:"hostId"`
	HostUsername string `json:"hostUsername"`
}

/*** Execution proxy (external sandbox service) ***/

type RunRequest struct {
	Language Language `json:"language"`
	Code     string   `json:"code"`
	Stdin    string   `json:"stdin,omitempty"`
}

type RunResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Exit     int    `json:"exit"`
	TimedOut bool   `json:"timedOut"`
}

/*** Room lifecycle events published over redis ***/

const (
	EventRoomCreated = "room-created"
	EventHostChanged = "host-changed"
	EventUserKicked  = "user-kicked"
	EventRoomExpired = "room-expired"
)

type RoomEvent struct {
	Type         string `json:"type"`
	RoomID       string `json:"roomId"`
	ConnectionID string `json:"connectionId,omitempty"`
	Username     string `json:"username,omitempty"`
	InstanceID   string `json:"instanceId,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}
