package session

// Participant is a live connection's self-declared identity. The roomId is
// overwritten on every join, so a reconnect re-declares it.
type Participant struct {
	ConnectionID string
	Username     string
	RoomID       string
}

// Registry maps connection ids to participants. It carries no lock of its
// own; the owning Hub serializes all access.
type Registry struct {
	participants map[string]*Participant
}

func NewRegistry() *Registry {
	return &Registry{participants: make(map[string]*Participant)}
}

func (r *Registry) Upsert(id, username, roomID string) {
	r.participants[id] = &Participant{ConnectionID: id, Username: username, RoomID: roomID}
}

func (r *Registry) Get(id string) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

func (r *Registry) Remove(id string) {
	delete(r.participants, id)
}

func (r *Registry) Len() int { return len(r.participants) }
