package session

import "slices"

// Room tracks membership in arrival order plus the host assignment.
// The host is recorded by username as well as connection id: when the host's
// browser refreshes, the new connection reclaims the role by matching the
// display name. Anyone joining under the same name reclaims it too; that is
// an accepted trust trade-off inherited from the original protocol.
type Room struct {
	ID string

	// members in arrival order; index 0 is the earliest-joined, which is
	// the deterministic successor when the host departs.
	members []*Client

	hostID       string // empty while the host seat is vacant
	hostUsername string // survives a vacancy so a returning host can reclaim
}

func newRoom(id string) *Room {
	return &Room{ID: id}
}

func (r *Room) add(c *Client) {
	if r.memberByID(c.ID) != nil {
		return
	}
	r.members = append(r.members, c)
}

func (r *Room) remove(c *Client) {
	r.members = slices.DeleteFunc(r.members, func(m *Client) bool { return m.ID == c.ID })
}

func (r *Room) memberByID(id string) *Client {
	for _, m := range r.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *Room) memberCount() int { return len(r.members) }

func (r *Room) recipients() []*Client {
	return slices.Clone(r.members)
}
