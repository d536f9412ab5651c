package models

// Session is a snapshot of the current portal identity.
// IsAuthenticated implies Role is set.
type Session struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	Role            Role     `json:"role,omitempty"`
	UserID          *int64   `json:"userId,omitempty"`
	User            *Profile `json:"user,omitempty"`
}

// Anonymous returns the zero session
func Anonymous() Session {
	return Session{}
}

// Clone returns a deep copy so callers never share pointers with the store
func (s Session) Clone() Session {
	out := Session{IsAuthenticated: s.IsAuthenticated, Role: s.Role}
	if s.UserID != nil {
		id := *s.UserID
		out.UserID = &id
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
