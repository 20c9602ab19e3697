package entities

// Session is a point-in-time view of the session store.
type Session struct {
	User            *User `json:"user"`
	Loading         bool  `json:"loading"`
	HasLoaded       bool  `json:"has_loaded"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

// NewSession builds a snapshot; IsAuthenticated is derived, never stored.
func NewSession(user *User, loading, hasLoaded bool) Session {
	var cp *User
	if user != nil {
		u := *user
		cp = &u
	}
	return Session{
		User:            cp,
		Loading:         loading,
		HasLoaded:       hasLoaded,
		IsAuthenticated: cp != nil && !loading,
	}
}
