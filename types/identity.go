package types

import "github.com/google/uuid"

// Identity is the visitor identity used as the key for assignment lookup.
//
// At most one of UserID and SessionID may be set per resolution: UserID is a
// durable cross-device identity, SessionID an ephemeral device-local one.
// The zero value means "anonymous, client-only" and never reaches the backend.
type Identity struct {
	// UserID is an opaque durable identity (e.g. an account id).
	UserID string `json:"userId,omitempty" yaml:"userId,omitempty"`

	// SessionID is an ephemeral device-local identity.
	SessionID string `json:"sessionId,omitempty" yaml:"sessionId,omitempty"`
}

// Present reports whether any identity is set.
func (id Identity) Present() bool {
	return id.UserID != "" || id.SessionID != ""
}

// Key returns the canonical visitor key for backend lookups: the user id when
// set, otherwise the session id, otherwise "".
func (id Identity) Key() string {
	if id.UserID != "" {
		return id.UserID
	}

	return id.SessionID
}

// Validate checks the at-most-one-identity invariant.
//
// Returns:
//   - error: ErrAmbiguousIdentity if both UserID and SessionID are set
func (id Identity) Validate() error {
	if id.UserID != "" && id.SessionID != "" {
		return ErrAmbiguousIdentity
	}

	return nil
}

// UserIdentity builds an Identity from a durable user id.
func UserIdentity(userID string) Identity {
	return Identity{UserID: userID}
}

// SessionIdentity builds an Identity from an ephemeral session id.
func SessionIdentity(sessionID string) Identity {
	return Identity{SessionID: sessionID}
}

// NewSessionID generates a fresh ephemeral session id.
//
// Returns:
//   - string: A "sess_"-prefixed UUID suitable for Identity.SessionID
func NewSessionID() string {
	return "sess_" + uuid.NewString()
}
