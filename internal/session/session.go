// Package session derives a browser's authentication state from its persisted
// storage and owns every transition of that state: login with a password,
// login through an external identity provider, logout, and the silent purge
// of credentials that can no longer be read.
//
// Views never touch storage directly. They ask the Manager for a State, and
// long-lived views subscribe to the Broker to learn when another tab of the
// same browser changed it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Storage keys shared with every Storage implementation.
const (
	KeyToken = "authToken"
	KeyUser  = "user"
)

// Status is the tri-state authentication status.
type Status int

const (
	// StatusUnknown means the state could not be resolved yet.
	StatusUnknown Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// User is the identity carried by a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DisplayName returns the name when set, else the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// State is a snapshot of one storage scope's authentication state.
// User is non-nil exactly when Status is StatusAuthenticated.
type State struct {
	Status Status
	User   *User
	Token  string
}

// Authenticated reports whether the snapshot carries a usable identity.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Credentials is the password-grant login input.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Grant is a successful authentication: the bearer token and, when the
// backend returned one, the user record. A nil User is derived from the token.
type Grant struct {
	Token string
	User  *User
}

var (
	ErrMalformedToken     = errors.New("session: malformed token")
	ErrExpiredToken       = errors.New("session: token expired")
	ErrMissingCode        = errors.New("session: authorization code missing")
	ErrRedirectDisabled   = errors.New("session: redirect login is not configured")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserGone           = errors.New("session: user no longer exists")
)

// GenericLoginFailure is shown when the backend gave no usable message.
const GenericLoginFailure = "Login failed. Please try again."

// BackendError is a non-success answer from the authentication backend.
type BackendError struct {
	Status  int
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ErrorMessage returns the message a login form should display for err.
func ErrorMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return GenericLoginFailure
}

func encodeUser(u *User) string {
	b, err := json.Marshal(u)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeUser(raw string) (*User, bool) {
	if raw == "" {
		return nil, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		return nil, false
	}
	return &u, true
}
