// Package auth answers whether the process may use a camera.
//
// A Gate caches the answer of its Backend once it is determined. Only the
// NotDetermined state ever reaches Backend.Request, which is where a host
// shows its permission prompt.
package auth

// State is the camera permission state.
type State int

const (
	// NotDetermined means the user hasn't been asked yet.
	NotDetermined State = iota
	// Authorized means camera access is granted.
	Authorized
	// Denied means the user refused access.
	Denied
	// Restricted means access is blocked by the system and the user can't
	// change it, e.g. no camera device is exposed to the process.
	Restricted
)

func (s State) String() string {
	switch s {
	case NotDetermined:
		return "not determined"
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	case Restricted:
		return "restricted"
	}
	return "unknown"
}

// Determined reports whether s is a final answer.
func (s State) Determined() bool {
	return s != NotDetermined
}

// message is the human readable explanation of s handed to consumers.
func (s State) message() string {
	switch s {
	case Authorized:
		return "camera access granted"
	case Denied:
		return "camera access was denied; allow camera access for this application and try again"
	case Restricted:
		return "camera access is restricted on this system"
	}
	return "camera access has not been determined"
}
