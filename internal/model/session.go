package model

// GateState is the per-session authorization flag of the access gate.
type GateState string

const (
	GateUnset    GateState = "unset"
	GateRejected GateState = "rejected"
	GateAccepted GateState = "accepted"
)

// Valid reports whether s is one of the known gate states.
func (s GateState) Valid() bool {
	switch s {
	case GateUnset, GateRejected, GateAccepted:
		return true
	}
	return false
}

// UnlockRequest is the payload for submitting the gate password.
type UnlockRequest struct {
	Password string `json:"password" binding:"max=1024"`
}
