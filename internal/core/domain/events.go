package domain

import "time"

// ChangeOp names the kind of store change.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
	// ChangeClaim is emitted locally after unowned rows were assigned.
	ChangeClaim ChangeOp = "CLAIM"
)

// ChangeEvent tells subscribers that an owner's data changed and should be refetched.
type ChangeEvent struct {
	Op            ChangeOp  `json:"op"`
	OwnerIdentity string    `json:"ownerIdentity"`
	TransactionID string    `json:"transactionId,omitempty"`
	At            time.Time `json:"at"`
}

// AuthEvent tells open streams of a user that the sign-in state changed.
type AuthEvent struct {
	SignedIn  bool      `json:"signedIn"`
	SessionID string    `json:"sessionId"`
	At        time.Time `json:"at"`
}
