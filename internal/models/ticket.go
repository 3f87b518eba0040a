package models

// Ticket is the QR-coded pass bound to a user's stable id.
type Ticket struct {
	UserID string `json:"userId"`
	Link   string `json:"link"`
	PNG    []byte `json:"-"`
}
