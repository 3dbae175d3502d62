// Package session holds the authenticated user: an in-memory store mirrored
// into a durable file cache, reconciled against the server on boot.
//
// The server is authoritative. The cache exists so the UI can paint a
// possibly-stale session immediately while reconciliation is in flight.
package session

import "encoding/json"

// User is the session/profile record exchanged with the API.
type User struct {
	ID        string   `json:"_id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	EmailID   string   `json:"emailId,omitempty"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	About     string   `json:"about,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	PhotoURL  string   `json:"photoUrl,omitempty"`
}

// UnmarshalJSON accepts both "_id" (what the backend emits) and "id".
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// FullName returns "First Last", tolerating a missing last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
