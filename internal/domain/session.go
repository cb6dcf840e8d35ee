package domain

import "time"

// SessionRecord is the persisted form of a live session: enough to rebuild its engine.
// Version starts at 1 and grows by one with every applied operation.
type SessionRecord struct {
	ID        string    `json:"-"`
	SetID     string    `json:"setId"`
	Version   int64     `json:"version"`
	State     QuizState `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Supersedes checks that r may replace the stored record. A first version requires that nothing
// is stored yet; any later version must directly follow the stored one.
func (r SessionRecord) Supersedes(stored SessionRecord, found bool) error {
	switch {
	case r.Version <= 1 && found:
		return ErrSessionConflict
	case r.Version <= 1:
		return nil
	case !found:
		return ErrSessionNotFound
	case stored.Version != r.Version-1:
		return ErrSessionConflict
	}
	return nil
}

// Snapshot is what callers and subscribers see after each operation.
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	SetID     string    `json:"setId"`
	Applied   bool      `json:"applied"`
	State     QuizState `json:"state"`
	View      View      `json:"view"`
	UpdatedAt time.Time `json:"updatedAt"`
}
