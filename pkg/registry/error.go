package registry

import "fmt"

// ErrNotFound indicates no cataloged save exists for a session.
type ErrNotFound struct {
	StudyID   string
	SessionID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("no saves recorded for study %s, session %s", e.StudyID, e.SessionID)
}
