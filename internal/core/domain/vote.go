package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID             uuid.UUID `json:"id"`
	StudentID      string    `json:"studentId"`
	StudentName    string    `json:"studentName"`
	Grade          string    `json:"grade"`
	Room           string    `json:"room"`
	SelectedOption string    `json:"bookCover"`
	CastAt         time.Time `json:"timestamp"`
}

// Receipt describes a committed vote together with the ledger state right after the commit.
type Receipt struct {
	Vote    Vote
	Summary Summary
}
