package logbook

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mission is the operational record (incident) that log entries belong to.
type Mission struct {
	ID      uuid.UUID `json:"id" validate:"required"`
	Title   string    `json:"title"`
	Number  string    `json:"number"`
	County  string    `json:"county"`
	Started time.Time `json:"started"`
}

// String returns the display label used in mission pickers
func (m Mission) String() string {
	return fmt.Sprintf("%s %s", m.Number, m.Title)
}
