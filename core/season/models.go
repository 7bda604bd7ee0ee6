package season

import (
	"github.com/volatiletech/null/v8"

	"github.com/tmalu/clubhub/core"
)

// Season is an administrator-bounded period during which attendance
// tracking is permitted. At most one Season is active at any time;
// the storage layer guarantees it with a partial unique index.
type Season struct {
	ID           string      `json:"id"`
	StartDate    core.Date   `json:"start_date"`
	FinishDate   null.Time   `json:"finish_date,omitempty"`
	IsActive     bool        `json:"is_active"`
	StartedByID  string      `json:"started_by_id"`
	FinishedByID null.String `json:"finished_by_id,omitempty"`
}
