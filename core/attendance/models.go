package attendance

import (
	"github.com/tmalu/clubhub/core"
)

// Fact is one persisted attendance record: a user either attended or
// missed the class on a given day. Absence is recorded, not inferred;
// a missing Fact means the day was not tracked for that user at all.
// Facts are unique per (user, date).
type Fact struct {
	ID       string    `json:"id"`
	Date     core.Date `json:"date"`
	UserID   string    `json:"user_id"`
	Attended bool      `json:"attended"`
}

// Mark is the three-valued cell state of the monthly matrix. The blank
// value keeps "class not tracked that day" distinct from "marked absent".
type Mark string

const (
	MarkPresent    Mark = "present"
	MarkAbsent     Mark = "absent"
	MarkUnrecorded Mark = ""
)

func markOf(attended bool) Mark {
	if attended {
		return MarkPresent
	}
	return MarkAbsent
}

type (
	// Matrix is the dense (dates x members) view of one class group's
	// attendance for a month. Dates ascend; rows follow roster name order.
	Matrix struct {
		ClassGroupID string      `json:"class_group_id"`
		Year         int         `json:"year"`
		Month        int         `json:"month"`
		Dates        []core.Date `json:"dates"`
		Rows         []Row       `json:"rows"`
	}

	// Row holds one member's marks, index-aligned with Matrix.Dates.
	Row struct {
		UserID    string `json:"user_id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Marks     []Mark `json:"marks"`
	}
)

// Result lists the facts committed by one reconciled batch. An external
// notifier may consume it; this core only returns it.
type Result struct {
	Date         core.Date `json:"date"`
	ClassGroupID string    `json:"class_group_id"`
	Facts        []Fact    `json:"facts"`
}
