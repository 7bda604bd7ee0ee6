package classgroup

import (
	"time"

	"github.com/tmalu/clubhub/core/user"
)

// ClassGroup is a class and its current member roster.
// Members keep the order they were added to the group in.
type ClassGroup struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Members   []user.User `json:"members"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

func (cg *ClassGroup) MemberIDs() []string {
	ids := make([]string, 0, len(cg.Members))
	for _, m := range cg.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
