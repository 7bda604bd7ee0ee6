package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tmalu/clubhub/core/user"
)

func TestUserRepository_QueryAllUsers_ordering(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "is_active", "roles", "created_at", "updated_at"}).
		AddRow("u1", "Alice", "Kalombo", "alice@test.cd", true, "{member:}", now, now).
		AddRow("u2", "Bob", "Ilunga", "bob@test.cd", true, "{teacher:}", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM club_user ORDER BY first_name ASC, last_name ASC`)).
		WillReturnRows(rows)

	users, err := repo.QueryAllUsers(context.Background())
	if err != nil {
		t.Fatalf("QueryAllUsers() failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d; want 2", len(users))
	}
	if users[0].FullName() != "Alice Kalombo" || users[1].FullName() != "Bob Ilunga" {
		t.Errorf("users = [%s, %s]; want [Alice Kalombo, Bob Ilunga]", users[0].FullName(), users[1].FullName())
	}
	if !users[1].RoleStartsWith(user.RoleTeacher) {
		t.Errorf("users[1].Roles = %v; want a %q role", users[1].Roles, user.RoleTeacher)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
