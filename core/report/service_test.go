package report_test

import (
	"bytes"
	"context"
	"net/mail"
	"testing"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/report"
	"github.com/tmalu/clubhub/core/user"
	emailsvc "github.com/tmalu/clubhub/services/email"
	dummydb "github.com/tmalu/clubhub/storage/database/dummy"
	testutil "github.com/tmalu/clubhub/tests"
)

// stubAttendanceService records which (year, month) pages were requested.
type stubAttendanceService struct {
	years       []int
	matrixCalls [][2]int
}

var _ attendance.ServiceInterface = (*stubAttendanceService)(nil)

func (s *stubAttendanceService) Record(context.Context, core.Date, string, []string, []string) (attendance.Result, error) {
	panic("not used")
}

func (s *stubAttendanceService) MonthlyMatrix(_ context.Context, classGroupID string, year, month int) (attendance.Matrix, error) {
	s.matrixCalls = append(s.matrixCalls, [2]int{year, month})
	return attendance.Matrix{ClassGroupID: classGroupID, Year: year, Month: month}, nil
}

func (s *stubAttendanceService) TrackedYears(context.Context, string) ([]int, error) {
	return s.years, nil
}

func setup(t *testing.T) (classgroup.Repository, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return dummydb.NewClassGroupRepository(db), dummydb.NewUserRepository(db)
}

func countPages(doc []byte) int {
	// each page object carries "/Type /Page"; the page tree carries "/Type /Pages"
	return bytes.Count(doc, []byte("/Type /Page")) - bytes.Count(doc, []byte("/Type /Pages"))
}

func TestService_YearReport(t *testing.T) {
	grpRepo, usrRepo := setup(t)
	ctx := context.Background()
	conf := testutil.NewConfig()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "Banza", "alice@test.cd", []string{user.RoleMember}, true)
	group := testutil.CreateClassGroup(t, grpRepo, "Chess Club", alice)

	attSvc := &stubAttendanceService{years: []int{2019, 2021}}
	svc := report.NewService(attSvc, classgroup.NewService(grpRepo), emailsvc.NewConsoleServiceMock(conf))

	t.Run("unknown class group", func(t *testing.T) {
		if _, err := svc.YearReport(ctx, "e1c0deb9-91a6-44b9-8e4e-0a8a0d9b0000"); err != classgroup.ErrNotFound {
			t.Errorf("YearReport() err = %v; want %v", err, classgroup.ErrNotFound)
		}
	})

	t.Run("one page per month, latest tracked year", func(t *testing.T) {
		attSvc.matrixCalls = nil

		doc, err := svc.YearReport(ctx, group.ID)
		if err != nil {
			t.Fatalf("YearReport() failed: %v", err)
		}

		if !bytes.HasPrefix(doc, []byte("%PDF")) {
			t.Error("YearReport() did not produce a PDF document")
		}
		if got := countPages(doc); got != 12 {
			t.Errorf("page count = %d; want 12", got)
		}
		if len(attSvc.matrixCalls) != 12 {
			t.Fatalf("matrix calls = %d; want 12", len(attSvc.matrixCalls))
		}
		for i, call := range attSvc.matrixCalls {
			if call[0] != 2021 {
				t.Errorf("call %d rendered year %d; want 2021", i, call[0])
			}
			if call[1] != i+1 {
				t.Errorf("call %d rendered month %d; want %d", i, call[1], i+1)
			}
		}
	})
}

func TestService_EmailYearReport(t *testing.T) {
	grpRepo, usrRepo := setup(t)
	ctx := context.Background()
	conf := testutil.NewConfig()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "Banza", "alice@test.cd", []string{user.RoleMember}, true)
	group := testutil.CreateClassGroup(t, grpRepo, "Chess Club", alice)

	attSvc := &stubAttendanceService{}
	svc := report.NewService(attSvc, classgroup.NewService(grpRepo), emailsvc.NewConsoleServiceMock(conf))

	emailsvc.SentMessages = nil // reset
	to := []mail.Address{{Name: "Coach", Address: "coach@test.cd"}}
	if err := svc.EmailYearReport(ctx, group.ID, to); err != nil {
		t.Fatalf("EmailYearReport() failed: %v", err)
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0] != to[0] {
		t.Errorf("To = %v; want %v", msg.To[0], to[0])
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("len(Attachments) = %d; want 1", len(msg.Attachments))
	}
	at := msg.Attachments[0]
	if at.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q; want application/pdf", at.ContentType)
	}
	if at.Filename != "attendance-"+group.ID+".pdf" {
		t.Errorf("Filename = %q; want attendance-%s.pdf", at.Filename, group.ID)
	}
	if at.Content.Len() == 0 {
		t.Error("attachment is empty")
	}
}
