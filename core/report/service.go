package report

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	pkgerrors "github.com/pkg/errors"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
	"github.com/tmalu/clubhub/core/classgroup"
)

// monthNames is a fixed table so page titles never depend on the process
// locale.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

const (
	nameColWidth = 60.0 // mm
	dayColWidth  = 9.0  // mm
	rowHeight    = 7.0  // mm

	glyphPresent    = "P"
	glyphAbsent     = "A"
	glyphUnrecorded = "-"
)

type (
	ServiceInterface interface {
		YearReport(ctx context.Context, classGroupID string) ([]byte, error)
		EmailYearReport(ctx context.Context, classGroupID string, to []mail.Address) error
	}

	Service struct {
		attSvc  attendance.ServiceInterface
		grpSvc  classgroup.ServiceInterface
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(attSvc attendance.ServiceInterface, grpSvc classgroup.ServiceInterface, mailSvc core.EmailService) *Service {
	return &Service{attSvc: attSvc, grpSvc: grpSvc, mailSvc: mailSvc}
}

// YearReport renders the class group's attendance for the report year as a
// single landscape PDF, one page per calendar month, January through
// December. Months with no recorded dates get a placeholder page. The
// report year is the latest year with recorded attendance, falling back to
// the current year when nothing is recorded yet.
func (svc *Service) YearReport(ctx context.Context, classGroupID string) ([]byte, error) {
	group, err := svc.grpSvc.GetByID(ctx, classGroupID)
	if err != nil {
		return nil, err
	}

	year, err := svc.reportYear(ctx, classGroupID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - Attendance %d", group.Name, year), true)

	for month := 1; month <= 12; month++ {
		matrix, err := svc.attSvc.MonthlyMatrix(ctx, classGroupID, year, month)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "building matrix for %d-%02d", year, month)
		}
		renderMonthPage(pdf, group.Name, year, month, matrix)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, pkgerrors.Wrap(err, "writing PDF")
	}
	return buf.Bytes(), nil
}

// EmailYearReport renders the year report and mails it as a PDF attachment.
func (svc *Service) EmailYearReport(ctx context.Context, classGroupID string, to []mail.Address) error {
	group, err := svc.grpSvc.GetByID(ctx, classGroupID)
	if err != nil {
		return err
	}

	doc, err := svc.YearReport(ctx, classGroupID)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Attendance report - %s", group.Name),
		BodyStr: fmt.Sprintf("Attached is the yearly attendance report for %s.", group.Name),
	}
	filename := fmt.Sprintf("attendance-%s.pdf", group.ID)
	if err = msg.Attach(bytes.NewReader(doc), filename, "application/pdf"); err != nil {
		return pkgerrors.Wrap(err, "attaching report")
	}

	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *Service) reportYear(ctx context.Context, classGroupID string) (int, error) {
	years, err := svc.attSvc.TrackedYears(ctx, classGroupID)
	if err != nil {
		return 0, err
	}
	if len(years) == 0 {
		return time.Now().UTC().Year(), nil
	}
	return years[len(years)-1], nil
}

func renderMonthPage(pdf *gofpdf.Fpdf, groupName string, year, month int, matrix attendance.Matrix) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s - %s %d", groupName, monthNames[month-1], year), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(matrix.Dates) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 10, fmt.Sprintf("No attendance recorded for %s %d.", monthNames[month-1], year), "", 1, "L", false, 0, "")
		return
	}

	// header: fixed-wide name column, narrow equal day columns
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(nameColWidth, rowHeight, "Member", "1", 0, "L", false, 0, "")
	for _, d := range matrix.Dates {
		pdf.CellFormat(dayColWidth, rowHeight, strconv.Itoa(d.Day()), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range matrix.Rows {
		pdf.CellFormat(nameColWidth, rowHeight, row.FirstName+" "+row.LastName, "1", 0, "L", false, 0, "")
		for _, mark := range row.Marks {
			pdf.CellFormat(dayColWidth, rowHeight, glyph(mark), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func glyph(mark attendance.Mark) string {
	switch mark {
	case attendance.MarkPresent:
		return glyphPresent
	case attendance.MarkAbsent:
		return glyphAbsent
	default:
		return glyphUnrecorded
	}
}
