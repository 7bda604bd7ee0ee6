package echoapi

import (
	"net/http"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
	"github.com/tmalu/clubhub/core/report"
	"github.com/tmalu/clubhub/core/season"
)

type (
	attendanceAPIDeps struct {
		attSvc     attendance.ServiceInterface
		seasonSvc  season.ServiceInterface
		reportSvc  report.ServiceInterface
		validate   *validator.Validate
		translator ut.Translator
	}

	attendanceApi struct {
		attendanceAPIDeps
	}
)

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps attendanceAPIDeps) {
	api := attendanceApi{deps}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.record, staffMiddleware())
	ag.GET("/monthly", api.monthly)
	ag.GET("/report/:classGroupId", api.report, staffMiddleware())
	ag.POST("/report/:classGroupId/email", api.emailReport, adminMiddleware())
}

// Handlers

func (api *attendanceApi) record(ctx echo.Context) error {
	var data RecordAttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordAttendanceRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()

	// attendance can only be taken while a season is running
	active, err := api.seasonSvc.IsActive(reqCtx)
	if err != nil {
		return errors.Wrap(err, "checking active season")
	}
	if !active {
		return errSeasonNotStarted
	}

	res, err := api.attSvc.Record(reqCtx, data.date, data.ClassGroupID, data.AttendedIDs, data.AbsentIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) monthly(ctx echo.Context) error {
	var query MonthlyMatrixRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to MonthlyMatrixRequest")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	matrix, err := api.attSvc.MonthlyMatrix(ctx.Request().Context(), query.ClassGroupID, query.Year, query.Month)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, matrix)
}

func (api *attendanceApi) report(ctx echo.Context) error {
	doc, err := api.reportSvc.YearReport(ctx.Request().Context(), ctx.Param("classGroupId"))
	if err != nil {
		return err
	}
	return ctx.Blob(http.StatusOK, "application/pdf", doc)
}

func (api *attendanceApi) emailReport(ctx echo.Context) error {
	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailReportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	to := make([]mail.Address, len(data.To))
	for i, addr := range data.To {
		to[i] = mail.Address{Address: addr}
	}

	if err := api.reportSvc.EmailYearReport(ctx.Request().Context(), ctx.Param("classGroupId"), to); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Report queued."})
}

type (
	RecordAttendanceRequest struct {
		Date         string   `json:"date" validate:"required"`
		ClassGroupID string   `json:"class_group_id" validate:"required"`
		AttendedIDs  []string `json:"attended_ids"`
		AbsentIDs    []string `json:"absent_ids"`

		date core.Date
	}

	MonthlyMatrixRequest struct {
		ClassGroupID string `query:"class_group_id" json:"class_group_id" validate:"required"`
		Year         int    `query:"year" json:"year" validate:"required"`
		Month        int    `query:"month" json:"month" validate:"required,min=1,max=12"`
	}

	EmailReportRequest struct {
		To []string `json:"to" validate:"required,min=1,dive,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (r *RecordAttendanceRequest) Validate(validate *validator.Validate) error {
	r.ClassGroupID = core.CleanString(r.ClassGroupID)
	if err := validate.Struct(r); err != nil {
		return err
	}

	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "invalid date; expected " + core.DateFormat})
	}
	r.date = date
	return nil
}

func (r *MonthlyMatrixRequest) Validate(validate *validator.Validate) error {
	r.ClassGroupID = core.CleanString(r.ClassGroupID)
	return validate.Struct(r)
}

func (r *EmailReportRequest) Validate(validate *validator.Validate) error {
	for i, addr := range r.To {
		r.To[i] = core.CleanString(addr, true /* lower */)
	}
	return validate.Struct(r)
}
