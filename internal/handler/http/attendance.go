package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	"github.com/wakatta-dev/workbot/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	DailyRecord(w http.ResponseWriter, r *http.Request)
	RangeRecords(w http.ResponseWriter, r *http.Request)
	WeeklySummary(w http.ResponseWriter, r *http.Request)
	MonthlySummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

type operationFunc func(r *http.Request, req attendance.OperationRequest) (attendance.Result, error)

// handleOperation decodes the shared operation payload, runs the state-machine
// operation and writes its Result. Rejections keep HTTP 200; the success flag
// carries the outcome.
func (h *attendanceHandlerImpl) handleOperation(w http.ResponseWriter, r *http.Request, op operationFunc) {
	var req attendance.OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := op(r, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Success {
		response.Rejected(w, result.Message, result.Data)
		return
	}
	response.SuccessWithMessage(w, result.Message, result.Data)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, func(r *http.Request, req attendance.OperationRequest) (attendance.Result, error) {
		return h.attendanceService.CheckIn(r.Context(), req)
	})
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, func(r *http.Request, req attendance.OperationRequest) (attendance.Result, error) {
		return h.attendanceService.CheckOut(r.Context(), req)
	})
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, func(r *http.Request, req attendance.OperationRequest) (attendance.Result, error) {
		return h.attendanceService.StartBreak(r.Context(), req)
	})
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.handleOperation(w, r, func(r *http.Request, req attendance.OperationRequest) (attendance.Result, error) {
		return h.attendanceService.EndBreak(r.Context(), req)
	})
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	status, err := h.attendanceService.CurrentStatus(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, status)
}

// DailyRecord implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyRecord(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	date := chi.URLParam(r, "date")

	record, err := h.attendanceService.DailyRecord(r.Context(), userID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// RangeRecords implements AttendanceHandler.
func (h *attendanceHandlerImpl) RangeRecords(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	records, err := h.attendanceService.RangeRecords(r.Context(), userID, startDate, endDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// WeeklySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	weekStart := r.URL.Query().Get("week_start")

	summary, err := h.attendanceService.WeeklySummary(r.Context(), userID, weekStart)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// MonthlySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "Query parameter 'year' must be an integer", nil)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, "Query parameter 'month' must be an integer", nil)
		return
	}

	summary, err := h.attendanceService.MonthlySummary(r.Context(), userID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}
