package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/coordinator"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID     string           `json:"staffID" validate:"required"`
		CounterID   string           `json:"counterID" validate:"required"`
		WorkShiftID string           `json:"workShiftID" validate:"required"`
		WorkDate    domain.Date      `json:"workDate" validate:"required"`
		ShiftType   domain.ShiftType `json:"shiftType" validate:"omitempty,oneof=Morning Afternoon FullDay"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, err := h.coordinator.Assign(r.Context(), coordinator.AssignRequest{
		StaffID:     req.StaffID,
		CounterID:   req.CounterID,
		WorkShiftID: req.WorkShiftID,
		WorkDate:    req.WorkDate,
		ShiftType:   req.ShiftType,
	})
	if err != nil {
		h.coordinatorError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建排班成功", assignment)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	assignment, err := h.coordinator.Unassign(r.Context(), id)
	if err != nil {
		h.coordinatorError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班成功", assignment)
}

// CheckAssignment 只做预校验，不会写入任何数据
func (h *Handler) CheckAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID     string           `json:"staffID" validate:"required"`
		WorkShiftID string           `json:"workShiftID" validate:"required"`
		WorkDate    domain.Date      `json:"workDate" validate:"required"`
		ShiftType   domain.ShiftType `json:"shiftType" validate:"required,oneof=Morning Afternoon FullDay"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.coordinator.Check(r.Context(), req.StaffID, domain.Candidate{
		WorkDate:    req.WorkDate,
		WorkShiftID: req.WorkShiftID,
		ShiftType:   req.ShiftType,
	})
	if err != nil {
		h.coordinatorError(w, r, err)
		return
	}

	msg := "校验通过"
	if !result.IsValid {
		msg = "校验未通过"
	}
	h.successResponse(w, r, msg, result)
}

func (h *Handler) GetStaffAssignments(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "id")

	assignments, err := h.coordinator.ListAssignments(r.Context(), staffID)
	if err != nil {
		h.coordinatorError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班成功", assignments)
}
