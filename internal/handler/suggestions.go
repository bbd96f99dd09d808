package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

func (h *Handler) SuggestStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffIDs []string      `json:"staffIDs" validate:"required,min=1,dive,required"`
		WorkDate domain.Date   `json:"workDate" validate:"required"`
		Mode     calendar.Mode `json:"mode" validate:"omitempty,oneof=week month"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Mode == "" {
		req.Mode = calendar.ModeWeek
	}

	rankings, err := h.coordinator.Suggest(r.Context(), req.StaffIDs, req.WorkDate, req.Mode)
	if err != nil {
		h.coordinatorError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班建议成功", rankings)
}

func (h *Handler) RecommendStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffIDs    []string         `json:"staffIDs" validate:"required,min=1,dive,required"`
		WorkShiftID string           `json:"workShiftID" validate:"required"`
		WorkDate    domain.Date      `json:"workDate" validate:"required"`
		ShiftType   domain.ShiftType `json:"shiftType" validate:"required,oneof=Morning Afternoon FullDay"`
		Mode        calendar.Mode    `json:"mode" validate:"omitempty,oneof=week month"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Mode == "" {
		req.Mode = calendar.ModeWeek
	}

	recommendation, err := h.coordinator.Recommend(r.Context(), req.StaffIDs, domain.Candidate{
		WorkDate:    req.WorkDate,
		WorkShiftID: req.WorkShiftID,
		ShiftType:   req.ShiftType,
	}, req.Mode)
	if err != nil {
		h.coordinatorError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取推荐员工成功", recommendation)
}
