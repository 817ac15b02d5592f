package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/utils"
)

func (h *Handler) GetAllAbsences(w http.ResponseWriter, r *http.Request) {
	absences, err := h.repository.GetAllAbsences(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取缺勤列表成功", absences)
}

func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind               string `json:"kind" validate:"required,oneof=pto training other"`
		EmployeeID         int64  `json:"employeeID" validate:"required"`
		WindowStart        string `json:"windowStart" validate:"required"`
		WindowEnd          string `json:"windowEnd" validate:"required"`
		RequiredHours      int32  `json:"requiredHours" validate:"required,min=1"`
		RequiredSkillLevel int32  `json:"requiredSkillLevel" validate:"omitempty,min=1,max=5"`
		AllowCrossRole     bool   `json:"allowCrossRole"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	window, err := utils.ParseDateWindow(req.WindowStart, req.WindowEnd)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee, err := h.repository.GetEmployeeByID(r.Context(), req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	absence := &domain.AbsenceReference{
		Kind:               domain.AbsenceKind(req.Kind),
		EmployeeID:         employee.ID,
		EmployeeName:       employee.FullName,
		EmployeeRole:       employee.Role,
		Window:             window,
		RequiredHours:      req.RequiredHours,
		RequiredSkillLevel: req.RequiredSkillLevel,
		AllowCrossRole:     req.AllowCrossRole,
	}

	if err := h.repository.CreateAbsence(r.Context(), absence); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "absences_employee_id_fkey":
				h.badRequest(w, r, errors.New("员工不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "缺勤记录创建成功", absence)
}

func (h *Handler) GetAbsence(w http.ResponseWriter, r *http.Request) {
	absence := r.Context().Value(AbsenceCtx).(*domain.AbsenceReference)
	h.successResponse(w, r, "获取缺勤记录成功", absence)
}

func (h *Handler) GetAbsenceCandidates(w http.ResponseWriter, r *http.Request) {
	absence := r.Context().Value(AbsenceCtx).(*domain.AbsenceReference)

	candidates, err := h.service.GetCandidates(r.Context(), absence)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取候选人列表成功", candidates)
}

func (h *Handler) GetAbsenceCoverage(w http.ResponseWriter, r *http.Request) {
	absence := r.Context().Value(AbsenceCtx).(*domain.AbsenceReference)

	cacheKey := fmt.Sprintf("coverage_%d", absence.ID)
	if cached, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
		summary := &domain.CoverageSummary{}
		if err := json.Unmarshal([]byte(cached), summary); err == nil {
			h.successResponse(w, r, "获取覆盖情况成功", summary)
			return
		}
	}

	summary, err := h.service.CoverageSummary(r.Context(), absence)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := h.redisClient.Set(r.Context(), cacheKey, data, time.Duration(h.config.Redis.CacheExpiration)*time.Second).Err(); err != nil {
			slog.Warn("写入覆盖缓存失败", "key", cacheKey, "error", err)
		}
	}

	h.successResponse(w, r, "获取覆盖情况成功", summary)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateID      int64 `json:"candidateID" validate:"required"`
		EstimatedHours   int32 `json:"estimatedHours" validate:"required,min=1"`
		OverrideCapacity bool  `json:"overrideCapacity"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	absence := r.Context().Value(AbsenceCtx).(*domain.AbsenceReference)
	operatorID := r.Context().Value(OperatorIDCtx).(int64)

	assignment, err := h.service.Assign(r.Context(), absence, req.CandidateID, req.EstimatedHours, req.OverrideCapacity, operatorID)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	h.invalidateAssignmentCaches(r, assignment)
	h.publishAssignmentEvent(r, domain.EventAssignmentCreated, assignment)

	h.successResponse(w, r, "替班安排创建成功", assignment)
}

func (h *Handler) GetAbsenceAssignments(w http.ResponseWriter, r *http.Request) {
	absence := r.Context().Value(AbsenceCtx).(*domain.AbsenceReference)

	assignments, err := h.repository.ListAssignmentsByAbsence(r.Context(), absence.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取替班安排列表成功", assignments)
}
