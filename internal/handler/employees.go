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
)

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string `json:"username" validate:"required"`
		FullName        string `json:"fullName" validate:"required"`
		Email           string `json:"email" validate:"required,email"`
		Role            string `json:"role" validate:"required"`
		SkillLevel      int32  `json:"skillLevel" validate:"required,min=1,max=5"`
		MonthlyCapHours int32  `json:"monthlyCapHours" validate:"min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := &domain.Employee{
		Username:        req.Username,
		FullName:        req.FullName,
		Email:           req.Email,
		Role:            req.Role,
		SkillLevel:      req.SkillLevel,
		MonthlyCapHours: req.MonthlyCapHours,
		IsActive:        true,
	}

	if err := h.repository.CreateEmployee(r.Context(), employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "employees_username_key":
				h.badRequest(w, r, errors.New("用户名已存在"))
			case pgErr.ConstraintName == "employees_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "员工创建成功", employee)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)
	h.successResponse(w, r, "获取员工信息成功", employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName            *string `json:"fullName"`
		Email               *string `json:"email" validate:"omitempty,email"`
		Role                *string `json:"role"`
		SkillLevel          *int32  `json:"skillLevel" validate:"omitempty,min=1,max=5"`
		RecentBackfillHours *int32  `json:"recentBackfillHours" validate:"omitempty,min=0"`
		MonthlyCapHours     *int32  `json:"monthlyCapHours" validate:"omitempty,min=0"`
		IsActive            *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.Role != nil {
		employee.Role = *req.Role
	}
	if req.SkillLevel != nil {
		employee.SkillLevel = *req.SkillLevel
	}
	if req.RecentBackfillHours != nil {
		employee.RecentBackfillHours = *req.RecentBackfillHours
	}
	if req.MonthlyCapHours != nil {
		employee.MonthlyCapHours = *req.MonthlyCapHours
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateEmployee(r.Context(), employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "employees_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新员工信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新员工信息成功", employee)
}

func (h *Handler) GetEmployeeWorkload(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	month := time.Now().UTC()
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		parsed, err := time.Parse("2006-01", monthParam)
		if err != nil {
			h.errorResponse(w, r, "月份格式无效，应为 YYYY-MM")
			return
		}
		month = parsed
	}

	cacheKey := fmt.Sprintf("workload_%d_%s", employee.ID, month.Format("2006-01"))
	if cached, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
		workload := &domain.WorkloadWindow{}
		if err := json.Unmarshal([]byte(cached), workload); err == nil {
			h.successResponse(w, r, "获取员工负载成功", workload)
			return
		}
	}

	workload, err := h.service.EmployeeWorkload(r.Context(), employee.ID, month)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	// 缓存失败不影响响应，负载视图下次请求时重算即可
	if data, err := json.Marshal(workload); err == nil {
		if err := h.redisClient.Set(r.Context(), cacheKey, data, time.Duration(h.config.Redis.CacheExpiration)*time.Second).Err(); err != nil {
			slog.Warn("写入负载缓存失败", "key", cacheKey, "error", err)
		}
	}

	h.successResponse(w, r, "获取员工负载成功", workload)
}
