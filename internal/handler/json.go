package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/backfill"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponseWithData(w, r, msg, nil)
}

// errorResponseWithData 在错误响应中附带结构化的错误详情，
// 比如容量错误会带上当前值和上限，方便调用方决定是否放行
func (h *Handler) errorResponseWithData(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// backfillError 把核心的错误类型逐一映射成带详情的响应，
// 未识别的错误一律按服务器内部错误处理
func (h *Handler) backfillError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *backfill.ValidationError
	var conflictErr *backfill.ConflictError
	var capacityErr *backfill.CapacityExceededError
	var concurrencyErr *backfill.ConcurrencyError
	var transitionErr *backfill.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		h.errorResponse(w, r, validationErr.Error())
	case errors.As(err, &conflictErr):
		h.errorResponseWithData(w, r, conflictErr.Error(), conflictErr)
	case errors.As(err, &capacityErr):
		h.errorResponseWithData(w, r, capacityErr.Error(), capacityErr)
	case errors.As(err, &concurrencyErr):
		h.errorResponseWithData(w, r, concurrencyErr.Error(), concurrencyErr)
	case errors.As(err, &transitionErr):
		h.errorResponseWithData(w, r, transitionErr.Error(), transitionErr)
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "记录不存在")
	default:
		h.internalServerError(w, r, err)
	}
}
