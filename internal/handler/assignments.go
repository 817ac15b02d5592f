package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment := r.Context().Value(AssignmentCtx).(*domain.BackfillAssignment)
	h.successResponse(w, r, "获取替班安排成功", assignment)
}

// canOperateAssignment 检查操作者是不是安排的替班员工本人或协调员，
// 确认和拒绝只允许这两种人操作
func (h *Handler) canOperateAssignment(r *http.Request, assignment *domain.BackfillAssignment) bool {
	role := domain.OperatorRole(r.Context().Value(OperatorRoleCtx).(string))
	if role == domain.RoleCoordinator {
		return true
	}

	operatorID := r.Context().Value(OperatorIDCtx).(int64)
	return operatorID == assignment.EmployeeID
}

func (h *Handler) ConfirmAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpectedVersion int32 `json:"expectedVersion" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := r.Context().Value(AssignmentCtx).(*domain.BackfillAssignment)
	if !h.canOperateAssignment(r, assignment) {
		h.errorResponse(w, r, "权限不足")
		return
	}

	operatorID := r.Context().Value(OperatorIDCtx).(int64)
	updated, err := h.service.Confirm(r.Context(), assignment.ID, req.ExpectedVersion, operatorID)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	h.invalidateAssignmentCaches(r, updated)
	h.publishAssignmentEvent(r, domain.EventAssignmentConfirmed, updated)

	h.successResponse(w, r, "确认替班安排成功", updated)
}

func (h *Handler) RejectAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpectedVersion int32  `json:"expectedVersion" validate:"required,min=1"`
		Reason          string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := r.Context().Value(AssignmentCtx).(*domain.BackfillAssignment)
	if !h.canOperateAssignment(r, assignment) {
		h.errorResponse(w, r, "权限不足")
		return
	}

	operatorID := r.Context().Value(OperatorIDCtx).(int64)
	updated, err := h.service.Reject(r.Context(), assignment.ID, req.ExpectedVersion, req.Reason, operatorID)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	h.invalidateAssignmentCaches(r, updated)
	h.publishAssignmentEvent(r, domain.EventAssignmentRejected, updated)

	h.successResponse(w, r, "拒绝替班安排成功", updated)
}

func (h *Handler) CancelAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpectedVersion int32 `json:"expectedVersion" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := r.Context().Value(AssignmentCtx).(*domain.BackfillAssignment)

	updated, err := h.service.Cancel(r.Context(), assignment.ID, req.ExpectedVersion)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	h.invalidateAssignmentCaches(r, updated)
	h.publishAssignmentEvent(r, domain.EventAssignmentCancelled, updated)

	h.successResponse(w, r, "取消替班安排成功", updated)
}

func (h *Handler) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpectedVersion int32  `json:"expectedVersion" validate:"required,min=1"`
		ActualHours     *int32 `json:"actualHours" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := r.Context().Value(AssignmentCtx).(*domain.BackfillAssignment)

	updated, err := h.service.Complete(r.Context(), assignment.ID, req.ExpectedVersion, req.ActualHours)
	if err != nil {
		h.backfillError(w, r, err)
		return
	}

	h.invalidateAssignmentCaches(r, updated)
	h.publishAssignmentEvent(r, domain.EventAssignmentCompleted, updated)

	h.successResponse(w, r, "完成替班安排成功", updated)
}

// invalidateAssignmentCaches 删除安排涉及的覆盖缓存和负载缓存，
// 删除失败只记录日志，缓存过期后自然一致
func (h *Handler) invalidateAssignmentCaches(r *http.Request, assignment *domain.BackfillAssignment) {
	keys := []string{fmt.Sprintf("coverage_%d", assignment.AbsenceID)}
	for _, month := range assignment.Window.MonthsTouched() {
		keys = append(keys, fmt.Sprintf("workload_%d_%s", assignment.EmployeeID, month.Format("2006-01")))
	}

	if err := h.redisClient.Del(r.Context(), keys...).Err(); err != nil {
		slog.Warn("删除缓存失败", "keys", keys, "error", err)
	}
}

// publishAssignmentEvent 把状态迁移事件发布到消息队列，
// 状态已经落库，发布失败只记录日志而不让请求失败
func (h *Handler) publishAssignmentEvent(r *http.Request, eventType string, assignment *domain.BackfillAssignment) {
	event := domain.AssignmentEvent{
		Type:       eventType,
		Assignment: assignment,
	}

	// 通知需要替班员工的联系方式，查不到时只发不带收件人的事件
	employee, err := h.repository.GetEmployeeByID(r.Context(), assignment.EmployeeID)
	if err != nil {
		slog.Warn("获取替班员工信息失败", "employeeID", assignment.EmployeeID, "error", err)
	} else {
		event.RecipientName = employee.FullName
		event.RecipientMail = employee.Email
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		slog.Warn("序列化事件失败", "type", eventType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.eventChannel.PublishWithContext(
		ctx,
		"",
		"assignment_events",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        eventData,
		},
	); err != nil {
		slog.Warn("发布事件失败", "type", eventType, "assignmentID", assignment.ID, "error", err)
	}
}
