package domain

const (
	EventAssignmentCreated   = "assignment_created"
	EventAssignmentConfirmed = "assignment_confirmed"
	EventAssignmentRejected  = "assignment_rejected"
	EventAssignmentCancelled = "assignment_cancelled"
	EventAssignmentCompleted = "assignment_completed"
)

// AssignmentEvent 在每次状态迁移后发布到消息队列，
// 通知系统和薪酬系统通过订阅这个队列获取安排记录
type AssignmentEvent struct {
	Type          string              `json:"type"`
	Assignment    *BackfillAssignment `json:"assignment"`
	RecipientName string              `json:"recipientName"`
	RecipientMail string              `json:"recipientMail"`
}
