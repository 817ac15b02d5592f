package handler

type ContextKey string

var (
	OperatorRoleCtx ContextKey = "operatorRole"
	OperatorIDCtx   ContextKey = "operatorID"
	EmployeeCtx     ContextKey = "employee"
	AbsenceCtx      ContextKey = "absence"
	AssignmentCtx   ContextKey = "assignment"
)
