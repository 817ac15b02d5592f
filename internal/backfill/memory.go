package backfill

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// MemoryStore 是 AssignmentStore 和 EmployeeDirectory 的内存实现，
// 用于测试和本地开发。查不到记录时和 postgres 实现一样返回 sql.ErrNoRows，
// 这样上层的错误处理不需要区分存储实现
type MemoryStore struct {
	mu sync.Mutex

	assignments map[int64]*domain.BackfillAssignment
	employees   map[int64]*domain.Employee
	nextID      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[int64]*domain.BackfillAssignment),
		employees:   make(map[int64]*domain.Employee),
	}
}

// AddEmployee 把员工加入目录，分配 ID 后返回
func (m *MemoryStore) AddEmployee(e *domain.Employee) *domain.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == 0 {
		m.nextID++
		e.ID = m.nextID
	} else if e.ID > m.nextID {
		m.nextID = e.ID
	}
	e.Version = 1
	m.employees[e.ID] = cloneEmployee(e)
	return e
}

func (m *MemoryStore) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.employees[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return cloneEmployee(e), nil
}

func (m *MemoryStore) ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	employees := make([]*domain.Employee, 0, len(m.employees))
	// 按 ID 升序返回，保证排序输出的确定性
	for id := int64(1); id <= m.nextID; id++ {
		if e, exists := m.employees[id]; exists && e.IsActive {
			employees = append(employees, cloneEmployee(e))
		}
	}
	return employees, nil
}

// CreateAssignment 在互斥锁内完成门禁检查和插入，
// 对同一个员工的并发创建不可能同时通过检查
func (m *MemoryStore) CreateAssignment(ctx context.Context, a *domain.BackfillAssignment, capHours int32, override bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make([]*domain.BackfillAssignment, 0)
	for _, stored := range m.assignments {
		if stored.EmployeeID == a.EmployeeID {
			existing = append(existing, stored)
		}
	}

	if err := CheckCreate(existing, a, capHours, override); err != nil {
		return err
	}

	m.nextID++
	a.ID = m.nextID
	a.Version = 1
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	m.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (m *MemoryStore) GetAssignmentByID(ctx context.Context, id int64) (*domain.BackfillAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, exists := m.assignments[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return cloneAssignment(a), nil
}

func (m *MemoryStore) ListAssignmentsByEmployee(ctx context.Context, employeeID int64) ([]*domain.BackfillAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	assignments := make([]*domain.BackfillAssignment, 0)
	for id := int64(1); id <= m.nextID; id++ {
		if a, exists := m.assignments[id]; exists && a.EmployeeID == employeeID {
			assignments = append(assignments, cloneAssignment(a))
		}
	}
	return assignments, nil
}

func (m *MemoryStore) ListAssignmentsByAbsence(ctx context.Context, absenceID int64) ([]*domain.BackfillAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	assignments := make([]*domain.BackfillAssignment, 0)
	for id := int64(1); id <= m.nextID; id++ {
		if a, exists := m.assignments[id]; exists && a.AbsenceID == absenceID {
			assignments = append(assignments, cloneAssignment(a))
		}
	}
	return assignments, nil
}

// UpdateAssignment 按版本号做条件更新，版本不匹配时返回 *ConcurrencyError
func (m *MemoryStore) UpdateAssignment(ctx context.Context, a *domain.BackfillAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.assignments[a.ID]
	if !exists {
		return sql.ErrNoRows
	}

	if stored.Version != a.Version {
		return &ConcurrencyError{
			AssignmentID:    a.ID,
			ExpectedVersion: a.Version,
		}
	}

	a.Version++
	a.UpdatedAt = time.Now()
	m.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func cloneAssignment(a *domain.BackfillAssignment) *domain.BackfillAssignment {
	clone := *a
	if a.ActualHours != nil {
		v := *a.ActualHours
		clone.ActualHours = &v
	}
	if a.RejectionReason != nil {
		v := *a.RejectionReason
		clone.RejectionReason = &v
	}
	if a.ConfirmerID != nil {
		v := *a.ConfirmerID
		clone.ConfirmerID = &v
	}
	return &clone
}

func cloneEmployee(e *domain.Employee) *domain.Employee {
	clone := *e
	return &clone
}
