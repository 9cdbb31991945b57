package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/youpai/youpai/pkg/model"
)

// MemoryPlanRepository 排班计划仓储的内存实现
// 数据库不可用时作为降级后端，进程退出即丢失
type MemoryPlanRepository struct {
	mu          sync.RWMutex
	plans       map[uuid.UUID]*Plan
	assignments map[uuid.UUID][]model.AssignmentRecord
}

// NewMemoryPlanRepository 创建内存排班计划仓储
func NewMemoryPlanRepository() *MemoryPlanRepository {
	return &MemoryPlanRepository{
		plans:       make(map[uuid.UUID]*Plan),
		assignments: make(map[uuid.UUID][]model.AssignmentRecord),
	}
}

// Create 创建排班计划
func (r *MemoryPlanRepository) Create(ctx context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Status == "" {
		plan.Status = PlanPending
	}

	stored := *plan
	r.plans[plan.ID] = &stored
	return nil
}

// GetByID 根据ID获取排班计划，不存在时返回 (nil, nil)
func (r *MemoryPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// Update 更新排班计划
func (r *MemoryPlanRepository) Update(ctx context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan.UpdatedAt = time.Now()
	stored := *plan
	r.plans[plan.ID] = &stored
	return nil
}

// Delete 删除排班计划及其分配
func (r *MemoryPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.plans, id)
	delete(r.assignments, id)
	return nil
}

// List 列出排班计划，按创建时间降序
func (r *MemoryPlanRepository) List(ctx context.Context, filter ListFilter) ([]*Plan, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Plan
	for _, p := range r.plans {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.StartDate != "" && p.StartDate < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && p.StartDate > filter.EndDate {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*Plan{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

// SaveAssignments 保存排班分配，覆盖旧记录
func (r *MemoryPlanRepository) SaveAssignments(ctx context.Context, planID uuid.UUID, assignments []model.AssignmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]model.AssignmentRecord, len(assignments))
	copy(stored, assignments)
	r.assignments[planID] = stored
	return nil
}

// GetAssignments 获取计划下的全部排班分配
func (r *MemoryPlanRepository) GetAssignments(ctx context.Context, planID uuid.UUID) ([]model.AssignmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.assignments[planID]
	result := make([]model.AssignmentRecord, len(stored))
	copy(result, stored)
	return result, nil
}
