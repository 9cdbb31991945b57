package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/youpai/youpai/pkg/model"
)

// 排班计划执行状态
const (
	PlanPending   = "PENDING"
	PlanRunning   = "RUNNING"
	PlanCompleted = "COMPLETED"
	PlanFailed    = "FAILED"
)

// Plan 排班计划
// 请求以 JSON 快照整体落库，求解结论在完成后回填
type Plan struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Status          string                 `json:"status"` // PENDING/RUNNING/COMPLETED/FAILED
	StartDate       string                 `json:"start_date"`
	HorizonDays     int                    `json:"horizon_days"`
	Request         *model.PlanningRequest `json:"request,omitempty"`
	SolveStatus     string                 `json:"solve_status,omitempty"` // 求解器结论
	IsOptimal       bool                   `json:"is_optimal"`
	ObjectiveValue  *float64               `json:"objective_value,omitempty"`
	WallTimeSeconds float64                `json:"wall_time_seconds"`
	Error           string                 `json:"error,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// PlanRepository 排班计划仓储接口
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Plan, int, error)

	SaveAssignments(ctx context.Context, planID uuid.UUID, assignments []model.AssignmentRecord) error
	GetAssignments(ctx context.Context, planID uuid.UUID) ([]model.AssignmentRecord, error)
}

// PostgresPlanRepository 排班计划仓储的 PostgreSQL 实现
type PostgresPlanRepository struct {
	db DB
}

// NewPostgresPlanRepository 创建排班计划仓储
func NewPostgresPlanRepository(db DB) *PostgresPlanRepository {
	return &PostgresPlanRepository{db: db}
}

// Create 创建排班计划
func (r *PostgresPlanRepository) Create(ctx context.Context, plan *Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Status == "" {
		plan.Status = PlanPending
	}

	requestJSON, err := json.Marshal(plan.Request)
	if err != nil {
		return fmt.Errorf("序列化排班请求失败: %w", err)
	}

	query := `
		INSERT INTO plans (
			id, name, status, start_date, horizon_days, request,
			solve_status, is_optimal, objective_value, wall_time_seconds,
			error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Status, plan.StartDate, plan.HorizonDays, requestJSON,
		plan.SolveStatus, plan.IsOptimal, plan.ObjectiveValue, plan.WallTimeSeconds,
		plan.Error, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建排班计划失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取排班计划，不存在时返回 (nil, nil)
func (r *PostgresPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	query := `
		SELECT id, name, status, start_date, horizon_days, request,
			solve_status, is_optimal, objective_value, wall_time_seconds,
			error, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	return scanPlan(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新排班计划
func (r *PostgresPlanRepository) Update(ctx context.Context, plan *Plan) error {
	plan.UpdatedAt = time.Now()

	query := `
		UPDATE plans SET
			status = $2, solve_status = $3, is_optimal = $4, objective_value = $5,
			wall_time_seconds = $6, error = $7, updated_at = $8
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.Status, plan.SolveStatus, plan.IsOptimal, plan.ObjectiveValue,
		plan.WallTimeSeconds, plan.Error, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新排班计划失败: %w", err)
	}

	return nil
}

// Delete 在单个事务内删除排班计划及其分配
func (r *PostgresPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM plan_assignments WHERE plan_id = $1", id); err != nil {
			return fmt.Errorf("删除排班分配失败: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM plans WHERE id = $1", id); err != nil {
			return fmt.Errorf("删除排班计划失败: %w", err)
		}
		return nil
	})
}

// List 列出排班计划
func (r *PostgresPlanRepository) List(ctx context.Context, filter ListFilter) ([]*Plan, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", argNum))
		args = append(args, filter.StartDate)
		argNum++
	}

	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", argNum))
		args = append(args, filter.EndDate)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM plans %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计排班计划数量失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, status, start_date, horizon_days, request,
			solve_status, is_optimal, objective_value, wall_time_seconds,
			error, created_at, updated_at
		FROM plans %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询排班计划列表失败: %w", err)
	}
	defer rows.Close()

	var plans []*Plan
	for rows.Next() {
		p, err := scanPlanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}

	return plans, total, nil
}

// SaveAssignments 批量保存排班分配，覆盖该计划下的旧记录
// 清空与写入在同一事务内，读取方不会看到半成品分配表
func (r *PostgresPlanRepository) SaveAssignments(ctx context.Context, planID uuid.UUID, assignments []model.AssignmentRecord) error {
	query := `
		INSERT INTO plan_assignments (
			id, plan_id, worker_id, worker_name, shift_type_id, shift_type_name,
			date, day, is_day_off, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM plan_assignments WHERE plan_id = $1", planID); err != nil {
			return fmt.Errorf("清空旧排班分配失败: %w", err)
		}
		for _, a := range assignments {
			_, err := tx.ExecContext(ctx, query,
				uuid.New(), planID, a.WorkerID, a.WorkerName, a.ShiftTypeID, a.ShiftTypeName,
				a.Date, a.Day, a.IsDayOff, now,
			)
			if err != nil {
				return fmt.Errorf("保存排班分配失败: %w", err)
			}
		}
		return nil
	})
}

// GetAssignments 获取计划下的全部排班分配
// 按人员、日序返回，与求解器的提取顺序一致
func (r *PostgresPlanRepository) GetAssignments(ctx context.Context, planID uuid.UUID) ([]model.AssignmentRecord, error) {
	query := `
		SELECT worker_id, worker_name, shift_type_id, shift_type_name, date, day, is_day_off
		FROM plan_assignments
		WHERE plan_id = $1
		ORDER BY worker_id, day
	`

	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("查询排班分配失败: %w", err)
	}
	defer rows.Close()

	assignments := []model.AssignmentRecord{}
	for rows.Next() {
		var a model.AssignmentRecord
		if err := rows.Scan(
			&a.WorkerID, &a.WorkerName, &a.ShiftTypeID, &a.ShiftTypeName,
			&a.Date, &a.Day, &a.IsDayOff,
		); err != nil {
			return nil, fmt.Errorf("扫描排班分配失败: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// scanPlan 扫描单行排班计划
func scanPlan(row *sql.Row) (*Plan, error) {
	p := &Plan{}
	var requestJSON []byte

	err := row.Scan(
		&p.ID, &p.Name, &p.Status, &p.StartDate, &p.HorizonDays, &requestJSON,
		&p.SolveStatus, &p.IsOptimal, &p.ObjectiveValue, &p.WallTimeSeconds,
		&p.Error, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排班计划失败: %w", err)
	}

	if len(requestJSON) > 0 {
		json.Unmarshal(requestJSON, &p.Request)
	}

	return p, nil
}

// scanPlanRow 从多行结果扫描
func scanPlanRow(rows *sql.Rows) (*Plan, error) {
	p := &Plan{}
	var requestJSON []byte

	err := rows.Scan(
		&p.ID, &p.Name, &p.Status, &p.StartDate, &p.HorizonDays, &requestJSON,
		&p.SolveStatus, &p.IsOptimal, &p.ObjectiveValue, &p.WallTimeSeconds,
		&p.Error, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描排班计划失败: %w", err)
	}

	if len(requestJSON) > 0 {
		json.Unmarshal(requestJSON, &p.Request)
	}

	return p, nil
}
