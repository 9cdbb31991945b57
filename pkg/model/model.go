// Package model 定义排班求解引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout 日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// 规范班次名称
// 集合可配置，但 NIGHT 在休息约束中有特殊的相邻语义
const (
	ShiftMorning   = "MORNING"
	ShiftAfternoon = "AFTERNOON"
	ShiftNight     = "NIGHT"
)

// DayOffName 休息日显示名称
const DayOffName = "休息"

// Worker 参与排班的人员
// 在一次求解期间不可变
type Worker struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Preferences 人员偏好
type Preferences struct {
	PreferredShiftTypes []string `json:"preferred_shift_types,omitempty"`
}

// PreferredSet 返回偏好班次集合，空偏好返回nil
func (w *Worker) PreferredSet() map[string]bool {
	if w.Preferences == nil || len(w.Preferences.PreferredShiftTypes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(w.Preferences.PreferredShiftTypes))
	for _, name := range w.Preferences.PreferredShiftTypes {
		set[name] = true
	}
	return set
}

// ShiftType 班次类型定义
type ShiftType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`       // MORNING/AFTERNOON/NIGHT 等
	StartTime string    `json:"start_time"` // HH:MM
	EndTime   string    `json:"end_time"`   // HH:MM，早于开始时间表示跨午夜
}

// IsNight 检查是否为夜班
func (s *ShiftType) IsNight() bool {
	return s.Name == ShiftNight
}

// SpansMidnight 检查班次是否跨午夜
func (s *ShiftType) SpansMidnight() bool {
	start, err1 := minutesOfDay(s.StartTime)
	end, err2 := minutesOfDay(s.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}
	return end <= start
}

// minutesOfDay 解析 HH:MM 为当日分钟数
func minutesOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesOfDay 解析 HH:MM 为当日分钟数
func MinutesOfDay(clock string) (int, error) {
	return minutesOfDay(clock)
}

// Demand 单个班次的人力需求
type Demand struct {
	Min     int `json:"min" validate:"min=0"`
	Optimal int `json:"optimal" validate:"min=0"`
	Max     int `json:"max" validate:"min=0"`
}

// HardConstraint 硬约束声明
type HardConstraint struct {
	Name   string                 `json:"name" validate:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// SoftConstraint 软约束声明（按权重折入目标函数）
type SoftConstraint struct {
	Name   string                 `json:"name" validate:"required"`
	Weight float64                `json:"weight" validate:"min=0"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// SolverBudget 求解预算
type SolverBudget struct {
	MaxSeconds  int    `json:"max_seconds" validate:"min=10,max=600"`
	Parallelism int    `json:"parallelism" validate:"min=1,max=8"`
	RandomSeed  *int64 `json:"random_seed,omitempty" validate:"omitempty,min=0,max=2147483647"`
}

// PlanningRequest 排班请求
// 由调用方构造，引擎只读，不做范围校验
type PlanningRequest struct {
	HorizonDays     int               `json:"horizon_days" validate:"min=7,max=90"`
	StartDate       string            `json:"start_date" validate:"required"` // YYYY-MM-DD
	Workers         []Worker          `json:"workers" validate:"min=2"`
	ShiftTypes      []ShiftType       `json:"shift_types" validate:"min=1"`
	Demand          map[string]Demand `json:"demand,omitempty"`
	HardConstraints []HardConstraint  `json:"hard_constraints,omitempty"`
	SoftConstraints []SoftConstraint  `json:"soft_constraints,omitempty"`
	SolverBudget    SolverBudget      `json:"solver_budget"`
}

// DateOfDay 返回日索引 d 对应的日期字符串
func (r *PlanningRequest) DateOfDay(d int) string {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return ""
	}
	return start.AddDate(0, 0, d).Format(DateLayout)
}

// ShiftTypeIndex 返回指定名称班次的索引，不存在返回 -1
func (r *PlanningRequest) ShiftTypeIndex(name string) int {
	for i, s := range r.ShiftTypes {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// SolveStatus 求解状态
type SolveStatus string

const (
	StatusOptimal    SolveStatus = "OPTIMAL"    // 在预算内证明最优
	StatusFeasible   SolveStatus = "FEASIBLE"   // 找到解但未证明最优
	StatusInfeasible SolveStatus = "INFEASIBLE" // 硬约束不可满足
	StatusInvalid    SolveStatus = "INVALID"    // 模型构造错误
	StatusUnknown    SolveStatus = "UNKNOWN"    // 求解器未得出结论
)

// HasSolution 检查状态是否带有可用解
func (s SolveStatus) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// AssignmentRecord 单人单日的排班记录
// 每个 (worker, day) 组合恰好一条记录
type AssignmentRecord struct {
	WorkerID      uuid.UUID  `json:"worker_id"`
	WorkerName    string     `json:"worker_name"`
	ShiftTypeID   *uuid.UUID `json:"shift_type_id,omitempty"`
	ShiftTypeName string     `json:"shift_type_name"` // 休息日为 DayOffName
	Date          string     `json:"date"`
	Day           int        `json:"day"`
	IsDayOff      bool       `json:"is_day_off"`
}

// SolveResult 求解结果
// 每次求解新建，引擎交付后不再持有引用
type SolveResult struct {
	Status          SolveStatus        `json:"status"`
	IsOptimal       bool               `json:"is_optimal"`
	ObjectiveValue  *float64           `json:"objective_value,omitempty"` // 仅 OPTIMAL/FEASIBLE 有意义
	WallTimeSeconds float64            `json:"wall_time_seconds"`
	Assignments     []AssignmentRecord `json:"assignments"`
}
