package engine

import (
	"time"

	"github.com/youpai/youpai/pkg/engine/cpsat"
	"github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/logger"
	"github.com/youpai/youpai/pkg/model"
)

// Generator 排班生成器
// 一个实例服务一次求解，请求在求解期间只读
type Generator struct {
	req *model.PlanningRequest
	log *logger.SolverLogger
}

// NewGenerator 创建排班生成器
func NewGenerator(req *model.PlanningRequest) *Generator {
	return &Generator{
		req: req,
		log: logger.NewSolverLogger(),
	}
}

// Run 执行一次完整求解
//
// 调用同步阻塞，仅在证明最优、预算耗尽、证明不可满足或模型错误时返回。
// 约束声明非法（已知规则带坏参数）时返回错误；
// 未知规则名记录日志后忽略，不影响求解
func (g *Generator) Run() (*model.SolveResult, error) {
	g.log.StartSolve(len(g.req.Workers), g.req.HorizonDays, len(g.req.ShiftTypes))

	m := cpsat.NewModel()
	vars := buildVariables(m, len(g.req.Workers), g.req.HorizonDays, len(g.req.ShiftTypes))
	ctx := &buildContext{req: g.req, m: m, vars: vars}

	applied, err := g.applyHardConstraints(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.buildObjective(ctx); err != nil {
		return nil, err
	}

	if m.Invalid() {
		g.log.SolveComplete(string(model.StatusInvalid), 0, 0)
		return nil, errors.Wrap(m.Err(), errors.CodeModelInvalid, "排班模型构造失败")
	}

	budget := cpsat.Budget{
		MaxTime: time.Duration(g.req.SolverBudget.MaxSeconds) * time.Second,
		Workers: g.req.SolverBudget.Parallelism,
		Seed:    g.req.SolverBudget.RandomSeed,
	}
	sol := cpsat.Solve(m, budget)

	result := &model.SolveResult{
		Status:          model.SolveStatus(sol.Status),
		IsOptimal:       sol.Status == cpsat.StatusOptimal,
		WallTimeSeconds: sol.WallTime.Seconds(),
		Assignments:     []model.AssignmentRecord{},
	}
	if sol.HasSolution() {
		if m.HasObjective() {
			obj := float64(sol.Objective)
			result.ObjectiveValue = &obj
		}
		result.Assignments = g.extract(sol, vars, applied[HardOneShiftPerDay])
	}

	objective := float64(0)
	if result.ObjectiveValue != nil {
		objective = *result.ObjectiveValue
	}
	g.log.SolveComplete(string(result.Status), sol.WallTime, objective)
	return result, nil
}

// applyHardConstraints 按声明顺序施加硬约束，返回已施加的规则集合
func (g *Generator) applyHardConstraints(ctx *buildContext) (map[HardKind]bool, error) {
	applied := make(map[HardKind]bool)
	for _, hc := range g.req.HardConstraints {
		rule, err := parseHardRule(hc)
		if err != nil {
			return nil, err
		}
		if rule == nil {
			g.log.RuleSkipped(hc.Name, "未知的硬约束规则")
			continue
		}
		rule.Apply(ctx)
		applied[rule.Kind()] = true
	}
	return applied, nil
}

// buildObjective 按声明顺序折入软约束惩罚项
func (g *Generator) buildObjective(ctx *buildContext) error {
	for _, sc := range g.req.SoftConstraints {
		rule, err := parseSoftRule(sc)
		if err != nil {
			return err
		}
		if rule == nil {
			g.log.RuleSkipped(sc.Name, "未知的软约束规则")
			continue
		}
		rule.Apply(ctx)
	}
	return nil
}

// extract 从解中提取逐人逐日的排班记录
//
// 迭代顺序人员优先、日次之，决定输出顺序。每个 (人员, 日) 按班次索引
// 顺序扫描，首个取真的班次即为该日排班；未施加 one_shift_per_day 时
// 同一天可能出现多个真值变量，此时记录冲突日志并仍按首个命中提取。
// 无任何真值的日记为休息
func (g *Generator) extract(sol *cpsat.Solution, vars *Variables, oneShiftApplied bool) []model.AssignmentRecord {
	records := make([]model.AssignmentRecord, 0, len(g.req.Workers)*g.req.HorizonDays)
	for e := range g.req.Workers {
		worker := &g.req.Workers[e]
		for d := 0; d < g.req.HorizonDays; d++ {
			first := -1
			count := 0
			for t := range g.req.ShiftTypes {
				if sol.Value(vars.Var(e, d, t)) {
					if first < 0 {
						first = t
					}
					count++
				}
			}
			if count > 1 && !oneShiftApplied {
				g.log.AssignmentConflict(worker.Name, d, count)
			}

			rec := model.AssignmentRecord{
				WorkerID:   worker.ID,
				WorkerName: worker.Name,
				Date:       g.req.DateOfDay(d),
				Day:        d,
			}
			if first >= 0 {
				st := g.req.ShiftTypes[first]
				id := st.ID
				rec.ShiftTypeID = &id
				rec.ShiftTypeName = st.Name
			} else {
				rec.ShiftTypeName = model.DayOffName
				rec.IsDayOff = true
			}
			records = append(records, rec)
		}
	}
	return records
}
