package engine

import (
	"github.com/youpai/youpai/pkg/engine/cpsat"
	"github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/model"
)

// HardKind 硬约束规则标识
type HardKind string

const (
	HardOneShiftPerDay  HardKind = "one_shift_per_day"
	HardMinimumCoverage HardKind = "minimum_coverage"
	HardMaximumCoverage HardKind = "maximum_coverage"
	HardMinimumRest     HardKind = "minimum_rest"
	HardMaxConsecutive  HardKind = "max_consecutive_shifts"
	HardMaxWeeklyShifts HardKind = "max_weekly_shifts"
)

// 硬约束参数默认值
const (
	defaultCoverageMin = 1
	defaultCoverageMax = 10
	defaultRestHours   = 11
	defaultMaxConsec   = 5
	defaultMaxWeekly   = 5
)

// buildContext 单次求解的模型构建上下文
type buildContext struct {
	req  *model.PlanningRequest
	m    *cpsat.Model
	vars *Variables
}

func (c *buildContext) workers() int { return len(c.req.Workers) }
func (c *buildContext) days() int    { return c.req.HorizonDays }
func (c *buildContext) types() int   { return len(c.req.ShiftTypes) }

// hardRule 硬约束规则
type hardRule interface {
	Kind() HardKind
	Apply(ctx *buildContext)
}

// parseHardRule 解析硬约束声明
// 未知规则返回 (nil, nil) 由调用方记录并忽略；
// 已知规则参数类型或取值非法时立即报错
func parseHardRule(hc model.HardConstraint) (hardRule, error) {
	switch HardKind(hc.Name) {
	case HardOneShiftPerDay:
		return oneShiftPerDayRule{}, nil

	case HardMinimumCoverage:
		min, err := paramInt(hc.Params, "min", defaultCoverageMin)
		if err != nil {
			return nil, errors.InvalidConstraint(hc.Name, err.Error())
		}
		if min < 0 {
			return nil, errors.InvalidConstraint(hc.Name, "min 不能为负")
		}
		return minimumCoverageRule{defaultMin: min}, nil

	case HardMaximumCoverage:
		max, err := paramInt(hc.Params, "max", defaultCoverageMax)
		if err != nil {
			return nil, errors.InvalidConstraint(hc.Name, err.Error())
		}
		if max < 0 {
			return nil, errors.InvalidConstraint(hc.Name, "max 不能为负")
		}
		return maximumCoverageRule{defaultMax: max}, nil

	case HardMinimumRest:
		hours, err := paramInt(hc.Params, "required_hours", defaultRestHours)
		if err != nil {
			return nil, errors.InvalidConstraint(hc.Name, err.Error())
		}
		if hours < 0 {
			return nil, errors.InvalidConstraint(hc.Name, "required_hours 不能为负")
		}
		useGap, err := paramBool(hc.Params, "use_time_gap", false)
		if err != nil {
			return nil, errors.InvalidConstraint(hc.Name, err.Error())
		}
		return minimumRestRule{requiredHours: hours, useTimeGap: useGap}, nil

	case HardMaxConsecutive:
		max, err := paramInt(hc.Params, "max", defaultMaxConsec)
		if err != nil {
			return nil, errors.InvalidConstraint(hc.Name, err.Error())
		}
		if max < 1 {
			return nil, errors.InvalidConstraint(hc.Name, "max 必须为正")
		}
		return maxConsecutiveRule{max: max}, nil

	case HardMaxWeeklyShifts:
		max, err := paramInt(hc.Params, "max", defaultMaxWeekly)
		if err != nil {
			return nil, errors.InvalidConstraint(hc.Name, err.Error())
		}
		if max < 1 {
			return nil, errors.InvalidConstraint(hc.Name, "max 必须为正")
		}
		return maxWeeklyRule{max: max}, nil
	}

	return nil, nil
}

// oneShiftPerDayRule 每人每天最多一个班次
type oneShiftPerDayRule struct{}

func (oneShiftPerDayRule) Kind() HardKind { return HardOneShiftPerDay }

func (oneShiftPerDayRule) Apply(ctx *buildContext) {
	for e := 0; e < ctx.workers(); e++ {
		for d := 0; d < ctx.days(); d++ {
			row := make([]cpsat.BoolVar, ctx.types())
			for t := 0; t < ctx.types(); t++ {
				row[t] = ctx.vars.Var(e, d, t)
			}
			ctx.m.AddAtMost(1, row...)
		}
	}
}

// minimumCoverageRule 每天每班次的人力下限
// 下限取自请求的 demand 表，缺失时回落到规则参数 min
type minimumCoverageRule struct {
	defaultMin int
}

func (minimumCoverageRule) Kind() HardKind { return HardMinimumCoverage }

func (r minimumCoverageRule) Apply(ctx *buildContext) {
	for t, st := range ctx.req.ShiftTypes {
		min := r.defaultMin
		if dm, ok := ctx.req.Demand[st.Name]; ok {
			min = dm.Min
		}
		for d := 0; d < ctx.days(); d++ {
			col := make([]cpsat.BoolVar, ctx.workers())
			for e := 0; e < ctx.workers(); e++ {
				col[e] = ctx.vars.Var(e, d, t)
			}
			ctx.m.AddAtLeast(min, col...)
		}
	}
}

// maximumCoverageRule 每天每班次的人力上限
type maximumCoverageRule struct {
	defaultMax int
}

func (maximumCoverageRule) Kind() HardKind { return HardMaximumCoverage }

func (r maximumCoverageRule) Apply(ctx *buildContext) {
	for t, st := range ctx.req.ShiftTypes {
		max := r.defaultMax
		if dm, ok := ctx.req.Demand[st.Name]; ok {
			max = dm.Max
		}
		for d := 0; d < ctx.days(); d++ {
			col := make([]cpsat.BoolVar, ctx.workers())
			for e := 0; e < ctx.workers(); e++ {
				col[e] = ctx.vars.Var(e, d, t)
			}
			ctx.m.AddAtMost(max, col...)
		}
	}
}

// minimumRestRule 相邻两天之间的最短休息
//
// 默认语义：仅禁止夜班次日接早班，required_hours 不参与计算。
// use_time_gap 开启后改为通用语义：按班次的起止时刻计算跨日间隔，
// 不足 required_hours 的所有班次对均被禁止。
type minimumRestRule struct {
	requiredHours int
	useTimeGap    bool
}

func (minimumRestRule) Kind() HardKind { return HardMinimumRest }

func (r minimumRestRule) Apply(ctx *buildContext) {
	for t1, s1 := range ctx.req.ShiftTypes {
		for t2, s2 := range ctx.req.ShiftTypes {
			if !r.forbidden(&s1, &s2) {
				continue
			}
			for e := 0; e < ctx.workers(); e++ {
				for d := 0; d+1 < ctx.days(); d++ {
					ctx.m.AddAtMost(1, ctx.vars.Var(e, d, t1), ctx.vars.Var(e, d+1, t2))
				}
			}
		}
	}
}

// forbidden 判断 day d 的 s1 接 day d+1 的 s2 是否违反休息要求
func (r minimumRestRule) forbidden(s1, s2 *model.ShiftType) bool {
	if !r.useTimeGap {
		return s1.IsNight() && s2.Name == model.ShiftMorning
	}

	end1, err1 := model.MinutesOfDay(s1.EndTime)
	start2, err2 := model.MinutesOfDay(s2.StartTime)
	if err1 != nil || err2 != nil {
		return false
	}
	// s1 结束于 d 日（或跨午夜时为 d+1 日），s2 开始于 d+1 日
	gap := start2 + 24*60 - end1
	if s1.SpansMidnight() {
		gap = start2 - end1
	}
	return gap < r.requiredHours*60
}

// maxConsecutiveRule 连续工作天数上限
// 任意 max+1 天的滑动窗口内总班次不超过 max
type maxConsecutiveRule struct {
	max int
}

func (maxConsecutiveRule) Kind() HardKind { return HardMaxConsecutive }

func (r maxConsecutiveRule) Apply(ctx *buildContext) {
	window := r.max + 1
	for e := 0; e < ctx.workers(); e++ {
		for d := 0; d+window <= ctx.days(); d++ {
			vars := make([]cpsat.BoolVar, 0, window*ctx.types())
			for i := 0; i < window; i++ {
				for t := 0; t < ctx.types(); t++ {
					vars = append(vars, ctx.vars.Var(e, d+i, t))
				}
			}
			ctx.m.AddAtMost(r.max, vars...)
		}
	}
}

// maxWeeklyRule 每周班次上限
// 排班期按 7 天切成连续不重叠的块，末块不足 7 天时同样计入
type maxWeeklyRule struct {
	max int
}

func (maxWeeklyRule) Kind() HardKind { return HardMaxWeeklyShifts }

func (r maxWeeklyRule) Apply(ctx *buildContext) {
	for e := 0; e < ctx.workers(); e++ {
		for blockStart := 0; blockStart < ctx.days(); blockStart += 7 {
			blockEnd := blockStart + 7
			if blockEnd > ctx.days() {
				blockEnd = ctx.days()
			}
			vars := make([]cpsat.BoolVar, 0, (blockEnd-blockStart)*ctx.types())
			for d := blockStart; d < blockEnd; d++ {
				for t := 0; t < ctx.types(); t++ {
					vars = append(vars, ctx.vars.Var(e, d, t))
				}
			}
			ctx.m.AddAtMost(r.max, vars...)
		}
	}
}
