package engine

import (
	"math"
	"math/bits"

	"github.com/youpai/youpai/pkg/engine/cpsat"
	"github.com/youpai/youpai/pkg/model"
)

// SoftKind 软约束规则标识
type SoftKind string

const (
	SoftEquityOfShifts      SoftKind = "equity_of_shifts"
	SoftShiftPreferences    SoftKind = "shift_preferences"
	SoftMinimizeNightShifts SoftKind = "minimize_night_shifts"
)

// 软约束权重缩放因子
// 目标函数只接受整数系数，权重按 round(weight*scale) 折算，
// 舍入粒度以下的权重差异不产生效果
const (
	scaleEquity      = 100
	scalePreferences = 10
	scaleNights      = 20
)

// softRule 软约束规则，向目标函数贡献惩罚项
type softRule interface {
	Kind() SoftKind
	Apply(ctx *buildContext)
}

// parseSoftRule 解析软约束声明，未知规则返回 (nil, nil)
func parseSoftRule(sc model.SoftConstraint) (softRule, error) {
	switch SoftKind(sc.Name) {
	case SoftEquityOfShifts:
		return equityRule{coeff: scaleWeight(sc.Weight, scaleEquity)}, nil
	case SoftShiftPreferences:
		return preferencesRule{coeff: scaleWeight(sc.Weight, scalePreferences)}, nil
	case SoftMinimizeNightShifts:
		return minimizeNightsRule{coeff: scaleWeight(sc.Weight, scaleNights)}, nil
	}
	return nil, nil
}

// scaleWeight 把浮点权重折算为整数目标系数
func scaleWeight(weight float64, scale int) int {
	return int(math.Round(weight * float64(scale)))
}

// equityRule 班次均衡
//
// 以所有人员总班次数的最大值与最小值之差（spread）为惩罚量。
// 两个辅助量各用一组二进制位变量编码：
//
//	maxT = Σ 2^k·bmax_k，约束 total(e) ≤ maxT 对每个人员成立
//	minT = Σ 2^k·bmin_k，约束 minT ≤ total(e) 对每个人员成立
//
// 目标中累加 coeff·(maxT - minT)，其中 -minT 以否定文字改写，
// 多出的常数通过目标偏移回补。最小化会把 maxT 压到实际最大值、
// 把 minT 抬到实际最小值，故惩罚值恰为 spread
type equityRule struct {
	coeff int
}

func (equityRule) Kind() SoftKind { return SoftEquityOfShifts }

func (r equityRule) Apply(ctx *buildContext) {
	if r.coeff <= 0 {
		return
	}

	// 单人总班次的上界；位数覆盖该上界即可
	maxTotal := ctx.days() * ctx.types()
	nbits := bits.Len(uint(maxTotal))
	if nbits == 0 {
		return
	}

	bmax := make([]cpsat.BoolVar, nbits)
	bmin := make([]cpsat.BoolVar, nbits)
	for k := 0; k < nbits; k++ {
		bmax[k] = ctx.m.NewBoolVar()
		bmin[k] = ctx.m.NewBoolVar()
	}

	perWorker := ctx.vars.PerWorker()
	full := 1<<nbits - 1

	for e := 0; e < ctx.workers(); e++ {
		// total(e) ≤ maxT 改写为 Σ¬x + Σ2^k·bmax_k ≥ perWorker
		upper := make([]cpsat.Term, 0, perWorker+nbits)
		// minT ≤ total(e) 改写为 Σx + Σ2^k·¬bmin_k ≥ 2^nbits-1
		lower := make([]cpsat.Term, 0, perWorker+nbits)
		for d := 0; d < ctx.days(); d++ {
			for t := 0; t < ctx.types(); t++ {
				v := ctx.vars.Var(e, d, t)
				upper = append(upper, cpsat.Not(v))
				lower = append(lower, cpsat.Pos(v))
			}
		}
		for k := 0; k < nbits; k++ {
			upper = append(upper, cpsat.Term{Var: bmax[k], Weight: 1 << k})
			lower = append(lower, cpsat.Term{Var: bmin[k], Neg: true, Weight: 1 << k})
		}
		ctx.m.AddWeightedAtLeast(perWorker, upper...)
		ctx.m.AddWeightedAtLeast(full, lower...)
	}

	for k := 0; k < nbits; k++ {
		ctx.m.AddObjectiveTerm(r.coeff*(1<<k), cpsat.Pos(bmax[k]))
		ctx.m.AddObjectiveTerm(r.coeff*(1<<k), cpsat.Not(bmin[k]))
	}
	// coeff·(maxT - minT) = coeff·Σ2^k·bmax_k + coeff·Σ2^k·¬bmin_k - coeff·(2^nbits-1)
	ctx.m.AddObjectiveOffset(-int64(r.coeff) * int64(full))
}

// preferencesRule 班次偏好
// 对声明了偏好的人员，惩罚落在偏好之外的班次分配；无偏好者不计
type preferencesRule struct {
	coeff int
}

func (preferencesRule) Kind() SoftKind { return SoftShiftPreferences }

func (r preferencesRule) Apply(ctx *buildContext) {
	if r.coeff <= 0 {
		return
	}
	for e := range ctx.req.Workers {
		preferred := ctx.req.Workers[e].PreferredSet()
		if preferred == nil {
			continue
		}
		for t, st := range ctx.req.ShiftTypes {
			if preferred[st.Name] {
				continue
			}
			for d := 0; d < ctx.days(); d++ {
				ctx.m.AddObjectiveTerm(r.coeff, cpsat.Pos(ctx.vars.Var(e, d, t)))
			}
		}
	}
}

// minimizeNightsRule 夜班最少化
// 惩罚所有夜班分配；班次表中不存在 NIGHT 时不产生任何项
type minimizeNightsRule struct {
	coeff int
}

func (minimizeNightsRule) Kind() SoftKind { return SoftMinimizeNightShifts }

func (r minimizeNightsRule) Apply(ctx *buildContext) {
	if r.coeff <= 0 {
		return
	}
	night := ctx.req.ShiftTypeIndex(model.ShiftNight)
	if night < 0 {
		return
	}
	for e := 0; e < ctx.workers(); e++ {
		for d := 0; d < ctx.days(); d++ {
			ctx.m.AddObjectiveTerm(r.coeff, cpsat.Pos(ctx.vars.Var(e, d, night)))
		}
	}
}
