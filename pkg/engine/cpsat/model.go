// Package cpsat 提供基于伪布尔求解的约束规划模型层
//
// 模型由布尔决策变量、线性（伪布尔）约束和整数系数的最小化目标组成，
// 底层交由 gophersat 求解。一个 Model 实例只服务一次求解，不得复用。
package cpsat

import (
	"fmt"

	"github.com/crillab/gophersat/solver"
)

// BoolVar 布尔决策变量，1起始的变量编号
type BoolVar int32

// Term 线性项：变量或其否定，带非负权重
type Term struct {
	Var    BoolVar
	Neg    bool
	Weight int
}

// Pos 构造正文字项，权重1
func Pos(v BoolVar) Term {
	return Term{Var: v, Weight: 1}
}

// Not 构造否定文字项，权重1
func Not(v BoolVar) Term {
	return Term{Var: v, Neg: true, Weight: 1}
}

// Model 约束规划模型
// 变量与约束只增不减，约束之间相互独立，添加顺序不影响约束集合
type Model struct {
	nbVars      int
	constrs     []solver.PBConstr
	costLits    []solver.Lit
	costWeights []int
	offset      int64
	errs        []error
}

// NewModel 创建空模型
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar 分配一个新的布尔变量
func (m *Model) NewBoolVar() BoolVar {
	m.nbVars++
	return BoolVar(m.nbVars)
}

// NumVars 返回已分配变量数
func (m *Model) NumVars() int {
	return m.nbVars
}

// NumConstraints 返回已添加约束数
func (m *Model) NumConstraints() int {
	return len(m.constrs)
}

// Invalid 返回模型是否存在构造错误
func (m *Model) Invalid() bool {
	return len(m.errs) > 0
}

// Err 返回首个构造错误
func (m *Model) Err() error {
	if len(m.errs) == 0 {
		return nil
	}
	return m.errs[0]
}

// setErrorf 记录构造错误，模型进入 INVALID 状态
func (m *Model) setErrorf(format string, a ...interface{}) {
	m.errs = append(m.errs, fmt.Errorf(format, a...))
}

// checkVar 校验变量属于本模型
func (m *Model) checkVar(v BoolVar) bool {
	if v < 1 || int(v) > m.nbVars {
		m.setErrorf("变量 %d 不属于本模型 (共 %d 个变量)", v, m.nbVars)
		return false
	}
	return true
}

// AddAtMost 添加约束：sum(vars) <= k
// k 不小于变量个数时约束恒真，直接忽略
func (m *Model) AddAtMost(k int, vars ...BoolVar) {
	if k < 0 {
		m.setErrorf("AddAtMost 的上界不能为负: %d", k)
		return
	}
	if len(vars) == 0 || k >= len(vars) {
		return
	}
	lits := make([]int, len(vars))
	for i, v := range vars {
		if !m.checkVar(v) {
			return
		}
		lits[i] = int(v)
	}
	m.constrs = append(m.constrs, solver.AtMost(lits, k))
}

// AddAtLeast 添加约束：sum(vars) >= k
// k 为0或更小时约束恒真，直接忽略
func (m *Model) AddAtLeast(k int, vars ...BoolVar) {
	if k <= 0 {
		return
	}
	lits := make([]int, len(vars))
	for i, v := range vars {
		if !m.checkVar(v) {
			return
		}
		lits[i] = int(v)
	}
	m.constrs = append(m.constrs, solver.AtLeast(lits, k))
}

// AddWeightedAtLeast 添加加权约束：sum(weight_i * lit_i) >= bound
// 文字可取否定，权重必须为正
func (m *Model) AddWeightedAtLeast(bound int, terms ...Term) {
	if len(terms) == 0 {
		if bound > 0 {
			m.setErrorf("空的加权约束下界为正: %d", bound)
		}
		return
	}
	lits := make([]int, len(terms))
	weights := make([]int, len(terms))
	for i, t := range terms {
		if !m.checkVar(t.Var) {
			return
		}
		if t.Weight <= 0 {
			m.setErrorf("加权约束的权重必须为正: %d", t.Weight)
			return
		}
		lit := int(t.Var)
		if t.Neg {
			lit = -lit
		}
		lits[i] = lit
		weights[i] = t.Weight
	}
	m.constrs = append(m.constrs, solver.GtEq(lits, weights, bound))
}

// AddObjectiveTerm 向最小化目标添加一项 coeff * lit
// 系数为0的项无效果（权重舍入粒度以下的偏好被忽略，属已知限制）
func (m *Model) AddObjectiveTerm(coeff int, t Term) {
	if coeff == 0 {
		return
	}
	if coeff < 0 {
		m.setErrorf("目标项系数不能为负: %d", coeff)
		return
	}
	if !m.checkVar(t.Var) {
		return
	}
	lit := int32(t.Var)
	if t.Neg {
		lit = -lit
	}
	m.costLits = append(m.costLits, solver.IntToLit(lit))
	m.costWeights = append(m.costWeights, coeff)
}

// AddObjectiveOffset 添加目标常数偏移
// 用于在否定文字改写后还原真实目标值
func (m *Model) AddObjectiveOffset(delta int64) {
	m.offset += delta
}

// HasObjective 返回模型是否设置了目标函数
func (m *Model) HasObjective() bool {
	return len(m.costLits) > 0
}
