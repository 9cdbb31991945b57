// Package engine 实现排班求解引擎
//
// 引擎接收排班请求，按请求中声明的硬/软约束构建伪布尔模型，
// 交由 cpsat 求解后提取逐人逐日的排班记录。
package engine

import (
	"github.com/youpai/youpai/pkg/engine/cpsat"
)

// Variables 决策变量索引
// 每个 (人员, 日, 班次类型) 组合对应一个布尔变量：
// 取真表示该人员当日承担该班次
type Variables struct {
	workers int
	days    int
	types   int
	vars    []cpsat.BoolVar
}

// buildVariables 为整个排班矩阵分配决策变量
// 分配顺序固定为人员优先、日次之、班次最内，保证变量编号可复现
func buildVariables(m *cpsat.Model, workers, days, types int) *Variables {
	v := &Variables{
		workers: workers,
		days:    days,
		types:   types,
		vars:    make([]cpsat.BoolVar, workers*days*types),
	}
	for i := range v.vars {
		v.vars[i] = m.NewBoolVar()
	}
	return v
}

// Var 返回 (人员e, 日d, 班次t) 对应的决策变量
func (v *Variables) Var(e, d, t int) cpsat.BoolVar {
	return v.vars[e*v.days*v.types+d*v.types+t]
}

// Count 返回决策变量总数
func (v *Variables) Count() int {
	return len(v.vars)
}

// PerWorker 返回单个人员名下的变量数
func (v *Variables) PerWorker() int {
	return v.days * v.types
}
