package cpsat

import (
	"math/rand"
	"sync"
	"time"

	"github.com/crillab/gophersat/solver"
)

// Status 求解状态
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"    // 已证明最优（无目标函数时等价于已证明可满足）
	StatusFeasible   Status = "FEASIBLE"   // 预算耗尽，返回已知最优解
	StatusInfeasible Status = "INFEASIBLE" // 已证明不可满足
	StatusInvalid    Status = "INVALID"    // 模型构造错误
	StatusUnknown    Status = "UNKNOWN"    // 预算内未得出任何结论
)

// Budget 求解预算
type Budget struct {
	MaxTime time.Duration // 硬性墙钟上限
	Workers int           // 并行搜索实例数
	Seed    *int64        // 确定性种子，缺省时按时间取种，搜索顺序不可复现
}

// Solution 求解产物
type Solution struct {
	Status    Status
	Objective int64 // 仅 OPTIMAL/FEASIBLE 有意义
	WallTime  time.Duration
	values    []bool // 1起始，下标0不用
}

// Value 返回变量在解中的取值
// 无解或变量缺失时返回 false
func (s *Solution) Value(v BoolVar) bool {
	if s.values == nil || int(v) < 1 || int(v) >= len(s.values) {
		return false
	}
	return s.values[v]
}

// HasSolution 检查是否带有可用解
func (s *Solution) HasSolution() bool {
	return s.Status == StatusOptimal || s.Status == StatusFeasible
}

// instanceResult 单个搜索实例的结论
// model 是求解器原生布局：下标 i 对应变量 i+1
type instanceResult struct {
	status solver.Status
	model  []bool
	cost   int
	found  bool
}

// Solve 在给定预算内求解模型
//
// 调用是同步阻塞的：仅在证明最优、预算耗尽、证明不可满足或内部错误时返回。
// 并行度通过组合（portfolio）实现：多个独立求解实例在打乱的约束顺序上
// 各自搜索，最终按确定性规则取最优结论。引擎不提供中途取消原语，
// 唯一的控制手段是预先配置的时间预算。
func Solve(m *Model, b Budget) *Solution {
	start := time.Now()

	if m.Invalid() {
		return &Solution{Status: StatusInvalid, WallTime: time.Since(start)}
	}

	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	maxTime := b.MaxTime
	if maxTime <= 0 {
		maxTime = time.Nanosecond
	}

	var seed int64
	if b.Seed != nil {
		seed = *b.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	// 各实例在独立的模型副本上搜索，互不共享可变状态
	results := make([]instanceResult, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w] = m.runInstance(seed+int64(w), maxTime)
		}(w)
	}
	wg.Wait()

	sol := combine(m, results)
	sol.WallTime = time.Since(start)
	return sol
}

// runInstance 构建并运行一个独立的求解实例
func (m *Model) runInstance(seed int64, maxTime time.Duration) instanceResult {
	rng := rand.New(rand.NewSource(seed))

	constrs := make([]solver.PBConstr, len(m.constrs))
	copy(constrs, m.constrs)
	rng.Shuffle(len(constrs), func(i, j int) {
		constrs[i], constrs[j] = constrs[j], constrs[i]
	})

	// 恒真约束钉住最大变量编号，保证未出现在约束中的变量也进入模型
	if m.nbVars > 0 {
		constrs = append(constrs, solver.AtMost([]int{m.nbVars}, 1))
	}

	pb := solver.ParsePBConstrs(constrs)
	if len(m.costLits) > 0 {
		lits := make([]solver.Lit, len(m.costLits))
		copy(lits, m.costLits)
		weights := make([]int, len(m.costWeights))
		copy(weights, m.costWeights)
		pb.SetCostFunc(lits, weights)
	}

	s := solver.New(pb)

	resultChan := make(chan solver.Result)
	stop := make(chan struct{})
	timer := time.AfterFunc(maxTime, func() { close(stop) })
	defer timer.Stop()

	finalChan := make(chan solver.Result, 1)
	go func() {
		finalChan <- s.Optimal(resultChan, stop)
	}()

	// 收集中间解：预算耗尽时以最后一个为已知最优
	res := instanceResult{}
	for r := range resultChan {
		if r.Status == solver.Sat {
			res.model = r.Model
			res.cost = r.Weight
			res.found = true
		}
	}

	final := <-finalChan
	res.status = final.Status
	if final.Status == solver.Sat {
		res.model = final.Model
		res.cost = final.Weight
		res.found = true
	}
	return res
}

// combine 按确定性规则合并各实例结论
// 优先级：已证明最优 > 不可满足 > 可行解 > 无结论；
// 同级取目标值最小者，再按实例序号取先
func combine(m *Model, results []instanceResult) *Solution {
	// 已证明最优：搜索正常结束（非 Indet）且带解
	best := -1
	for i, r := range results {
		if r.found && r.status != solver.Indet {
			if best < 0 || r.cost < results[best].cost {
				best = i
			}
		}
	}
	if best >= 0 {
		r := results[best]
		return &Solution{
			Status:    StatusOptimal,
			Objective: int64(r.cost) + m.offset,
			values:    m.extractValues(r.model),
		}
	}

	// 全部实例求解同一问题，任一证明不可满足即为最终结论
	for _, r := range results {
		if r.status == solver.Unsat && !r.found {
			return &Solution{Status: StatusInfeasible}
		}
	}

	// 预算耗尽前找到的已知最优解
	for i, r := range results {
		if r.found {
			if best < 0 || r.cost < results[best].cost {
				best = i
			}
		}
	}
	if best >= 0 {
		r := results[best]
		return &Solution{
			Status:    StatusFeasible,
			Objective: int64(r.cost) + m.offset,
			values:    m.extractValues(r.model),
		}
	}

	return &Solution{Status: StatusUnknown}
}

// extractValues 把求解器的0起始模型转为按变量编号(1起始)索引的取值表
func (m *Model) extractValues(sm []bool) []bool {
	values := make([]bool, m.nbVars+1)
	for v := 1; v <= m.nbVars && v <= len(sm); v++ {
		values[v] = sm[v-1]
	}
	return values
}
