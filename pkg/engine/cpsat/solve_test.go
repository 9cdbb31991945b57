package cpsat

import (
	"testing"
	"time"
)

func testBudget(seed int64) Budget {
	return Budget{
		MaxTime: 10 * time.Second,
		Workers: 1,
		Seed:    &seed,
	}
}

func TestSolve_Satisfiable(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	c := m.NewBoolVar()

	// a + b + c >= 2, a + b <= 1
	m.AddAtLeast(2, a, b, c)
	m.AddAtMost(1, a, b)

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusOptimal {
		t.Fatalf("Expected OPTIMAL, got %s", sol.Status)
	}
	count := 0
	for _, v := range []BoolVar{a, b, c} {
		if sol.Value(v) {
			count++
		}
	}
	if count < 2 {
		t.Errorf("至少应有2个真值变量, got %d", count)
	}
	if sol.Value(a) && sol.Value(b) {
		t.Error("a 与 b 不应同时为真")
	}
}

func TestSolve_Infeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()

	// a + b >= 2 与 a + b <= 1 矛盾
	m.AddAtLeast(2, a, b)
	m.AddAtMost(1, a, b)

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusInfeasible {
		t.Fatalf("Expected INFEASIBLE, got %s", sol.Status)
	}
	if sol.HasSolution() {
		t.Error("不可满足时不应带解")
	}
}

func TestSolve_Minimize(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()

	// a + b >= 1，a 的惩罚为5，b 为1，最优解应只取 b
	m.AddAtLeast(1, a, b)
	m.AddObjectiveTerm(5, Pos(a))
	m.AddObjectiveTerm(1, Pos(b))

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusOptimal {
		t.Fatalf("Expected OPTIMAL, got %s", sol.Status)
	}
	if sol.Objective != 1 {
		t.Errorf("Expected objective 1, got %d", sol.Objective)
	}
	if sol.Value(a) || !sol.Value(b) {
		t.Errorf("最优解应为 a=false, b=true, got a=%v b=%v", sol.Value(a), sol.Value(b))
	}
}

func TestSolve_ObjectiveOffset(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()

	m.AddAtLeast(1, a)
	m.AddObjectiveTerm(2, Pos(a))
	m.AddObjectiveOffset(-2)

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusOptimal {
		t.Fatalf("Expected OPTIMAL, got %s", sol.Status)
	}
	if sol.Objective != 0 {
		t.Errorf("偏移后的目标值应为0, got %d", sol.Objective)
	}
}

func TestSolve_InvalidModel(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	m.AddAtMost(-1, a)

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusInvalid {
		t.Fatalf("Expected INVALID, got %s", sol.Status)
	}
	if sol.HasSolution() {
		t.Error("INVALID 不应带解")
	}
}

func TestSolve_UnconstrainedVars(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	m.NewBoolVar() // 不出现在任何约束中

	m.AddAtLeast(1, a)

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusOptimal {
		t.Fatalf("Expected OPTIMAL, got %s", sol.Status)
	}
	if !sol.Value(a) {
		t.Error("a 应为真")
	}
}

func TestSolve_ValueIndexing(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	m.NewBoolVar()
	c := m.NewBoolVar()

	// 钉住首尾变量的取值，校验解的变量编号对齐
	m.AddAtMost(0, a)
	m.AddAtLeast(1, c)

	sol := Solve(m, testBudget(1))

	if sol.Status != StatusOptimal {
		t.Fatalf("Expected OPTIMAL, got %s", sol.Status)
	}
	if sol.Value(a) {
		t.Error("首个变量应为假")
	}
	if !sol.Value(c) {
		t.Error("末个变量应为真")
	}
}

func TestSolve_Deterministic(t *testing.T) {
	build := func() *Model {
		m := NewModel()
		vars := make([]BoolVar, 6)
		for i := range vars {
			vars[i] = m.NewBoolVar()
		}
		m.AddAtLeast(3, vars...)
		m.AddAtMost(1, vars[0], vars[1])
		for i, v := range vars {
			m.AddObjectiveTerm(i+1, Pos(v))
		}
		return m
	}

	b := Budget{MaxTime: 10 * time.Second, Workers: 2}
	seed := int64(42)
	b.Seed = &seed

	first := Solve(build(), b)
	second := Solve(build(), b)

	if first.Status != second.Status {
		t.Fatalf("同种子求解状态应一致: %s vs %s", first.Status, second.Status)
	}
	if first.Objective != second.Objective {
		t.Errorf("同种子目标值应一致: %d vs %d", first.Objective, second.Objective)
	}
}
