package stats

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/youpai/youpai/pkg/model"
)

// 构造一条工作记录，date 为 2024-01 月内的日期
func record(workerID uuid.UUID, name, date string, day int, shiftType string) model.AssignmentRecord {
	rec := model.AssignmentRecord{
		WorkerID:   workerID,
		WorkerName: name,
		Date:       date,
		Day:        day,
	}
	if shiftType == "" {
		rec.ShiftTypeName = model.DayOffName
		rec.IsDayOff = true
	} else {
		id := uuid.New()
		rec.ShiftTypeID = &id
		rec.ShiftTypeName = shiftType
	}
	return rec
}

func TestFairnessAnalyzer_EmptyInput(t *testing.T) {
	analyzer := NewFairnessAnalyzer()
	metrics := analyzer.Analyze(nil)

	if metrics.OverallFairnessScore != 100 {
		t.Errorf("空输入应得满分, got %f", metrics.OverallFairnessScore)
	}
	if metrics.WorkerStats == nil || len(metrics.WorkerStats) != 0 {
		t.Error("空输入的人员统计应为空切片")
	}
	if metrics.ShiftTypeDistribution == nil {
		t.Error("班次分布不应为 nil")
	}
}

func TestFairnessAnalyzer_PerfectFairness(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// 两人各2个早班，完全均衡
	assignments := []model.AssignmentRecord{
		record(a, "张三", "2024-01-01", 0, model.ShiftMorning),
		record(a, "张三", "2024-01-02", 1, model.ShiftMorning),
		record(b, "李四", "2024-01-01", 0, model.ShiftMorning),
		record(b, "李四", "2024-01-02", 1, model.ShiftMorning),
	}

	metrics := NewFairnessAnalyzer().Analyze(assignments)

	if metrics.ShiftGini != 0 {
		t.Errorf("完全均衡时基尼系数应为0, got %f", metrics.ShiftGini)
	}
	if metrics.ShiftSpread != 0 {
		t.Errorf("完全均衡时极差应为0, got %d", metrics.ShiftSpread)
	}
	if metrics.ShiftVariance != 0 {
		t.Errorf("完全均衡时方差应为0, got %f", metrics.ShiftVariance)
	}
	if metrics.AvgShifts != 2 {
		t.Errorf("人均班次数应为2, got %f", metrics.AvgShifts)
	}
	if metrics.OverallFairnessScore != 100 {
		t.Errorf("完全均衡时应得满分, got %f", metrics.OverallFairnessScore)
	}
}

func TestFairnessAnalyzer_Unbalanced(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// 一人4班一人0班
	assignments := []model.AssignmentRecord{
		record(a, "张三", "2024-01-01", 0, model.ShiftMorning),
		record(a, "张三", "2024-01-02", 1, model.ShiftMorning),
		record(a, "张三", "2024-01-03", 2, model.ShiftMorning),
		record(a, "张三", "2024-01-04", 3, model.ShiftMorning),
		record(b, "李四", "2024-01-01", 0, ""),
		record(b, "李四", "2024-01-02", 1, ""),
	}

	metrics := NewFairnessAnalyzer().Analyze(assignments)

	if metrics.ShiftGini <= 0 || metrics.ShiftGini > 1 {
		t.Errorf("基尼系数应在 (0,1] 内, got %f", metrics.ShiftGini)
	}
	if metrics.ShiftSpread != 4 {
		t.Errorf("极差应为4, got %d", metrics.ShiftSpread)
	}
	if metrics.MaxShifts != 4 || metrics.MinShifts != 0 {
		t.Errorf("极值应为 [0,4], got [%d,%d]", metrics.MinShifts, metrics.MaxShifts)
	}
	if metrics.OverallFairnessScore >= 100 {
		t.Errorf("失衡分配不应得满分, got %f", metrics.OverallFairnessScore)
	}
}

func TestFairnessAnalyzer_WorkerStats(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// 2024-01-06 是周六
	assignments := []model.AssignmentRecord{
		record(a, "张三", "2024-01-05", 4, model.ShiftNight),
		record(a, "张三", "2024-01-06", 5, model.ShiftNight),
		record(a, "张三", "2024-01-07", 6, ""),
		record(b, "李四", "2024-01-06", 5, model.ShiftMorning),
	}

	metrics := NewFairnessAnalyzer().Analyze(assignments)

	if len(metrics.WorkerStats) != 2 {
		t.Fatalf("Expected 2 worker stats, got %d", len(metrics.WorkerStats))
	}

	// 班次数降序，张三在前
	first := metrics.WorkerStats[0]
	if first.WorkerName != "张三" {
		t.Fatalf("班次多者应排在前, got %s", first.WorkerName)
	}
	if first.ShiftCount != 2 || first.NightShifts != 2 {
		t.Errorf("张三应有2班且均为夜班, got %d/%d", first.ShiftCount, first.NightShifts)
	}
	if first.WeekendShifts != 1 {
		t.Errorf("张三应有1个周末班, got %d", first.WeekendShifts)
	}
	if first.DayOffCount != 1 {
		t.Errorf("张三应有1个休息日, got %d", first.DayOffCount)
	}

	second := metrics.WorkerStats[1]
	if second.NightShifts != 0 || second.WeekendShifts != 1 {
		t.Errorf("李四统计不符: nights=%d weekends=%d", second.NightShifts, second.WeekendShifts)
	}
}

func TestFairnessAnalyzer_ShiftTypeDistribution(t *testing.T) {
	a := uuid.New()

	assignments := []model.AssignmentRecord{
		record(a, "张三", "2024-01-01", 0, model.ShiftMorning),
		record(a, "张三", "2024-01-02", 1, model.ShiftMorning),
		record(a, "张三", "2024-01-03", 2, model.ShiftMorning),
		record(a, "张三", "2024-01-04", 3, model.ShiftNight),
		record(a, "张三", "2024-01-05", 4, ""), // 休息不计入分布
	}

	metrics := NewFairnessAnalyzer().Analyze(assignments)

	if got := metrics.ShiftTypeDistribution[model.ShiftMorning]; math.Abs(got-75) > 1e-9 {
		t.Errorf("早班占比应为75%%, got %f", got)
	}
	if got := metrics.ShiftTypeDistribution[model.ShiftNight]; math.Abs(got-25) > 1e-9 {
		t.Errorf("夜班占比应为25%%, got %f", got)
	}
}

func TestGini(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"空集合", nil, 0},
		{"全相等", []float64{3, 3, 3}, 0},
		{"全为零", []float64{0, 0, 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gini(tc.values); got != tc.want {
				t.Errorf("gini(%v) = %f, want %f", tc.values, got, tc.want)
			}
		})
	}

	// 单人独占时基尼系数趋于 (n-1)/n
	g := gini([]float64{0, 0, 0, 4})
	if g < 0.7 || g > 1 {
		t.Errorf("极端失衡的基尼系数应接近0.75, got %f", g)
	}
}

func TestIsWeekend(t *testing.T) {
	// 2024-01-06 周六, 2024-01-07 周日, 2024-01-08 周一
	if !isWeekend("2024-01-06") || !isWeekend("2024-01-07") {
		t.Error("周六与周日应判定为周末")
	}
	if isWeekend("2024-01-08") {
		t.Error("周一不应判定为周末")
	}
	if isWeekend("不是日期") {
		t.Error("非法日期不应判定为周末")
	}
}
