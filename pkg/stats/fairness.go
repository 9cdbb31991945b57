// Package stats 提供排班结果的统计分析功能
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/youpai/youpai/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 班次数公平性
	ShiftGini     float64 `json:"shift_gini"`     // 班次数基尼系数 (0=完全公平, 1=完全不公平)
	ShiftVariance float64 `json:"shift_variance"` // 班次数方差
	ShiftStdDev   float64 `json:"shift_std_dev"`  // 班次数标准差
	AvgShifts     float64 `json:"avg_shifts"`     // 人均班次数
	MaxShifts     int     `json:"max_shifts"`     // 最大班次数
	MinShifts     int     `json:"min_shifts"`     // 最小班次数
	ShiftSpread   int     `json:"shift_spread"`   // 班次数极差

	// 特殊班次公平性
	NightShiftGini   float64 `json:"night_shift_gini"`   // 夜班分配基尼系数
	WeekendShiftGini float64 `json:"weekend_shift_gini"` // 周末班分配基尼系数

	// 班次类型分布
	ShiftTypeDistribution map[string]float64 `json:"shift_type_distribution"` // 各班次类型占比 (%)

	// 人员级别统计
	WorkerStats []WorkerStat `json:"worker_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// WorkerStat 单人统计
type WorkerStat struct {
	WorkerID      string  `json:"worker_id"`
	WorkerName    string  `json:"worker_name"`
	ShiftCount    int     `json:"shift_count"`
	NightShifts   int     `json:"night_shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	DayOffCount   int     `json:"day_off_count"`
	Deviation     float64 `json:"deviation"` // 班次数与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班结果的公平性
// 记录集合为空时返回满分指标
func (f *FairnessAnalyzer) Analyze(assignments []model.AssignmentRecord) *FairnessMetrics {
	if len(assignments) == 0 {
		return &FairnessMetrics{
			ShiftTypeDistribution: make(map[string]float64),
			WorkerStats:           []WorkerStat{},
			OverallFairnessScore:  100,
		}
	}

	workerStats := f.calculateWorkerStats(assignments)

	counts := make([]float64, len(workerStats))
	nights := make([]float64, len(workerStats))
	weekends := make([]float64, len(workerStats))
	for i, stat := range workerStats {
		counts[i] = float64(stat.ShiftCount)
		nights[i] = float64(stat.NightShifts)
		weekends[i] = float64(stat.WeekendShifts)
	}

	avg := mean(counts)
	variance := varianceOf(counts, avg)
	maxShifts, minShifts := intRange(workerStats)

	for i := range workerStats {
		if avg > 0 {
			workerStats[i].Deviation = (float64(workerStats[i].ShiftCount) - avg) / avg * 100
		}
	}

	shiftGini := gini(counts)
	nightGini := gini(nights)
	weekendGini := gini(weekends)

	return &FairnessMetrics{
		ShiftGini:             shiftGini,
		ShiftVariance:         variance,
		ShiftStdDev:           math.Sqrt(variance),
		AvgShifts:             avg,
		MaxShifts:             maxShifts,
		MinShifts:             minShifts,
		ShiftSpread:           maxShifts - minShifts,
		NightShiftGini:        nightGini,
		WeekendShiftGini:      weekendGini,
		ShiftTypeDistribution: f.shiftTypeDistribution(assignments),
		WorkerStats:           workerStats,
		OverallFairnessScore:  f.overallScore(shiftGini, nightGini, weekendGini, math.Sqrt(variance), avg),
	}
}

// calculateWorkerStats 按人员聚合排班记录
// 结果按班次数降序排列，同数时按人员ID稳定排序
func (f *FairnessAnalyzer) calculateWorkerStats(assignments []model.AssignmentRecord) []WorkerStat {
	statMap := make(map[string]*WorkerStat)
	order := make([]string, 0)

	for _, a := range assignments {
		id := a.WorkerID.String()
		stat, exists := statMap[id]
		if !exists {
			stat = &WorkerStat{WorkerID: id, WorkerName: a.WorkerName}
			statMap[id] = stat
			order = append(order, id)
		}

		if a.IsDayOff {
			stat.DayOffCount++
			continue
		}
		stat.ShiftCount++
		if a.ShiftTypeName == model.ShiftNight {
			stat.NightShifts++
		}
		if isWeekend(a.Date) {
			stat.WeekendShifts++
		}
	}

	result := make([]WorkerStat, 0, len(order))
	for _, id := range order {
		result = append(result, *statMap[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ShiftCount != result[j].ShiftCount {
			return result[i].ShiftCount > result[j].ShiftCount
		}
		return result[i].WorkerID < result[j].WorkerID
	})
	return result
}

// shiftTypeDistribution 计算各班次类型占工作记录的百分比
func (f *FairnessAnalyzer) shiftTypeDistribution(assignments []model.AssignmentRecord) map[string]float64 {
	counts := make(map[string]int)
	total := 0
	for _, a := range assignments {
		if a.IsDayOff {
			continue
		}
		counts[a.ShiftTypeName]++
		total++
	}

	distribution := make(map[string]float64)
	if total > 0 {
		for name, count := range counts {
			distribution[name] = float64(count) / float64(total) * 100
		}
	}
	return distribution
}

// overallScore 计算综合公平性评分
func (f *FairnessAnalyzer) overallScore(shiftGini, nightGini, weekendGini, stdDev, avg float64) float64 {
	const (
		shiftWeight   = 0.4
		nightWeight   = 0.25
		weekendWeight = 0.25
		stdDevWeight  = 0.1
	)

	shiftScore := (1 - shiftGini) * 100
	nightScore := (1 - nightGini) * 100
	weekendScore := (1 - weekendGini) * 100

	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := shiftWeight*shiftScore +
		nightWeight*nightScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// isWeekend 判断日期是否落在周末
func isWeekend(dateStr string) bool {
	date, err := time.Parse(model.DateLayout, dateStr)
	if err != nil {
		return false
	}
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// intRange 计算班次数极值
func intRange(stats []WorkerStat) (max, min int) {
	if len(stats) == 0 {
		return 0, 0
	}
	max, min = stats[0].ShiftCount, stats[0].ShiftCount
	for _, s := range stats[1:] {
		if s.ShiftCount > max {
			max = s.ShiftCount
		}
		if s.ShiftCount < min {
			min = s.ShiftCount
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
