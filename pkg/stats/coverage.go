package stats

import (
	"sort"

	"github.com/youpai/youpai/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	TotalSlots      int     `json:"total_slots"`      // (日, 班次类型) 槽位总数
	SatisfiedSlots  int     `json:"satisfied_slots"`  // 达到需求下限的槽位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	DailyCoverage     map[string]DayCoverage `json:"daily_coverage"`      // 每日覆盖情况
	ShiftTypeCoverage map[string]float64     `json:"shift_type_coverage"` // 按班次类型覆盖率 (%)

	DemandSatisfaction float64 `json:"demand_satisfaction"` // 需求满足度 (%)

	Understaffed []StaffingGap `json:"understaffed"` // 人手不足槽位
	Overstaffed  []StaffingGap `json:"overstaffed"`  // 人手超限槽位
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date         string         `json:"date"`
	StaffCount   int            `json:"staff_count"`   // 当日在班人数
	ShiftCounts  map[string]int `json:"shift_counts"`  // 各班次类型在班人数
	CoverageRate float64        `json:"coverage_rate"` // 当日达标槽位比例 (%)
}

// StaffingGap 人力缺口或超限
type StaffingGap struct {
	Date      string `json:"date"`
	ShiftType string `json:"shift_type"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Gap       int    `json:"gap"`
}

// CoverageAnalyzer 覆盖率分析器
// 以请求中的 demand 表为达标标准
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 对照请求的需求表分析排班结果覆盖率
func (c *CoverageAnalyzer) Analyze(req *model.PlanningRequest, assignments []model.AssignmentRecord) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage:     make(map[string]DayCoverage),
		ShiftTypeCoverage: make(map[string]float64),
		Understaffed:      []StaffingGap{},
		Overstaffed:       []StaffingGap{},
	}
	if req.HorizonDays == 0 || len(req.ShiftTypes) == 0 {
		metrics.OverallCoverage = 100
		metrics.DemandSatisfaction = 100
		return metrics
	}

	// 逐 (日, 班次类型) 统计在班人数
	type slotKey struct {
		day  int
		name string
	}
	counts := make(map[slotKey]int)
	for _, a := range assignments {
		if a.IsDayOff {
			continue
		}
		counts[slotKey{day: a.Day, name: a.ShiftTypeName}]++
	}

	typeSlots := make(map[string]int)
	typeSatisfied := make(map[string]int)
	totalRequired := 0
	totalFilled := 0

	for d := 0; d < req.HorizonDays; d++ {
		date := req.DateOfDay(d)
		day := DayCoverage{Date: date, ShiftCounts: make(map[string]int)}
		daySatisfied := 0

		for _, st := range req.ShiftTypes {
			assigned := counts[slotKey{day: d, name: st.Name}]
			day.StaffCount += assigned
			day.ShiftCounts[st.Name] = assigned

			dm, hasDemand := req.Demand[st.Name]
			min, max := 0, 0
			if hasDemand {
				min, max = dm.Min, dm.Max
			}

			metrics.TotalSlots++
			typeSlots[st.Name]++
			satisfied := assigned >= min
			if satisfied {
				metrics.SatisfiedSlots++
				typeSatisfied[st.Name]++
				daySatisfied++
			} else {
				metrics.Understaffed = append(metrics.Understaffed, StaffingGap{
					Date:      date,
					ShiftType: st.Name,
					Required:  min,
					Assigned:  assigned,
					Gap:       min - assigned,
				})
			}
			if hasDemand && assigned > max {
				metrics.Overstaffed = append(metrics.Overstaffed, StaffingGap{
					Date:      date,
					ShiftType: st.Name,
					Required:  max,
					Assigned:  assigned,
					Gap:       assigned - max,
				})
			}

			totalRequired += min
			if assigned < min {
				totalFilled += assigned
			} else {
				totalFilled += min
			}
		}

		day.CoverageRate = float64(daySatisfied) / float64(len(req.ShiftTypes)) * 100
		metrics.DailyCoverage[date] = day
	}

	metrics.OverallCoverage = float64(metrics.SatisfiedSlots) / float64(metrics.TotalSlots) * 100
	for name, total := range typeSlots {
		metrics.ShiftTypeCoverage[name] = float64(typeSatisfied[name]) / float64(total) * 100
	}
	if totalRequired > 0 {
		metrics.DemandSatisfaction = float64(totalFilled) / float64(totalRequired) * 100
	} else {
		metrics.DemandSatisfaction = 100
	}

	sortGaps(metrics.Understaffed)
	sortGaps(metrics.Overstaffed)
	return metrics
}

// sortGaps 按日期再班次类型排序，保证输出稳定
func sortGaps(gaps []StaffingGap) {
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Date != gaps[j].Date {
			return gaps[i].Date < gaps[j].Date
		}
		return gaps[i].ShiftType < gaps[j].ShiftType
	})
}
