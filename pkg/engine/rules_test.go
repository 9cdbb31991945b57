package engine

import (
	"testing"

	apperrors "github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/model"
)

func TestParseHardRule_Unknown(t *testing.T) {
	rule, err := parseHardRule(model.HardConstraint{Name: "no_such_rule"})

	if err != nil {
		t.Fatalf("未知规则应被忽略而非报错: %v", err)
	}
	if rule != nil {
		t.Error("未知规则不应返回实例")
	}
}

func TestParseHardRule_Defaults(t *testing.T) {
	rule, err := parseHardRule(model.HardConstraint{Name: "max_consecutive_shifts"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	r, ok := rule.(maxConsecutiveRule)
	if !ok {
		t.Fatalf("Expected maxConsecutiveRule, got %T", rule)
	}
	if r.max != defaultMaxConsec {
		t.Errorf("Expected default %d, got %d", defaultMaxConsec, r.max)
	}
}

func TestParseHardRule_ParamOverride(t *testing.T) {
	// JSON 反序列化会把数字交付为 float64
	rule, err := parseHardRule(model.HardConstraint{
		Name:   "max_weekly_shifts",
		Params: map[string]interface{}{"max": float64(4)},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r := rule.(maxWeeklyRule); r.max != 4 {
		t.Errorf("Expected max 4, got %d", r.max)
	}
}

func TestParseHardRule_BadParamType(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]interface{}
	}{
		{"字符串", map[string]interface{}{"required_hours": "eleven"}},
		{"带小数", map[string]interface{}{"required_hours": 11.5}},
		{"布尔值", map[string]interface{}{"required_hours": true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseHardRule(model.HardConstraint{Name: "minimum_rest", Params: tc.params})
			if err == nil {
				t.Fatal("非法参数类型应立即报错")
			}
			if !apperrors.Is(err, apperrors.CodeInvalidConstraint) {
				t.Errorf("Expected INVALID_CONSTRAINT, got %s", apperrors.GetCode(err))
			}
		})
	}
}

func TestParseHardRule_NegativeValues(t *testing.T) {
	_, err := parseHardRule(model.HardConstraint{
		Name:   "minimum_coverage",
		Params: map[string]interface{}{"min": float64(-1)},
	})
	if err == nil {
		t.Error("负的覆盖下限应报错")
	}

	_, err = parseHardRule(model.HardConstraint{
		Name:   "max_consecutive_shifts",
		Params: map[string]interface{}{"max": float64(0)},
	})
	if err == nil {
		t.Error("连续天数上限为0应报错")
	}
}

func TestMinimumRest_DefaultAdjacency(t *testing.T) {
	r := minimumRestRule{requiredHours: defaultRestHours}
	night := model.ShiftType{Name: model.ShiftNight, StartTime: "23:00", EndTime: "07:00"}
	morning := model.ShiftType{Name: model.ShiftMorning, StartTime: "07:00", EndTime: "15:00"}
	afternoon := model.ShiftType{Name: model.ShiftAfternoon, StartTime: "15:00", EndTime: "23:00"}

	if !r.forbidden(&night, &morning) {
		t.Error("夜班接早班应被禁止")
	}
	if r.forbidden(&morning, &night) {
		t.Error("早班接次日夜班不应被禁止")
	}
	if r.forbidden(&night, &afternoon) {
		t.Error("默认语义下夜班接午班不应被禁止")
	}
}

func TestMinimumRest_TimeGap(t *testing.T) {
	r := minimumRestRule{requiredHours: 11, useTimeGap: true}
	night := model.ShiftType{Name: model.ShiftNight, StartTime: "23:00", EndTime: "07:00"}
	morning := model.ShiftType{Name: model.ShiftMorning, StartTime: "07:00", EndTime: "15:00"}
	afternoon := model.ShiftType{Name: model.ShiftAfternoon, StartTime: "15:00", EndTime: "23:00"}

	// 夜班 07:00 结束（次日），午班 15:00 开始，间隔 8 小时
	if !r.forbidden(&night, &afternoon) {
		t.Error("间隔8小时不足11小时，应被禁止")
	}
	// 早班 15:00 结束，次日夜班 23:00 开始，间隔 32 小时
	if r.forbidden(&morning, &night) {
		t.Error("间隔32小时充足，不应被禁止")
	}
}

func TestParseSoftRule_Unknown(t *testing.T) {
	rule, err := parseSoftRule(model.SoftConstraint{Name: "no_such_rule", Weight: 1})

	if err != nil {
		t.Fatalf("未知规则应被忽略而非报错: %v", err)
	}
	if rule != nil {
		t.Error("未知规则不应返回实例")
	}
}

func TestScaleWeight(t *testing.T) {
	cases := []struct {
		weight float64
		scale  int
		want   int
	}{
		{1.0, 100, 100},
		{1.5, 100, 150},
		{0.7, 10, 7},
		{0.04, 10, 0}, // 舍入粒度以下的权重无效果
		{2.0, 20, 40},
	}

	for _, tc := range cases {
		if got := scaleWeight(tc.weight, tc.scale); got != tc.want {
			t.Errorf("scaleWeight(%v, %d) = %d, want %d", tc.weight, tc.scale, got, tc.want)
		}
	}
}

func TestParamInt(t *testing.T) {
	params := map[string]interface{}{"present": float64(3)}

	got, err := paramInt(params, "present", 7)
	if err != nil || got != 3 {
		t.Errorf("Expected 3, got %d (err=%v)", got, err)
	}

	got, err = paramInt(params, "absent", 7)
	if err != nil || got != 7 {
		t.Errorf("缺失键应返回默认值7, got %d (err=%v)", got, err)
	}
}
