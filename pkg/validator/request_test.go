package validator

import (
	"testing"

	"github.com/google/uuid"
	apperrors "github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/model"
)

func validRequest() *model.PlanningRequest {
	return &model.PlanningRequest{
		HorizonDays: 7,
		StartDate:   "2024-01-01",
		Workers: []model.Worker{
			{ID: uuid.New(), Name: "张三"},
			{ID: uuid.New(), Name: "李四"},
		},
		ShiftTypes: []model.ShiftType{
			{ID: uuid.New(), Name: model.ShiftMorning, StartTime: "07:00", EndTime: "15:00"},
			{ID: uuid.New(), Name: model.ShiftNight, StartTime: "23:00", EndTime: "07:00"},
		},
		Demand: map[string]model.Demand{
			model.ShiftMorning: {Min: 1, Optimal: 1, Max: 2},
		},
		SolverBudget: model.SolverBudget{MaxSeconds: 60, Parallelism: 4},
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	if err := ValidateRequest(validRequest()); err != nil {
		t.Errorf("合法请求不应报错: %v", err)
	}
}

func TestValidateRequest_HorizonOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		days int
	}{
		{"过短", 3},
		{"过长", 120},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.HorizonDays = tc.days

			err := ValidateRequest(req)
			if err == nil {
				t.Fatal("超出范围的排班期限应报错")
			}
			if !apperrors.Is(err, apperrors.CodeValidationFail) {
				t.Errorf("Expected VALIDATION_FAILED, got %s", apperrors.GetCode(err))
			}
		})
	}
}

func TestValidateRequest_TooFewWorkers(t *testing.T) {
	req := validRequest()
	req.Workers = req.Workers[:1]

	if err := ValidateRequest(req); err == nil {
		t.Error("少于2名人员应报错")
	}
}

func TestValidateRequest_BadStartDate(t *testing.T) {
	req := validRequest()
	req.StartDate = "2024/01/01"

	err := ValidateRequest(req)
	if err == nil {
		t.Fatal("非法日期格式应报错")
	}
	if !apperrors.Is(err, apperrors.CodeValidationFail) {
		t.Errorf("Expected VALIDATION_FAILED, got %s", apperrors.GetCode(err))
	}
}

func TestValidateRequest_DuplicateShiftName(t *testing.T) {
	req := validRequest()
	req.ShiftTypes = append(req.ShiftTypes, model.ShiftType{
		ID: uuid.New(), Name: model.ShiftMorning, StartTime: "08:00", EndTime: "16:00",
	})

	if err := ValidateRequest(req); err == nil {
		t.Error("重复班次名应报错")
	}
}

func TestValidateRequest_BadShiftTime(t *testing.T) {
	req := validRequest()
	req.ShiftTypes[0].StartTime = "7点"

	if err := ValidateRequest(req); err == nil {
		t.Error("非法时间格式应报错")
	}
}

func TestValidateRequest_DemandUnknownShift(t *testing.T) {
	req := validRequest()
	req.Demand["不存在的班次"] = model.Demand{Min: 1, Optimal: 1, Max: 1}

	if err := ValidateRequest(req); err == nil {
		t.Error("需求表引用未知班次应报错")
	}
}

func TestValidateRequest_DemandOrdering(t *testing.T) {
	req := validRequest()
	req.Demand[model.ShiftMorning] = model.Demand{Min: 3, Optimal: 2, Max: 5}

	if err := ValidateRequest(req); err == nil {
		t.Error("min > optimal 应报错")
	}

	req.Demand[model.ShiftMorning] = model.Demand{Min: 1, Optimal: 4, Max: 3}
	if err := ValidateRequest(req); err == nil {
		t.Error("optimal > max 应报错")
	}
}

func TestValidateRequest_BudgetOutOfRange(t *testing.T) {
	req := validRequest()
	req.SolverBudget.MaxSeconds = 5

	if err := ValidateRequest(req); err == nil {
		t.Error("求解预算低于下限应报错")
	}

	req = validRequest()
	req.SolverBudget.Parallelism = 16
	if err := ValidateRequest(req); err == nil {
		t.Error("并行度超过上限应报错")
	}
}

func TestValidateRequest_CollectsAllProblems(t *testing.T) {
	req := validRequest()
	req.StartDate = "bad"
	req.ShiftTypes[0].Name = ""

	err := ValidateRequest(req)
	if err == nil {
		t.Fatal("多处问题应报错")
	}

	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("Expected *AppError, got %T", err)
	}
	if len(appErr.Fields) < 2 {
		t.Errorf("应汇总全部字段问题, got %d", len(appErr.Fields))
	}
}
