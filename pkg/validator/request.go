// Package validator 校验排班请求
//
// 结构性范围用 go-playground/validator 的标签声明式校验，
// 跨字段的业务规则（需求表顺序、日期格式、班次名唯一）手工补充
package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/model"
)

var validate = validator.New()

// ValidateRequest 校验排班请求
// 返回 nil 表示请求可以进入求解；否则返回汇总全部问题的校验错误
func ValidateRequest(req *model.PlanningRequest) error {
	ve := &apperrors.ValidationErrors{}

	if err := validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				ve.Add(fe.Namespace(), tagMessage(fe))
			}
		} else {
			return apperrors.Wrap(err, apperrors.CodeValidationFail, "请求校验失败")
		}
	}

	if req.StartDate != "" {
		if _, err := time.Parse(model.DateLayout, req.StartDate); err != nil {
			ve.Add("start_date", "日期格式必须为 YYYY-MM-DD")
		}
	}

	seen := make(map[string]bool, len(req.ShiftTypes))
	for i, st := range req.ShiftTypes {
		field := fmt.Sprintf("shift_types[%d]", i)
		if st.Name == "" {
			ve.Add(field+".name", "班次名称不能为空")
		} else if seen[st.Name] {
			ve.Add(field+".name", fmt.Sprintf("班次名称 %s 重复", st.Name))
		}
		seen[st.Name] = true
		if _, err := model.MinutesOfDay(st.StartTime); err != nil {
			ve.Add(field+".start_time", "时间格式必须为 HH:MM")
		}
		if _, err := model.MinutesOfDay(st.EndTime); err != nil {
			ve.Add(field+".end_time", "时间格式必须为 HH:MM")
		}
	}

	for name, dm := range req.Demand {
		field := fmt.Sprintf("demand[%s]", name)
		if !seen[name] {
			ve.Add(field, "需求表引用了不存在的班次类型")
		}
		if dm.Min > dm.Optimal || dm.Optimal > dm.Max {
			ve.Add(field, fmt.Sprintf("需求必须满足 min <= optimal <= max，收到 {%d, %d, %d}",
				dm.Min, dm.Optimal, dm.Max))
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// tagMessage 把校验标签翻译为可读消息
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "字段不能为空"
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("不能大于 %s", fe.Param())
	default:
		return fmt.Sprintf("不满足约束 %s", fe.Tag())
	}
}
