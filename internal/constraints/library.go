// Package constraints 约束库
package constraints

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"` // hard 硬约束, soft 软约束
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

// GetLibrary 返回求解引擎支持的全部约束规则
func GetLibrary() []ConstraintDefinition {
	return []ConstraintDefinition{
		// =====================================================
		// 硬约束
		// =====================================================
		{
			Name:        "one_shift_per_day",
			DisplayName: "每日单班次",
			Type:        "hard",
			Category:    "排班模式",
			Description: "每名人员每天最多承担一个班次，可以休息但不能同日双班。",
			Params:      []ConstraintParam{},
		},
		{
			Name:        "minimum_coverage",
			DisplayName: "最低人力覆盖",
			Type:        "hard",
			Category:    "服务保障",
			Description: "每天每个班次的在岗人数不得低于需求下限，需求表未给出时使用参数默认值。",
			Params: []ConstraintParam{
				{Name: "min", Type: "int", Description: "默认最低人数", Default: "1", Min: "0"},
			},
		},
		{
			Name:        "maximum_coverage",
			DisplayName: "最高人力覆盖",
			Type:        "hard",
			Category:    "成本控制",
			Description: "每天每个班次的在岗人数不得超过需求上限，避免人力浪费。",
			Params: []ConstraintParam{
				{Name: "max", Type: "int", Description: "默认最高人数", Default: "10", Min: "0"},
			},
		},
		{
			Name:        "minimum_rest",
			DisplayName: "班次间最短休息",
			Type:        "hard",
			Category:    "休息保障",
			Description: "禁止夜班次日接早班。开启 use_time_gap 后改为按班次起止时刻计算实际间隔。",
			Params: []ConstraintParam{
				{Name: "required_hours", Type: "int", Description: "最短休息时长(小时)", Default: "11", Min: "0", Max: "24"},
				{Name: "use_time_gap", Type: "bool", Description: "按实际时刻间隔计算", Default: "false"},
			},
		},
		{
			Name:        "max_consecutive_shifts",
			DisplayName: "最大连续工作天数",
			Type:        "hard",
			Category:    "休息保障",
			Description: "任意连续 max+1 天的窗口内总班次数不超过 max，保证周期性休息。",
			Params: []ConstraintParam{
				{Name: "max", Type: "int", Description: "最大连续班次数", Default: "5", Min: "1", Max: "14"},
			},
		},
		{
			Name:        "max_weekly_shifts",
			DisplayName: "每周班次上限",
			Type:        "hard",
			Category:    "工时限制",
			Description: "排班期按 7 天分块，每名人员在每块内的班次数不超过上限，末块不足 7 天同样生效。",
			Params: []ConstraintParam{
				{Name: "max", Type: "int", Description: "每周最大班次数", Default: "5", Min: "1", Max: "7"},
			},
		},

		// =====================================================
		// 软约束
		// =====================================================
		{
			Name:        "equity_of_shifts",
			DisplayName: "班次均衡",
			Type:        "soft",
			Category:    "公平性",
			Description: "最小化人员总班次数的最大值与最小值之差，使工作量分布均匀。",
			Params: []ConstraintParam{
				{Name: "weight", Type: "float", Description: "优化权重", Default: "1.0", Min: "0"},
			},
		},
		{
			Name:        "shift_preferences",
			DisplayName: "班次偏好",
			Type:        "soft",
			Category:    "偏好",
			Description: "对声明了偏好班次的人员，惩罚落在偏好之外的分配；无偏好者不计。",
			Params: []ConstraintParam{
				{Name: "weight", Type: "float", Description: "优化权重", Default: "1.0", Min: "0"},
			},
		},
		{
			Name:        "minimize_night_shifts",
			DisplayName: "夜班最少化",
			Type:        "soft",
			Category:    "休息保障",
			Description: "对每一次夜班分配施加惩罚，整体减少夜班数量。班次表中无夜班时不生效。",
			Params: []ConstraintParam{
				{Name: "weight", Type: "float", Description: "优化权重", Default: "1.0", Min: "0"},
			},
		},
	}
}
