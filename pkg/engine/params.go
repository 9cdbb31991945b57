package engine

import (
	"fmt"
	"math"
)

// paramInt 从规则参数表取整数
// 键缺失时返回默认值；键存在但不是整数时报错
// JSON 反序列化会把数字交付为 float64，带小数部分的值视为类型错误
func paramInt(params map[string]interface{}, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("参数 %s 必须是整数，收到 %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("参数 %s 必须是整数，收到 %T", key, raw)
	}
}

// paramBool 从规则参数表取布尔值
func paramBool(params map[string]interface{}, key string, def bool) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("参数 %s 必须是布尔值，收到 %T", key, raw)
	}
	return v, nil
}
