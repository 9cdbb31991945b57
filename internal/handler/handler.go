// Package handler 提供API处理器
package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/logger"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   bool                   `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// respondJSON 输出JSON响应
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Msg("序列化响应失败")
	}
}

// respondError 输出错误响应，状态码由错误码映射
func respondError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Error:   true,
		Code:    string(apperrors.GetCode(err)),
		Message: err.Error(),
	}
	if appErr, ok := err.(*apperrors.AppError); ok {
		resp.Message = appErr.Message
		resp.Fields = appErr.Fields
	}
	respondJSON(w, apperrors.GetHTTPStatus(err), resp)
}
