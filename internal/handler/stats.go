package handler

import (
	"encoding/json"
	"net/http"

	"github.com/youpai/youpai/internal/metrics"
	apperrors "github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/model"
	"github.com/youpai/youpai/pkg/stats"
)

// StatsRequest 统计分析请求
// 覆盖率分析需要原始请求（需求表与排班期），公平性分析只看排班记录
type StatsRequest struct {
	Request     *model.PlanningRequest   `json:"request,omitempty"`
	Assignments []model.AssignmentRecord `json:"assignments"`
}

// FairnessResponse 公平性响应
type FairnessResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.FairnessMetrics `json:"data,omitempty"`
}

// CoverageResponse 覆盖率响应
type CoverageResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.CoverageMetrics `json:"data,omitempty"`
}

// GetFairnessHandler 公平性分析API
// POST /api/v1/stats/fairness
func GetFairnessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	analyzer := stats.NewFairnessAnalyzer()
	m := analyzer.Analyze(req.Assignments)

	metrics.SetFairnessGini("shift_count", m.ShiftGini)
	metrics.SetFairnessGini("night_shifts", m.NightShiftGini)

	respondJSON(w, http.StatusOK, FairnessResponse{Success: true, Data: m})
}

// GetCoverageHandler 覆盖率分析API
// POST /api/v1/stats/coverage
func GetCoverageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "请求体解析失败"))
		return
	}
	if req.Request == nil {
		respondError(w, apperrors.InvalidInput("request", "覆盖率分析需要原始排班请求"))
		return
	}

	analyzer := stats.NewCoverageAnalyzer()
	m := analyzer.Analyze(req.Request, req.Assignments)

	metrics.SetCoverageRate(m.OverallCoverage)

	respondJSON(w, http.StatusOK, CoverageResponse{Success: true, Data: m})
}
