package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/youpai/youpai/internal/config"
	"github.com/youpai/youpai/internal/metrics"
	"github.com/youpai/youpai/internal/repository"
	"github.com/youpai/youpai/pkg/engine"
	apperrors "github.com/youpai/youpai/pkg/errors"
	"github.com/youpai/youpai/pkg/logger"
	"github.com/youpai/youpai/pkg/model"
	"github.com/youpai/youpai/pkg/validator"
)

// PlanHandler 排班计划处理器
type PlanHandler struct {
	repo      repository.PlanRepository
	solverCfg config.SolverConfig
}

// NewPlanHandler 创建排班计划处理器
func NewPlanHandler(repo repository.PlanRepository, solverCfg config.SolverConfig) *PlanHandler {
	return &PlanHandler{repo: repo, solverCfg: solverCfg}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	Name    string                `json:"name,omitempty"`
	Request model.PlanningRequest `json:"request"`
}

// GenerateResponse 同步排班生成响应
type GenerateResponse struct {
	Success bool               `json:"success"`
	PlanID  uuid.UUID          `json:"plan_id"`
	Result  *model.SolveResult `json:"result"`
}

// CreateResponse 异步排班创建响应
type CreateResponse struct {
	Success bool      `json:"success"`
	PlanID  uuid.UUID `json:"plan_id"`
	Status  string    `json:"status"`
}

// PlanResponse 排班计划查询响应
type PlanResponse struct {
	Success     bool                     `json:"success"`
	Plan        *repository.Plan         `json:"plan"`
	Assignments []model.AssignmentRecord `json:"assignments,omitempty"`
}

// ListResponse 排班计划列表响应
type ListResponse struct {
	Success bool               `json:"success"`
	Total   int                `json:"total"`
	Plans   []*repository.Plan `json:"plans"`
}

// Generate 同步生成排班
// POST /api/v1/plans/generate
// 调用阻塞至求解结束，适合小规模请求和交互式调用
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := h.decodeRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	plan := h.newPlan(req)
	if err := h.repo.Create(r.Context(), plan); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存排班计划失败"))
		return
	}

	result := h.runSolve(plan)
	if result == nil {
		respondError(w, apperrors.New(apperrors.CodeInternal, "排班求解失败"))
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success: true,
		PlanID:  plan.ID,
		Result:  result,
	})
}

// Plans 处理计划集合请求
// POST /api/v1/plans 异步创建，GET /api/v1/plans 列表
func (h *PlanHandler) Plans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// create 创建计划并在后台求解
// 立即返回 202，调用方通过 GET /api/v1/plans/{id} 轮询进度
func (h *PlanHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	plan := h.newPlan(req)
	if err := h.repo.Create(r.Context(), plan); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存排班计划失败"))
		return
	}

	go h.runSolve(plan)

	respondJSON(w, http.StatusAccepted, CreateResponse{
		Success: true,
		PlanID:  plan.ID,
		Status:  plan.Status,
	})
}

// list 列出排班计划
func (h *PlanHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	if status := r.URL.Query().Get("status"); status != "" {
		filter = filter.WithStatus(status)
	}

	plans, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班计划失败"))
		return
	}
	if plans == nil {
		plans = []*repository.Plan{}
	}

	respondJSON(w, http.StatusOK, ListResponse{Success: true, Total: total, Plans: plans})
}

// Get 查询单个排班计划
// GET /api/v1/plans/{id}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/plans/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, apperrors.InvalidInput("id", "必须是合法的UUID"))
		return
	}

	plan, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班计划失败"))
		return
	}
	if plan == nil {
		respondError(w, apperrors.NotFound("排班计划", idStr))
		return
	}

	resp := PlanResponse{Success: true, Plan: plan}
	if plan.Status == repository.PlanCompleted {
		assignments, err := h.repo.GetAssignments(r.Context(), id)
		if err != nil {
			respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班分配失败"))
			return
		}
		resp.Assignments = assignments
	}

	respondJSON(w, http.StatusOK, resp)
}

// decodeRequest 解析并校验排班请求，回填预算默认值
func (h *PlanHandler) decodeRequest(r *http.Request) (*GenerateRequest, error) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "请求体解析失败")
	}

	if req.Request.SolverBudget.MaxSeconds == 0 {
		req.Request.SolverBudget.MaxSeconds = h.solverCfg.DefaultMaxSeconds
	}
	if req.Request.SolverBudget.Parallelism == 0 {
		req.Request.SolverBudget.Parallelism = h.solverCfg.DefaultParallelism
	}

	if err := validator.ValidateRequest(&req.Request); err != nil {
		return nil, err
	}
	return &req, nil
}

// newPlan 构造待求解的计划记录
func (h *PlanHandler) newPlan(req *GenerateRequest) *repository.Plan {
	name := req.Name
	if name == "" {
		name = "排班 " + req.Request.StartDate
	}
	return &repository.Plan{
		ID:          uuid.New(),
		Name:        name,
		Status:      repository.PlanPending,
		StartDate:   req.Request.StartDate,
		HorizonDays: req.Request.HorizonDays,
		Request:     &req.Request,
	}
}

// runSolve 执行求解并回填计划状态
// 同步与异步路径共用；持久化失败只记日志，不打断已得出的结论
func (h *PlanHandler) runSolve(plan *repository.Plan) *model.SolveResult {
	ctx := context.Background()
	metrics.IncActiveSolves()
	defer metrics.DecActiveSolves()

	plan.Status = repository.PlanRunning
	if err := h.repo.Update(ctx, plan); err != nil {
		logger.WithError(err).Str("plan_id", plan.ID.String()).Msg("更新计划状态失败")
	}

	start := time.Now()
	gen := engine.NewGenerator(plan.Request)
	result, err := gen.Run()
	duration := time.Since(start)

	nVars := len(plan.Request.Workers) * plan.Request.HorizonDays * len(plan.Request.ShiftTypes)
	if err != nil {
		plan.Status = repository.PlanFailed
		plan.Error = err.Error()
		metrics.RecordSolveMetrics(string(model.StatusInvalid), duration, nVars)
		if uerr := h.repo.Update(ctx, plan); uerr != nil {
			logger.WithError(uerr).Str("plan_id", plan.ID.String()).Msg("更新计划状态失败")
		}
		return nil
	}

	plan.Status = repository.PlanCompleted
	plan.SolveStatus = string(result.Status)
	plan.IsOptimal = result.IsOptimal
	plan.ObjectiveValue = result.ObjectiveValue
	plan.WallTimeSeconds = result.WallTimeSeconds

	metrics.RecordSolveMetrics(string(result.Status), duration, nVars)
	if result.ObjectiveValue != nil {
		metrics.SetObjectiveValue(*result.ObjectiveValue)
	}

	if err := h.repo.Update(ctx, plan); err != nil {
		logger.WithError(err).Str("plan_id", plan.ID.String()).Msg("更新计划状态失败")
	}
	if len(result.Assignments) > 0 {
		if err := h.repo.SaveAssignments(ctx, plan.ID, result.Assignments); err != nil {
			logger.WithError(err).Str("plan_id", plan.ID.String()).Msg("保存排班分配失败")
		}
	}
	return result
}
