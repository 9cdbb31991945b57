package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/youpai/youpai/internal/config"
	"github.com/youpai/youpai/internal/repository"
	"github.com/youpai/youpai/pkg/model"
)

func testHandler() (*PlanHandler, *repository.MemoryPlanRepository) {
	repo := repository.NewMemoryPlanRepository()
	cfg := config.SolverConfig{DefaultMaxSeconds: 30, DefaultParallelism: 2}
	return NewPlanHandler(repo, cfg), repo
}

// 小规模请求，求解应在秒级内结束
func testPlanningRequest() map[string]interface{} {
	seed := int64(7)
	workers := []model.Worker{
		{ID: uuid.New(), Name: "张三"},
		{ID: uuid.New(), Name: "李四"},
		{ID: uuid.New(), Name: "王五"},
	}
	return map[string]interface{}{
		"name": "单元测试排班",
		"request": model.PlanningRequest{
			HorizonDays: 7,
			StartDate:   "2024-01-01",
			Workers:     workers,
			ShiftTypes: []model.ShiftType{
				{ID: uuid.New(), Name: model.ShiftMorning, StartTime: "07:00", EndTime: "15:00"},
			},
			Demand: map[string]model.Demand{
				model.ShiftMorning: {Min: 1, Optimal: 1, Max: 2},
			},
			HardConstraints: []model.HardConstraint{
				{Name: "one_shift_per_day"},
				{Name: "minimum_coverage"},
				{Name: "maximum_coverage"},
			},
			SolverBudget: model.SolverBudget{MaxSeconds: 10, Parallelism: 1, RandomSeed: &seed},
		},
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestGenerate_Success(t *testing.T) {
	h, repo := testHandler()

	w := postJSON(t, h.Generate, "/api/v1/plans/generate", testPlanningRequest())

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success=true")
	}
	if resp.Result == nil || !resp.Result.Status.HasSolution() {
		t.Fatalf("Expected solution, got %+v", resp.Result)
	}
	if len(resp.Result.Assignments) != 3*7 {
		t.Errorf("Expected 21 assignments, got %d", len(resp.Result.Assignments))
	}

	// 计划与分配应已落库
	plan, err := repo.GetByID(context.Background(), resp.PlanID)
	if err != nil || plan == nil {
		t.Fatalf("计划应已保存: %v", err)
	}
	if plan.Status != repository.PlanCompleted {
		t.Errorf("Expected COMPLETED, got %s", plan.Status)
	}
	saved, _ := repo.GetAssignments(context.Background(), resp.PlanID)
	if len(saved) != 21 {
		t.Errorf("分配记录应已保存, got %d", len(saved))
	}
}

func TestGenerate_InvalidBody(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate",
		strings.NewReader("{这不是JSON"))
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "INVALID_INPUT" {
		t.Errorf("Expected INVALID_INPUT, got %s", resp.Code)
	}
}

func TestGenerate_ValidationFail(t *testing.T) {
	h, _ := testHandler()

	body := testPlanningRequest()
	req := body["request"].(model.PlanningRequest)
	req.Workers = req.Workers[:1] // 少于2人
	body["request"] = req

	w := postJSON(t, h.Generate, "/api/v1/plans/generate", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "VALIDATION_FAILED" {
		t.Errorf("Expected VALIDATION_FAILED, got %s", resp.Code)
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/generate", nil)
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestGenerate_BudgetDefaults(t *testing.T) {
	h, repo := testHandler()

	body := testPlanningRequest()
	req := body["request"].(model.PlanningRequest)
	req.SolverBudget = model.SolverBudget{} // 留空，应回填配置默认值
	body["request"] = req

	w := postJSON(t, h.Generate, "/api/v1/plans/generate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp GenerateResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	plan, _ := repo.GetByID(context.Background(), resp.PlanID)
	if plan.Request.SolverBudget.MaxSeconds != 30 {
		t.Errorf("应回填默认预算30秒, got %d", plan.Request.SolverBudget.MaxSeconds)
	}
	if plan.Request.SolverBudget.Parallelism != 2 {
		t.Errorf("应回填默认并行度2, got %d", plan.Request.SolverBudget.Parallelism)
	}
}

func TestCreate_AsyncAndPoll(t *testing.T) {
	h, _ := testHandler()

	w := postJSON(t, h.Plans, "/api/v1/plans", testPlanningRequest())

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var created CreateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if created.PlanID == uuid.Nil {
		t.Fatal("应返回计划ID")
	}

	// 轮询等待后台求解完成
	deadline := time.Now().Add(15 * time.Second)
	var resp PlanResponse
	for time.Now().Before(deadline) {
		getReq := httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+created.PlanID.String(), nil)
		getW := httptest.NewRecorder()
		h.Get(getW, getReq)

		if getW.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", getW.Code)
		}
		if err := json.Unmarshal(getW.Body.Bytes(), &resp); err != nil {
			t.Fatalf("响应解析失败: %v", err)
		}
		if resp.Plan.Status == repository.PlanCompleted || resp.Plan.Status == repository.PlanFailed {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if resp.Plan.Status != repository.PlanCompleted {
		t.Fatalf("后台求解应完成, got %s", resp.Plan.Status)
	}
	if len(resp.Assignments) != 21 {
		t.Errorf("完成的计划应附带分配记录, got %d", len(resp.Assignments))
	}
}

func TestList(t *testing.T) {
	h, repo := testHandler()

	for i := 0; i < 3; i++ {
		repo.Create(context.Background(), &repository.Plan{Name: "排班", StartDate: "2024-01-01"})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	w := httptest.NewRecorder()
	h.Plans(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp ListResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 3 || len(resp.Plans) != 3 {
		t.Errorf("Expected 3 plans, got %d (total %d)", len(resp.Plans), resp.Total)
	}
}

func TestGet_NotFound(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %s", resp.Code)
	}
}

func TestGet_BadID(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/不是UUID", nil)
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}
