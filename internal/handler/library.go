package handler

import (
	"net/http"

	"github.com/youpai/youpai/internal/constraints"
)

// GetLibraryHandler 约束库查询API
// GET /api/v1/constraints/library
// 返回求解引擎支持的全部约束规则及其参数定义
func GetLibraryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, constraints.LibraryResponse{
		Library: constraints.GetLibrary(),
	})
}
