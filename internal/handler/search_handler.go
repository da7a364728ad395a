package handler

import (
	"net/http"
	"strconv"

	"campus-info-go/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责 FAQ 检索。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchFAQs 处理 GET /faqs/search?q=&limit=。
func (h *SearchHandler) SearchFAQs(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 50 {
		fail(c, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	rows, err := h.searchService.SearchFAQs(c.Request.Context(), query, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "success", rows)
}
