package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/internal/types"
	"github.com/sentinelbot/sentinel/pkg/log"
	"github.com/sentinelbot/sentinel/pkg/rule"
)

// SearchFields 处理字段检索请求.
// 空查询或超长查询返回 400 与用法提示，与聊天端行为一致.
func (h *Handlers) SearchFields(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	if err := rule.ValidateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	result, err := h.search.Search(c.Request.Context(), req.Query, 0)
	if err != nil {
		log.Logger().Error().Err(err).Msg("search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})

		return
	}

	if result.Usage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	resp := types.SearchResponse{
		Query: result.Query,
		Count: len(result.Hits),
		Hits:  make([]types.SearchHitItem, 0, len(result.Hits)),
	}

	for _, hit := range result.Hits {
		resp.Hits = append(resp.Hits, types.SearchHitItem{
			Kind:          string(hit.Kind),
			Value:         hit.Value,
			FileName:      hit.FileName,
			ContentDigest: hit.ContentDigest,
			OriginID:      hit.OriginID,
			ExtractedAt:   hit.ExtractedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
