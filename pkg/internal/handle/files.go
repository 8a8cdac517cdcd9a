package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/types"
	"github.com/sentinelbot/sentinel/pkg/log"
	"github.com/sentinelbot/sentinel/pkg/queue"
)

// RecentFiles 列出最近摄取的文件记录，可按来源群组过滤.
func (h *Handlers) RecentFiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	originID, _ := strconv.ParseInt(c.Query("origin"), 10, 64)

	files, err := h.ledger.RecentFiles(c.Request.Context(), originID, limit)
	if err != nil {
		log.Logger().Error().Err(err).Msg("list recent files failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})

		return
	}

	resp := types.RecentFilesResponse{
		Count: len(files),
		Files: make([]types.RecentFileItem, 0, len(files)),
	}

	for _, f := range files {
		resp.Files = append(resp.Files, types.RecentFileItem{
			ID:            f.ID,
			FileName:      f.FileName,
			ContentDigest: f.ContentDigest,
			Size:          f.Size,
			MimeType:      f.MimeType,
			OriginID:      f.OriginID,
			IngestedAt:    f.IngestedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// PurgeFile 管理员清除一条文件记录及其字段，并删除对应内容字节.
func (h *Handlers) PurgeFile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	fileID := uint(id)
	ctx := c.Request.Context()

	// 先取记录拿到存储键，台账删除成功后再清内容字节
	target, err := h.ledger.GetFileByID(ctx, fileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	removed, err := h.ledger.PurgeFile(ctx, fileID)
	if err != nil {
		log.Logger().Error().Err(err).Uint("file_id", fileID).Msg("purge failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "purge failed"})

		return
	}

	if err := h.store.Remove(ctx, target.StorageKey); err != nil {
		// 台账已删，字节清理失败只告警，不回滚
		log.Logger().Warn().Err(err).Str("key", target.StorageKey).Msg("content removal failed after purge")
	}

	if h.mq != nil {
		msg, err := queue.NewWatermillMessage(queue.TopicFilePurged, queue.FilePurgedPayload{
			FileID:        fileID,
			ContentDigest: target.ContentDigest,
			Fields:        removed,
		}, queue.WithProducer(configs.AppName))
		if err == nil {
			if err := h.mq.Publisher().Publish(queue.TopicFilePurged, msg); err != nil {
				log.Logger().Warn().Err(err).Msg("publish purged event failed")
			}
		}
	}

	c.JSON(http.StatusOK, types.PurgeResponse{FileID: fileID, FieldsRemoved: removed})
}
