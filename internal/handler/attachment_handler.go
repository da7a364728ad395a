package handler

import (
	"net/http"

	"campus-info-go/internal/service"
	"campus-info-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AttachmentHandler 负责活动与公告附件的上传和下载。
type AttachmentHandler struct {
	attachments service.AttachmentService
}

// NewAttachmentHandler 创建一个新的 AttachmentHandler 实例。
func NewAttachmentHandler(attachments service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload 处理 multipart 表单中名为 file 的文件。
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Upload: 打开上传文件失败: %v", err)
		fail(c, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}
	defer file.Close()

	att, err := h.attachments.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "uploaded", att)
}

// Download 重定向到附件的预签名链接。
func (h *AttachmentHandler) Download(c *gin.Context) {
	u, err := h.attachments.URL(c.Request.Context(), c.Param("object"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, u)
}
