package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"campus-info-go/pkg/log"

	"github.com/google/uuid"
)

// MaxAttachmentSize 是单个附件的大小上限。
const MaxAttachmentSize = 10 << 20

// 允许上传的附件扩展名及其内容类型
var attachmentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".txt":  "text/plain",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ObjectStore 是附件的对象存储，由 storage.MinIOStore 实现。
type ObjectStore interface {
	PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Attachment 是上传成功后的附件信息，Object 可写入 events/updates 的 attachment 字段。
type Attachment struct {
	Object      string `json:"object"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// AttachmentService 定义了附件的上传与下载。
type AttachmentService interface {
	Upload(ctx context.Context, fileName string, size int64, r io.Reader) (*Attachment, error)
	URL(ctx context.Context, object string) (string, error)
}

type attachmentService struct {
	objects ObjectStore
	expiry  time.Duration
	now     func() time.Time
}

// NewAttachmentService 创建附件服务，expiry 是下载链接的有效期。
func NewAttachmentService(objects ObjectStore, expiry time.Duration) AttachmentService {
	return &attachmentService{objects: objects, expiry: expiry, now: time.Now}
}

// Upload 校验类型与大小后以 attachments/yyyy/mm/<uuid><ext> 为对象名保存。
func (s *attachmentService) Upload(ctx context.Context, fileName string, size int64, r io.Reader) (*Attachment, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := attachmentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrValidation, ext)
	}
	if size <= 0 || size > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: file size must be between 1 byte and %d MB", ErrValidation, MaxAttachmentSize>>20)
	}

	object := path.Join("attachments", s.now().UTC().Format("2006/01"), uuid.NewString()+ext)
	if err := s.objects.PutObject(ctx, object, r, size, contentType); err != nil {
		log.Errorf("[AttachmentService] 上传附件失败, file: %s, error: %v", fileName, err)
		return nil, err
	}
	log.Infof("[AttachmentService] 附件已上传: %s -> %s", fileName, object)
	return &Attachment{Object: object, FileName: filepath.Base(fileName), ContentType: contentType, Size: size}, nil
}

// URL 返回附件的预签名下载链接。
func (s *attachmentService) URL(ctx context.Context, object string) (string, error) {
	object = strings.TrimPrefix(path.Clean("/"+object), "/")
	if !strings.HasPrefix(object, "attachments/") {
		return "", ErrNotFound
	}
	u, err := s.objects.PresignedURL(ctx, object, s.expiry)
	if err != nil {
		log.Warnw("presign attachment failed", "object", object, "error", err)
		return "", ErrNotFound
	}
	return u, nil
}
