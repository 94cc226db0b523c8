// internal/utils/validator/upload.go
package validator

import (
    "fmt"
    "mime/multipart"
    "path/filepath"
    "strings"

    "github.com/ledongthuc/pdf"

    "github.com/wxmine/qr-analyzer/pkg/logger"
)

// UploadValidator 上传文件验证器
type UploadValidator struct {
    logger logger.Logger
    config *Config
}

// Config 验证器配置
type Config struct {
    MaxFileSize  int64    // 最大文件大小（字节）
    AllowedExts  []string // 允许的扩展名
    MaxPageCount int      // PDF最大页数
}

// New 创建上传验证器
func New(log logger.Logger, config *Config) *UploadValidator {
    if config == nil {
        config = &Config{
            MaxFileSize:  16 * 1024 * 1024, // 16MB
            AllowedExts:  []string{".pdf"},
            MaxPageCount: 500,
        }
    }
    return &UploadValidator{
        logger: log,
        config: config,
    }
}

// ValidateUpload gates extension and size before the upload touches disk.
func (v *UploadValidator) ValidateUpload(header *multipart.FileHeader) error {
    if header.Size > v.config.MaxFileSize {
        return fmt.Errorf("file size exceeds maximum limit of %d bytes", v.config.MaxFileSize)
    }

    ext := strings.ToLower(filepath.Ext(header.Filename))
    for _, allowed := range v.config.AllowedExts {
        if allowed == ext {
            return nil
        }
    }
    return fmt.Errorf("unsupported file type: %s", ext)
}

// CheckPageCount parses the saved file and rejects documents over the page
// cap. A file that fails to parse is NOT rejected here: the analyzer reports
// it as a document-level error inside the result instead.
func (v *UploadValidator) CheckPageCount(path string) error {
    f, reader, err := pdf.Open(path)
    if err != nil {
        v.logger.Warn("PDF预检失败，交由分析器处理",
            logger.String("path", path),
            logger.Error(err),
        )
        return nil
    }
    defer f.Close()

    if pages := reader.NumPage(); pages > v.config.MaxPageCount {
        return fmt.Errorf("document has %d pages, exceeds limit of %d", pages, v.config.MaxPageCount)
    }
    return nil
}
