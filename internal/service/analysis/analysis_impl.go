package analysis

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wxmine/qr-analyzer/internal/analyzer"
	"github.com/wxmine/qr-analyzer/internal/models"
	"github.com/wxmine/qr-analyzer/internal/utils/validator"
	"github.com/wxmine/qr-analyzer/pkg/logger"
)

// DocumentAnalyzer is the core entry point. It never returns an error value;
// failures are embedded in the report.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, path string) *models.AnalysisReport
}

type AnalysisService struct {
	analyzer  DocumentAnalyzer
	validator *validator.UploadValidator
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	TempDir       string
	MaxFileSize   int64
	MaxConcurrent int
}

// NewService wires an analysis service from its parts.
func NewService(az DocumentAnalyzer, v *validator.UploadValidator, log logger.Logger, cfg *ServiceConfig) Service {
	if cfg == nil {
		cfg = &ServiceConfig{
			TempDir:       os.TempDir(),
			MaxFileSize:   16 * 1024 * 1024, // 16MB
			MaxConcurrent: 3,
		}
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	return &AnalysisService{
		analyzer:  az,
		validator: v,
		logger:    log,
		config:    cfg,
	}
}

// GetService builds the default service: real rasterizer, detector, fetcher
// and extractor behind the analyzer.
func GetService(log logger.Logger) (Service, error) {
	cfg := &ServiceConfig{
		TempDir:       os.TempDir(),
		MaxFileSize:   16 * 1024 * 1024, // 16MB
		MaxConcurrent: 3,
	}

	v := validator.New(log, &validator.Config{
		MaxFileSize:  cfg.MaxFileSize,
		AllowedExts:  []string{".pdf"},
		MaxPageCount: 500,
	})

	return NewService(analyzer.New(log), v, log, cfg), nil
}

// AnalyzeUpload saves the uploaded PDF to a unique temp path, runs the
// analyzer inline and cleans the temp file up afterwards. Errors returned
// here are transport-level rejections (bad extension, oversize); analysis
// failures live inside the report.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.AnalysisReport, error) {
	s.logger.Info("开始处理上传文件",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if err := s.validator.ValidateUpload(header); err != nil {
		s.logger.Error("上传文件验证失败",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	// uuid 前缀保证临时文件名唯一
	tempName := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename))
	tempPath := filepath.Join(s.config.TempDir, tempName)

	if err := s.saveTempFile(file, tempPath); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			s.logger.Warn("临时文件清理失败",
				logger.String("path", tempPath),
				logger.Error(err),
			)
		}
	}()

	if err := s.validator.CheckPageCount(tempPath); err != nil {
		return nil, err
	}

	report := s.analyzer.Analyze(ctx, tempPath)

	s.logger.Info("上传文件分析完成",
		logger.String("filename", header.Filename),
		logger.Int("totalQRCodes", report.TotalQRCodes),
	)

	return report, nil
}

// AnalyzeBatch runs the uploaded files concurrently. Result order matches
// input order; ordering inside each report is unaffected by the concurrency.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.AnalysisReport, error) {
	reports := make([]*models.AnalysisReport, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrent)

	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", header.Filename, err)
			}
			defer file.Close()

			report, err := s.AnalyzeUpload(ctx, file, header)
			if err != nil {
				return fmt.Errorf("failed to analyze file %s: %w", header.Filename, err)
			}

			mu.Lock()
			reports[i] = report
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *AnalysisService) saveTempFile(file multipart.File, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return err
	}
	return nil
}
