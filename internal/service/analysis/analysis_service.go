package analysis

import (
    "context"
    "mime/multipart"

    "github.com/wxmine/qr-analyzer/internal/models"
)

// Service is the boundary the HTTP layer talks to: hand over an uploaded PDF,
// get back one aggregate JSON-serializable report.
type Service interface {
    AnalyzeUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.AnalysisReport, error)
    AnalyzeBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.AnalysisReport, error)
}
