package handlers

import (
    "encoding/json"
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/wxmine/qr-analyzer/internal/models"
    "github.com/wxmine/qr-analyzer/internal/service/analysis"
    "github.com/wxmine/qr-analyzer/pkg/logger"
)

type AnalysisHandler struct {
    service analysis.Service
    logger  logger.Logger
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
    Error string `json:"error"`
}

func NewAnalysisHandler(service analysis.Service, logger logger.Logger) *AnalysisHandler {
    return &AnalysisHandler{
        service: service,
        logger:  logger,
    }
}

// Analyze 处理单个PDF上传并内联返回分析结果
func (h *AnalysisHandler) Analyze(c *gin.Context) {
    file, header, err := c.Request.FormFile("file")
    if err != nil {
        h.handleError(c, http.StatusBadRequest, "没有选择文件", err)
        return
    }
    defer file.Close()

    report, err := h.service.AnalyzeUpload(c.Request.Context(), file, header)
    if err != nil {
        h.handleError(c, http.StatusBadRequest, "不支持的文件，请上传PDF文件", err)
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "success": true,
        "results": h.serializable(report),
    })
}

// AnalyzeBatch 批量分析多个PDF
func (h *AnalysisHandler) AnalyzeBatch(c *gin.Context) {
    form, err := c.MultipartForm()
    if err != nil {
        h.handleError(c, http.StatusBadRequest, "Invalid form data", err)
        return
    }

    files := form.File["files"]
    if len(files) == 0 {
        h.handleError(c, http.StatusBadRequest, "No files provided", nil)
        return
    }

    reports, err := h.service.AnalyzeBatch(c.Request.Context(), files)
    if err != nil {
        h.handleError(c, http.StatusBadRequest, "Failed to analyze files", err)
        return
    }

    safe := make([]*models.AnalysisReport, len(reports))
    for i, report := range reports {
        safe[i] = h.serializable(report)
    }

    c.JSON(http.StatusOK, gin.H{
        "success": true,
        "results": safe,
    })
}

// Health 健康检查
func (h *AnalysisHandler) Health(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// serializable verifies the report marshals cleanly; if not, it substitutes a
// minimal safe report so the response path never fails at encoding time.
func (h *AnalysisHandler) serializable(report *models.AnalysisReport) *models.AnalysisReport {
    if _, err := json.Marshal(report); err != nil {
        h.logger.Error("分析结果序列化失败", logger.Error(err))
        return report.SafeCopy("JSON序列化错误，返回简化结果")
    }
    return report
}

// handleError 统一错误处理
func (h *AnalysisHandler) handleError(c *gin.Context, status int, message string, err error) {
    h.logger.Error(message,
        logger.String("path", c.Request.URL.Path),
        logger.Error(err),
    )

    response := ErrorResponse{Error: message}
    if err != nil {
        response.Error = message + ": " + err.Error()
    }

    c.JSON(status, response)
}
