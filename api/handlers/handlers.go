package handlers

import (
    "github.com/wxmine/qr-analyzer/internal/service/analysis"
    "github.com/wxmine/qr-analyzer/pkg/logger"
)

// Handlers 聚合所有HTTP处理器
type Handlers struct {
    Analysis *AnalysisHandler
}

func NewHandlers(service analysis.Service, logger logger.Logger) *Handlers {
    return &Handlers{
        Analysis: NewAnalysisHandler(service, logger),
    }
}
