package routes

import (
    "github.com/gin-gonic/gin"

    "github.com/wxmine/qr-analyzer/api/handlers"
    "github.com/wxmine/qr-analyzer/api/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
    // 全局中间件
    r.Use(middleware.CORS())

    // 健康检查
    r.GET("/health", h.Analysis.Health)

    // API 版本组
    v1 := r.Group("/api/v1")
    {
        v1.POST("/analyze", h.Analysis.Analyze)
        v1.POST("/analyze/batch", h.Analysis.AnalyzeBatch)
    }
}
