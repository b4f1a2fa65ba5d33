package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/refdata-service/internal/services"
	"github.com/SAP-F-2025/refdata-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	importHandler *ImportHandler
	exportHandler *ExportHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		importHandler: NewImportHandler(serviceManager.Import(), logger),
		exportHandler: NewExportHandler(serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		admin := v1.Group("/admin", AdminMiddleware())
		{
			admin.POST("/import/:kind", hm.importHandler.Import)
			admin.GET("/import/jobs", hm.importHandler.ListJobs)
			admin.GET("/import/jobs/:id", hm.importHandler.GetJob)

			admin.POST("/export", hm.exportHandler.Export)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "refdata-service",
	})
}

// AdminMiddleware requires the caller identity forwarded by the gateway
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		c.Set(utils.ContextKeyUserID, userID)
		c.Next()
	}
}
