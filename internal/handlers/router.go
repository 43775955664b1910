package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	requestHandler  *RequestHandler
	schoolHandler   *SchoolHandler
	userHandler     *UserHandler
	materialHandler *MaterialHandler
	stockHandler    *StockHandler
	syncHandler     *SyncHandler
	exportHandler   *ExportHandler

	authService services.AuthService
}

func NewHandlerManager(serviceManager services.ServiceManager, v *validator.Validator, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), v, logger),
		requestHandler:  NewRequestHandler(serviceManager.Requests(), serviceManager.Auth(), v, logger),
		schoolHandler:   NewSchoolHandler(serviceManager.Schools(), logger),
		userHandler:     NewUserHandler(serviceManager.Users(), logger),
		materialHandler: NewMaterialHandler(serviceManager.Materials(), logger),
		stockHandler:    NewStockHandler(serviceManager.Stock(), logger),
		syncHandler:     NewSyncHandler(serviceManager.Sync(), logger),
		exportHandler:   NewExportHandler(serviceManager.Export(), logger),
		authService:     serviceManager.Auth(),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Login is the only unauthenticated endpoint.
	v1.POST("/auth/login", hm.authHandler.Login)

	authed := v1.Group("")
	authed.Use(SessionAuthMiddleware(hm.authService))
	{
		authed.POST("/auth/logout", hm.authHandler.Logout)
		authed.GET("/auth/me", hm.authHandler.Me)

		requests := authed.Group("/requests")
		{
			requests.GET("", hm.requestHandler.ListRequests)
			requests.POST("", hm.requestHandler.SubmitRequests)
			requests.PUT("", hm.requestHandler.SaveEdits)
			requests.PUT("/status", RequireAdminMiddleware(), hm.requestHandler.UpdateStatus)
			requests.DELETE("", hm.requestHandler.DeleteRequests)
			requests.GET("/export", RequireAdminMiddleware(), hm.exportHandler.ExportRequests)
		}

		schools := authed.Group("/schools")
		{
			schools.GET("", hm.schoolHandler.ListSchools)
			schools.PUT("", RequireAdminMiddleware(), hm.schoolHandler.SaveSchools)
			schools.DELETE("", RequireAdminMiddleware(), hm.schoolHandler.DeleteSchools)
		}

		users := authed.Group("/users")
		users.Use(RequireAdminMiddleware())
		{
			users.GET("", hm.userHandler.ListUsers)
			users.PUT("", hm.userHandler.SaveUsers)
			users.DELETE("", hm.userHandler.DeleteUsers)
		}

		materials := authed.Group("/materials")
		{
			materials.GET("", hm.materialHandler.ListMaterials)
			materials.GET("/categories", hm.materialHandler.ListCategories)
			materials.PUT("", RequireAdminMiddleware(), hm.materialHandler.SaveMaterials)
		}

		stock := authed.Group("/stock")
		{
			stock.GET("", hm.stockHandler.ListStock)
			stock.GET("/summary", hm.stockHandler.StockSummary)
			stock.PUT("", hm.stockHandler.SaveStock)
		}

		sync := authed.Group("/sync")
		sync.Use(RequireAdminMiddleware())
		{
			sync.POST("/push", hm.syncHandler.Push)
			sync.POST("/pull", hm.syncHandler.Pull)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "requests-service",
	})
}
