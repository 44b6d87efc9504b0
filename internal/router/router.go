package router

import (
	"net/http"

	"pms/internal/handlers"
	"pms/internal/middleware"
	"pms/internal/services"
	"pms/pkg/config"
	"pms/pkg/events"
	"pms/pkg/jwt"
	"pms/pkg/response"
	"pms/pkg/tokenstore"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies 路由所需的外部依赖
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Broker  events.Broker
	Revoked tokenstore.Store
	JWT     *jwt.JWTManager
	Log     *logrus.Logger
}

// SetupRouter 设置路由
func SetupRouter(deps Dependencies) *gin.Engine {
	// 校验错误使用JSON字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(services.JSONTagName)
	}

	router := gin.New()
	// 末尾斜杠可选，两种路径都直接注册
	router.RedirectTrailingSlash = false

	// 中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS(deps.Config.CORS))

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})

	registerRoutes(router, deps)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, deps Dependencies) {
	// 服务实例
	contactService := services.NewContactService(deps.DB, deps.Broker)
	unitService := services.NewUnitService(deps.DB, deps.Broker)
	leaseService := services.NewLeaseService(deps.DB, deps.Broker)
	dashboardService := services.NewDashboardService(deps.DB)
	userService := services.NewUserService(deps.DB)
	apiKeyService := services.NewAPIKeyService(deps.DB)

	auth := middleware.NewAuthMiddleware(userService, apiKeyService, deps.JWT, deps.Revoked)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		systemHandler := handlers.NewSystemHandler(deps.DB)
		handle(api, http.MethodGet, "/health", systemHandler.Health)
		handle(api, http.MethodGet, "/ping", systemHandler.Ping)

		// 认证
		authHandler := handlers.NewAuthHandler(userService, deps.JWT, deps.Revoked)
		authGroup := api.Group("/auth")
		{
			handle(authGroup, http.MethodPost, "/login", authHandler.Login)
			handle(authGroup, http.MethodPost, "/refresh", authHandler.Refresh)
			handle(authGroup, http.MethodPost, "/logout", auth.RequireLogin(), authHandler.Logout)
			handle(authGroup, http.MethodGet, "/me", auth.RequireLogin(), authHandler.Me)
		}

		// 以下接口均需登录
		secured := api.Group("", auth.RequireLogin())

		// 联系人
		contactHandler := handlers.NewContactHandler(contactService)
		contacts := secured.Group("/contacts")
		{
			handle(contacts, http.MethodPost, "", contactHandler.Create)
			handle(contacts, http.MethodGet, "", contactHandler.List)
			handle(contacts, http.MethodGet, "/landlords", contactHandler.ListLandlords)
			handle(contacts, http.MethodGet, "/tenants", contactHandler.ListTenants)
			handle(contacts, http.MethodGet, "/:id", contactHandler.GetByID)
			handle(contacts, http.MethodPut, "/:id", contactHandler.Update)
			handle(contacts, http.MethodPatch, "/:id", contactHandler.Update)
			handle(contacts, http.MethodDelete, "/:id", contactHandler.Delete)
		}

		// 单元
		unitHandler := handlers.NewUnitHandler(unitService)
		units := secured.Group("/units")
		{
			handle(units, http.MethodPost, "", unitHandler.Create)
			handle(units, http.MethodGet, "", unitHandler.List)
			handle(units, http.MethodGet, "/vacant", unitHandler.ListVacant)
			handle(units, http.MethodGet, "/occupied", unitHandler.ListOccupied)
			handle(units, http.MethodGet, "/:id", unitHandler.GetByID)
			handle(units, http.MethodPut, "/:id", unitHandler.Update)
			handle(units, http.MethodPatch, "/:id", unitHandler.Update)
			handle(units, http.MethodDelete, "/:id", unitHandler.Delete)
		}

		// 租约
		leaseHandler := handlers.NewLeaseHandler(leaseService)
		leases := secured.Group("/leases")
		{
			handle(leases, http.MethodPost, "", leaseHandler.Create)
			handle(leases, http.MethodGet, "", leaseHandler.List)
			handle(leases, http.MethodGet, "/:id", leaseHandler.GetByID)
			handle(leases, http.MethodPut, "/:id", leaseHandler.Update)
			handle(leases, http.MethodPatch, "/:id", leaseHandler.Update)
			handle(leases, http.MethodDelete, "/:id", leaseHandler.Delete)
			handle(leases, http.MethodPost, "/:id/terminate", leaseHandler.Terminate)
		}

		// 统计
		dashboardHandler := handlers.NewDashboardHandler(dashboardService)
		handle(secured, http.MethodGet, "/summary", dashboardHandler.Summary)
		handle(secured, http.MethodGet, "/dashboard", dashboardHandler.Dashboard)

		// 实时推送（浏览器WebSocket无法设置请求头，允许查询参数认证）
		wsHandler := handlers.NewWebSocketHandler(dashboardService, deps.Broker, deps.Config.CORS.AllowOrigins, deps.Log)
		handle(api, http.MethodGet, "/dashboard/stream", auth.RequireStreamLogin(), wsHandler.DashboardStream)

		// 用户管理（仅超级管理员）
		userHandler := handlers.NewUserHandler(userService)
		users := secured.Group("/users", auth.RequireSuperuser())
		{
			handle(users, http.MethodPost, "", userHandler.Create)
			handle(users, http.MethodGet, "", userHandler.GetAll)
			handle(users, http.MethodGet, "/:id", userHandler.GetByID)
			handle(users, http.MethodPost, "/:id/activate", userHandler.Activate)
			handle(users, http.MethodPost, "/:id/deactivate", userHandler.Deactivate)
			handle(users, http.MethodPost, "/:id/reset-password", userHandler.ResetPassword)
		}
		handle(secured, http.MethodGet, "/system/status", auth.RequireSuperuser(), systemHandler.Status)

		// API密钥管理（仅超级管理员）
		apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService)
		apiKeys := secured.Group("/api-keys", auth.RequireSuperuser())
		{
			handle(apiKeys, http.MethodPost, "", apiKeyHandler.Create)
			handle(apiKeys, http.MethodGet, "", apiKeyHandler.List)
			handle(apiKeys, http.MethodDelete, "/:id", apiKeyHandler.Revoke)
		}
	}
}

// handle 同时注册带和不带末尾斜杠的路径
func handle(group *gin.RouterGroup, method, path string, chain ...gin.HandlerFunc) {
	group.Handle(method, path, chain...)
	group.Handle(method, path+"/", chain...)
}
