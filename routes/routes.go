package routes

import (
	"fmt"
	"net/http"

	"oficina-backend/config"
	"oficina-backend/controllers"
	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the router needs. Sender may be nil, in which case no
// customer messages are sent. Notifications is built from Sender when nil.
type Deps struct {
	DB            *gorm.DB
	Config        *config.Config
	Log           *zap.Logger
	Registry      *prometheus.Registry
	Metrics       *services.Metrics
	Sender        services.MessageSender
	Notifications *services.NotificationService
}

// NewNotifications builds the notification service from d's sender and
// configured origin numbers.
func NewNotifications(d Deps) *services.NotificationService {
	return services.NewNotificationService(d.DB, d.Log, d.Sender, services.Senders{
		SMSFrom:      d.Config.Twilio.FromNumber,
		WhatsAppFrom: d.Config.Twilio.WhatsAppNumber,
	}, d.Metrics)
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidations(v); err != nil {
			return nil, fmt.Errorf("register validations: %w", err)
		}
	}

	cfg := d.Config
	var issuer *utils.TokenIssuer
	if cfg.Auth.JWTSecret != "" {
		issuer = utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	}

	notifications := d.Notifications
	if notifications == nil {
		notifications = NewNotifications(d)
	}
	orders := services.NewWorkOrderService(d.DB, d.Log, d.Metrics, notifications)
	parts := services.NewPartService(d.DB)
	workshops := services.NewWorkshopService(d.DB)

	workshopController := controllers.NewWorkshopController(workshops, d.Log)
	customerController := controllers.NewCustomerController(services.NewCustomerService(d.DB), d.Log)
	vehicleController := controllers.NewVehicleController(services.NewVehicleService(d.DB), d.Log)
	serviceController := controllers.NewServiceController(services.NewCatalogService(d.DB), d.Log)
	partController := controllers.NewPartController(parts, d.Log)
	orderController := controllers.NewWorkOrderController(orders, services.NewOrderDocument(orders, workshops), d.Log)
	ledgerController := controllers.NewLedgerController(services.NewLedgerService(d.DB, d.Log), d.Log)
	dashboardController := controllers.NewDashboardController(services.NewDashboardService(d.DB, orders, parts), d.Log)
	userController := controllers.NewUserController(services.NewUserService(d.DB, d.Log, issuer), d.Log)
	notificationController := controllers.NewNotificationController(notifications, d.Log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(config.PerformanceLogger(d.Log, config.NewHTTPMetrics(d.Registry)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	r.POST("/login", userController.Login)

	api := r.Group("")
	if cfg.Auth.RequireToken {
		api.Use(utils.AuthMiddleware(issuer))
	}
	{
		// Workshop routes
		api.GET("/oficinas", workshopController.GetWorkshops)
		api.POST("/oficinas", workshopController.CreateWorkshop)
		api.GET("/oficinas/:id", workshopController.GetWorkshop)
		api.PUT("/oficinas/:id", workshopController.UpdateWorkshop)

		// Customer routes
		customers := api.Group("/clientes")
		{
			customers.GET("", customerController.GetCustomers)
			customers.POST("", customerController.CreateCustomer)
			customers.PUT("/:id", customerController.UpdateCustomer)
			customers.DELETE("/:id", customerController.DeleteCustomer)
		}

		vehicles := api.Group("/veiculos")
		{
			vehicles.GET("", vehicleController.GetVehicles)
			vehicles.POST("", vehicleController.CreateVehicle)
			vehicles.PUT("/:id", vehicleController.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleController.DeleteVehicle)
		}

		// Service routes; /servicos is the short listing for the order form
		servicesGroup := api.Group("/servicos")
		{
			servicesGroup.GET("", serviceController.GetServiceOptions)
			servicesGroup.GET("/list", serviceController.GetServices)
			servicesGroup.POST("/list", serviceController.CreateService)
			servicesGroup.PUT("/list/:id", serviceController.UpdateService)
			servicesGroup.DELETE("/list/:id", serviceController.DeleteService)
		}

		partRoutes := api.Group("/pecas")
		{
			partRoutes.GET("", partController.GetParts)
			partRoutes.POST("", partController.CreatePart)
			partRoutes.PUT("/:id", partController.UpdatePart)
			partRoutes.DELETE("/:id", partController.DeletePart)
		}

		// Work order routes
		orderRoutes := api.Group("/ordens-servico")
		{
			orderRoutes.GET("", orderController.GetWorkOrders)
			orderRoutes.POST("", orderController.CreateWorkOrder)
			orderRoutes.PUT("/:id", orderController.UpdateWorkOrder)
			orderRoutes.DELETE("/:id", orderController.DeleteWorkOrder)
			orderRoutes.GET("/:id/pdf", orderController.GetWorkOrderPDF)
		}

		ledger := api.Group("/financeiro")
		{
			ledger.GET("", ledgerController.GetEntries)
			ledger.POST("", ledgerController.CreateEntry)
			ledger.GET("/resumo", ledgerController.GetSummary)
			ledger.PUT("/:id", ledgerController.UpdateEntry)
			ledger.DELETE("/:id", ledgerController.DeleteEntry)
		}

		api.GET("/dashboard", dashboardController.GetDashboard)

		users := api.Group("/usuarios")
		{
			users.GET("", userController.GetUsers)
			users.POST("", userController.CreateUser)
			users.PUT("/:id", userController.UpdateUser)
			users.DELETE("/:id", userController.DeleteUser)
		}

		api.GET("/notificacoes/templates", notificationController.GetTemplate)
		api.PUT("/notificacoes/templates", notificationController.UpdateTemplate)
	}

	return r, nil
}
