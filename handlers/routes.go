package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/metrics"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/notify"
	"github.com/yourusername/coinvest-api/services"
	"github.com/yourusername/coinvest-api/utils"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router is built from. Storage and
// Stellar may be nil.
type Dependencies struct {
	DB          *gorm.DB
	Config      *config.Config
	Log         *logrus.Logger
	Notifier    *notify.Notifier
	Storage     utils.ProofStorage
	Stellar     utils.StellarClientInterface
	RateLimiter *middleware.RateLimiter
	Investments *services.InvestmentService
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}
	// No origins configured means any origin; cors.New panics on an empty list.
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func SetupRoutes(deps Dependencies) *gin.Engine {
	RegisterValidators()

	cfg, db, log := deps.Config, deps.DB, deps.Log
	if deps.RateLimiter == nil {
		deps.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if deps.Investments == nil {
		deps.Investments = services.NewInvestmentService(db, log)
	}

	authHandler := NewAuthHandler(services.NewAuthService(db, cfg, deps.Notifier, log), cfg, log)
	planHandler := NewPlanHandler(services.NewPlanService(db), log)
	depositHandler := NewDepositHandler(services.NewDepositService(db, cfg, deps.Notifier, log), deps.Storage, deps.Stellar, cfg, log)
	investmentHandler := NewInvestmentHandler(deps.Investments, log)
	withdrawalHandler := NewWithdrawalHandler(services.NewWithdrawalService(db, cfg, deps.Stellar, deps.Notifier, log), log)
	accountHandler := NewAccountHandler(services.NewAccountService(db, log), services.NewReferralService(db), deps.Storage, log)
	supportHandler := NewSupportHandler(services.NewSupportService(db, log), log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "coinvest-api",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.Use(deps.RateLimiter.Handler())
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/signin", authHandler.SignIn)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	api.GET("/plans", planHandler.List)
	api.GET("/plans/:id", planHandler.Get)

	user := api.Group("")
	user.Use(middleware.JwtAuthMiddleware(cfg, db))
	{
		user.GET("/profile", authHandler.Profile)
		user.PUT("/profile", authHandler.UpdateProfile)
		user.GET("/dashboard", accountHandler.Dashboard)
		user.GET("/transactions", accountHandler.Transactions)
		user.GET("/referrals", accountHandler.Referrals)

		user.GET("/wallets", depositHandler.Wallets)
		user.POST("/deposits", depositHandler.Create)
		user.GET("/deposits", depositHandler.List)
		user.GET("/deposits/:id", depositHandler.Get)

		user.GET("/investments", investmentHandler.List)

		user.POST("/withdrawals", withdrawalHandler.Create)
		user.GET("/withdrawals", withdrawalHandler.List)

		user.POST("/conversations", supportHandler.Open)
		user.GET("/conversations", supportHandler.List)
		user.GET("/conversations/:id/messages", supportHandler.Messages)
		user.POST("/conversations/:id/messages", supportHandler.Post)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JwtAuthMiddleware(cfg, db), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/plans", planHandler.AdminList)
		admin.POST("/plans", planHandler.Create)
		admin.PUT("/plans/:id", planHandler.Update)

		admin.GET("/deposits", depositHandler.AdminList)
		admin.POST("/deposits/:id/approve", depositHandler.Approve)
		admin.POST("/deposits/:id/reject", depositHandler.Reject)
		admin.GET("/deposits/:id/verify", depositHandler.Verify)
		admin.GET("/deposits/:id/proof", depositHandler.Proof)

		admin.GET("/investments", investmentHandler.AdminList)
		admin.POST("/investments/:id/roi", investmentHandler.CreditROI)

		admin.GET("/withdrawals", withdrawalHandler.AdminList)
		admin.POST("/withdrawals/:id/approve", withdrawalHandler.Approve)
		admin.POST("/withdrawals/:id/reject", withdrawalHandler.Reject)
		admin.POST("/withdrawals/:id/complete", withdrawalHandler.Complete)

		admin.GET("/conversations", supportHandler.AdminList)
		admin.GET("/conversations/:id/messages", supportHandler.Messages)
		admin.POST("/conversations/:id/messages", supportHandler.Post)
		admin.POST("/conversations/:id/close", supportHandler.Close)

		admin.GET("/users", accountHandler.ListUsers)
		admin.GET("/users/:id", accountHandler.GetUser)
		admin.GET("/admins", accountHandler.ListAdmins)
		admin.POST("/admins", accountHandler.SetAdmin)
		admin.GET("/stats", accountHandler.Stats)
	}

	return router
}
