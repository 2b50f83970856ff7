package api

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/ahmed-mgd/gaga-recipes/internal/api/handlers/catalog"
	"github.com/ahmed-mgd/gaga-recipes/internal/api/handlers/health"
	macroHandler "github.com/ahmed-mgd/gaga-recipes/internal/api/handlers/macro"
	planHandler "github.com/ahmed-mgd/gaga-recipes/internal/api/handlers/mealplan"
	userHandler "github.com/ahmed-mgd/gaga-recipes/internal/api/handlers/user"
	"github.com/ahmed-mgd/gaga-recipes/internal/api/middleware"
	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/config"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/search"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/store"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, redisClient *redis.Client, esClient *search.Client) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
		}
	})

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("es_index", cfg.Elasticsearch.Index),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化儲存層與服務
	userStore := store.NewUserStore(redisClient)
	favoriteStore := store.NewFavoriteStore(redisClient)
	planStore := store.NewPlanStore(redisClient)
	searchCache := search.NewCache(cfg.Cache)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	planSvc := mealplan.NewService(userStore, favoriteStore, esClient, planStore, rng)

	// 初始化處理程序
	healthHandlers := health.NewHandler(cfg, redisClient, esClient, searchCache)
	catalogHandlers := catalog.NewHandler(planSvc, esClient, searchCache)
	planHandlers := planHandler.NewHandler(planSvc)
	userHandlers := userHandler.NewHandler(userStore, favoriteStore)
	macroHandlers := macroHandler.NewHandler(userStore)

	// 健康檢查路由
	router.GET("/health", healthHandlers.HealthCheck)
	router.GET("/ready", healthHandlers.ReadinessCheck)
	router.GET("/live", healthHandlers.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		// 公開路由
		api.GET("/search", catalogHandlers.HandleSearch)
		api.GET("/recommendations/:uid", catalogHandlers.HandleRecommendations)
		api.GET("/users/:uid", userHandlers.HandleGetUser)

		// 需驗證的使用者路由
		authed := api.Group("", middleware.Auth(cfg.Auth.JWTSecret))
		{
			authed.POST("/macros/calculate", macroHandlers.HandleCalculate)

			favoritesGroup := authed.Group("/favorites")
			{
				favoritesGroup.GET("", userHandlers.HandleListFavorites)
				favoritesGroup.POST("", userHandlers.HandleAddFavorite)
				favoritesGroup.DELETE("", userHandlers.HandleDeleteFavorite)
			}

			planGroup := authed.Group("/mealplan")
			{
				planGroup.GET("", planHandlers.HandleGetPlan)
				planGroup.POST("", planHandlers.HandleSavePlan)
				planGroup.POST("/generate", planHandlers.HandleGenerate)
				planGroup.POST("/add", planHandlers.HandleAddItem)
				planGroup.POST("/delete", planHandlers.HandleDeleteItem)
				planGroup.POST("/replacements", planHandlers.HandleReplacements)
			}
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("cache_enabled", searchCache != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
