package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmed-mgd/gaga-recipes/internal/api"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/config"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/search"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/store"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	// 使用 logger 記錄啟動信息
	common.LogInfo("載入設定",
		zap.String("es_url", cfg.Elasticsearch.URL),
		zap.String("es_index", cfg.Elasticsearch.Index),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// 初始化文件庫連線
	redisClient, err := store.NewRedisClient(&cfg.Redis)
	if err != nil {
		common.LogFatal("Failed to connect to document store", zap.Error(err))
	}
	defer redisClient.Close()

	// 初始化搜尋引擎客戶端
	esClient := search.NewClient(&cfg.Elasticsearch)
	if err := esClient.Ping(context.Background()); err != nil {
		// 搜尋引擎暫時不可用仍可啟動，候選池會退回純收藏
		common.LogWarn("Search engine unreachable at startup", zap.Error(err))
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, redisClient, esClient)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
