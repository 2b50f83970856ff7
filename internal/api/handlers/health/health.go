package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/config"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/search"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理程序，就緒檢查會實際探測兩個外部依賴
type Handler struct {
	cfg   *config.Config
	redis *redis.Client
	es    *search.Client
	cache *search.Cache
}

// NewHandler 創建健康檢查處理程序
func NewHandler(cfg *config.Config, redisClient *redis.Client, esClient *search.Client, cache *search.Cache) *Handler {
	return &Handler{
		cfg:   cfg,
		redis: redisClient,
		es:    esClient,
		cache: cache,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// 構建響應
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，文件庫或搜尋引擎任一不可用即回 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		checks["document_store"] = err.Error()
		ready = false
	} else {
		checks["document_store"] = "ok"
	}

	if err := h.es.Ping(c.Request.Context()); err != nil {
		checks["search_engine"] = err.Error()
		ready = false
	} else {
		checks["search_engine"] = "ok"
	}

	if !ready {
		common.LogWarn("就緒檢查失敗", zap.Any("checks", checks))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
