package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/config"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// Cache 互動式搜尋結果的進程內快取
type Cache struct {
	config config.CacheConfig
	mu     sync.Mutex
	store  map[string]cacheEntry
	stats  cacheStats
}

// cacheEntry 快取條目
type cacheEntry struct {
	value       []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewCache 創建搜尋快取；設定關閉時回傳 nil，呼叫端以 nil 檢查略過
func NewCache(cfg config.CacheConfig) *Cache {
	if !cfg.Enabled {
		common.LogInfo("Search cache disabled")
		return nil
	}

	c := &Cache{
		config: cfg,
		store:  make(map[string]cacheEntry),
	}

	// 啟動清理過期條目的協程
	go c.startCleanup()

	common.LogInfo("搜尋快取已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)
	return c
}

// Key 以查詢條件各部分組出快取鍵
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Get 讀取快取值
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[key]
	if !exists {
		c.stats.misses++
		common.LogCacheMiss("search")
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.evictions++
		c.stats.misses++
		common.LogCacheMiss("search")
		return nil, false
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	c.store[key] = entry
	c.stats.hits++
	common.LogCacheHit("search")
	return entry.value, true
}

// Set 寫入快取值，容量滿時先清過期條目再做 LRU 淘汰
func (c *Cache) Set(key string, value []byte) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.config.MaxSize {
		c.cleanup()
		if len(c.store) >= c.config.MaxSize {
			c.evictLRU()
		}
	}

	now := time.Now()
	c.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(c.config.TTL),
		createdAt:  now,
		lastAccess: now,
	}
}

// startCleanup 啟動清理過期條目的協程
func (c *Cache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		count := c.cleanup()
		c.mu.Unlock()
		if count > 0 {
			common.LogInfo("搜尋快取清理完成",
				zap.Int("清理數量", count),
			)
		}
	}
}

// cleanup 清理過期條目，呼叫前必須持有鎖
func (c *Cache) cleanup() int {
	now := time.Now()
	count := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			count++
			c.stats.evictions++
		}
	}
	return count
}

// evictLRU 淘汰最少使用的條目，呼叫前必須持有鎖
func (c *Cache) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range c.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.evictions++
	}
}

// Stats 快取統計信息
func (c *Cache) Stats() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{"enabled": false}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.stats.hits + c.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(c.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"enabled":   true,
		"size":      len(c.store),
		"max_size":  c.config.MaxSize,
		"hits":      c.stats.hits,
		"misses":    c.stats.misses,
		"evictions": c.stats.evictions,
		"hit_ratio": hitRatio,
	}
}
