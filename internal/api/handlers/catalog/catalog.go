// Package catalog 提供型錄查詢端點：互動式搜尋與個人化推薦
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/search"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// Handler 型錄查詢處理程序
type Handler struct {
	svc   *mealplan.Service
	es    *search.Client
	cache *search.Cache
}

// NewHandler 創建型錄查詢處理程序
func NewHandler(svc *mealplan.Service, esClient *search.Client, cache *search.Cache) *Handler {
	return &Handler{svc: svc, es: esClient, cache: cache}
}

// HandleSearch 互動式搜尋：關鍵字、排除詞與營養範圍過濾
func (h *Handler) HandleSearch(c *gin.Context) {
	params := search.InteractiveParams{
		Query:       strings.TrimSpace(c.Query("q")),
		Exclude:     excludeTerms(c),
		MinProtein:  floatQuery(c, "min_protein"),
		MinCalories: floatQuery(c, "min_calories"),
		MaxCalories: floatQuery(c, "max_calories"),
		MaxCarbs:    floatQuery(c, "max_carbs"),
		MaxFat:      floatQuery(c, "max_fat"),
		MaxSugar:    floatQuery(c, "max_sugar"),
	}
	size := sizeQuery(c, defaultSearchSize)

	// 相同查詢條件直接走快取，命中與未命中由快取層記錄
	cacheKey := search.Key("search", c.Request.URL.RawQuery)
	if cached, ok := h.cache.Get(cacheKey); ok {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	body := search.InteractiveQuery(params)
	body["size"] = size

	sources, err := h.es.Search(c.Request.Context(), body)
	if err != nil {
		common.LogError("型錄搜尋失敗",
			zap.String("query", params.Query),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	payload, err := json.Marshal(gin.H{
		"results": sources,
		"count":   len(sources),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Set(cacheKey, payload)
	c.Data(http.StatusOK, "application/json", payload)
}

// HandleRecommendations 依使用者營養目標推薦食譜
func (h *Handler) HandleRecommendations(c *gin.Context) {
	uid := c.Param("uid")
	size := sizeQuery(c, mealplan.DefaultRecommendationSize)

	recipes, err := h.svc.Recommend(c.Request.Context(), uid, size)
	if err != nil {
		common.LogWarn("推薦生成失敗",
			zap.String("uid", uid),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recipes,
		"count":           len(recipes),
	})
}

// excludeTerms 收集排除詞：支援重複參數與逗號分隔
func excludeTerms(c *gin.Context) []string {
	var terms []string
	for _, raw := range c.QueryArray("exclude") {
		for _, term := range strings.Split(raw, ",") {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
	}
	return terms
}

func floatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func sizeQuery(c *gin.Context, def int) int {
	raw := c.Query("size")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxSearchSize {
		return maxSearchSize
	}
	return n
}

func respondError(c *gin.Context, err error) {
	var custom *common.CustomError
	if errors.As(err, &custom) {
		c.JSON(custom.Status, common.ErrorResponse{
			Code:    custom.Code,
			Message: custom.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "internal server error",
	})
}
