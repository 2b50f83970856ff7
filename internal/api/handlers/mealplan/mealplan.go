// Package mealplan 提供週菜單端點：讀取、儲存、重建與逐格修改
package mealplan

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/api/middleware"
	plancore "github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// Handler 菜單處理程序
type Handler struct {
	svc *plancore.Service
}

// NewHandler 創建菜單處理程序
func NewHandler(svc *plancore.Service) *Handler {
	return &Handler{svc: svc}
}

// SlotRequest 指定菜單格位的請求
type SlotRequest struct {
	Day  string `json:"day" binding:"required"`
	Meal string `json:"meal" binding:"required"`
}

// AddItemRequest 寫入菜單格位的請求，item 為原始食譜記錄
type AddItemRequest struct {
	Day  string                 `json:"day" binding:"required"`
	Meal string                 `json:"meal" binding:"required"`
	Item map[string]interface{} `json:"item" binding:"required"`
}

// SavePlanRequest 整份菜單覆寫請求
type SavePlanRequest struct {
	Plan plancore.PlanGrid `json:"plan" binding:"required"`
}

// HandleGetPlan 取得當週菜單，過期時重新生成，不存在回 404
func (h *Handler) HandleGetPlan(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	doc, err := h.svc.CurrentPlan(c.Request.Context(), uid)
	if err != nil {
		common.LogWarn("取得菜單失敗",
			zap.String("uid", uid),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleSavePlan 覆寫整份菜單
func (h *Handler) HandleSavePlan(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.String("uid", uid),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	doc, err := h.svc.SavePlan(c.Request.Context(), uid, req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleGenerate 無視現況重建菜單並儲存
func (h *Handler) HandleGenerate(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	doc, err := h.svc.RegeneratePlan(c.Request.Context(), uid)
	if err != nil {
		common.LogWarn("菜單重建失敗",
			zap.String("uid", uid),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	common.LogInfo("菜單重建完成",
		zap.String("uid", uid),
		zap.String("week_start", doc.WeekStart),
	)
	c.JSON(http.StatusOK, doc)
}

// HandleAddItem 將食譜寫入指定格位，菜單不存在時自動建立
func (h *Handler) HandleAddItem(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	doc, err := h.svc.UpsertSlot(c.Request.Context(), uid, req.Day, req.Meal, req.Item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleDeleteItem 清空指定格位
func (h *Handler) HandleDeleteItem(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	doc, err := h.svc.ClearSlot(c.Request.Context(), uid, req.Day, req.Meal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleReplacements 為指定格位提供最多三個替換建議
func (h *Handler) HandleReplacements(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	suggestions, err := h.svc.SuggestReplacements(c.Request.Context(), uid, req.Day, req.Meal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
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
