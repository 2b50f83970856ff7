// Package macro 提供每日營養目標計算端點
package macro

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/api/middleware"
	macrocore "github.com/ahmed-mgd/gaga-recipes/internal/core/macro"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/store"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// Handler 營養目標處理程序
type Handler struct {
	users *store.UserStore
}

// NewHandler 創建營養目標處理程序
func NewHandler(users *store.UserStore) *Handler {
	return &Handler{users: users}
}

// HandleCalculate 依身體數據計算每日營養目標並寫回使用者文件
func (h *Handler) HandleCalculate(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	var req macrocore.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.String("uid", uid),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result := macrocore.Calculate(req)

	macros := map[string]interface{}{
		"calories": result.Calories,
		"protein":  result.Protein,
		"carbs":    result.Carbs,
		"fat":      result.Fat,
	}
	if err := h.users.SetMacros(c.Request.Context(), uid, macros); err != nil {
		common.LogError("營養目標寫入失敗",
			zap.String("uid", uid),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	common.LogInfo("營養目標計算完成",
		zap.String("uid", uid),
		zap.Float64("calories", result.Calories),
	)
	c.JSON(http.StatusOK, result)
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
