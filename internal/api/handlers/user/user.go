// Package user 提供使用者文件與收藏端點
package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/api/middleware"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/store"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// Handler 使用者處理程序
type Handler struct {
	users     *store.UserStore
	favorites *store.FavoriteStore
}

// NewHandler 創建使用者處理程序
func NewHandler(users *store.UserStore, favorites *store.FavoriteStore) *Handler {
	return &Handler{users: users, favorites: favorites}
}

// HandleGetUser 取得整份使用者文件
func (h *Handler) HandleGetUser(c *gin.Context) {
	uid := c.Param("uid")

	doc, err := h.users.GetUserDoc(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleListFavorites 列出使用者收藏
func (h *Handler) HandleListFavorites(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	favorites, err := h.favorites.ListFavorites(c.Request.Context(), uid)
	if err != nil {
		common.LogError("收藏列表讀取失敗",
			zap.String("uid", uid),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// HandleAddFavorite 新增收藏，原始記錄原樣保存
func (h *Handler) HandleAddFavorite(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	var record map[string]interface{}
	if err := c.ShouldBindJSON(&record); err != nil || len(record) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	id, err := h.favorites.AddFavorite(c.Request.Context(), uid, record)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("收藏新增完成",
		zap.String("uid", uid),
		zap.String("favorite_id", id),
	)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// HandleDeleteFavorite 刪除收藏，接受文件 ID 或來源網址
func (h *Handler) HandleDeleteFavorite(c *gin.Context) {
	uid := c.GetString(middleware.ContextUIDKey)

	id := c.Query("id")
	url := c.Query("url")
	if id == "" && url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id or url query parameter required"})
		return
	}

	var err error
	if id != "" {
		err = h.favorites.RemoveFavorite(c.Request.Context(), uid, id)
	} else {
		err = h.favorites.RemoveFavoriteByURL(c.Request.Context(), uid, url)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
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
