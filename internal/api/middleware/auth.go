package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// ContextUIDKey 驗證通過後使用者 ID 放置的 context 鍵
const ContextUIDKey = "uid"

// Auth 驗證 Bearer JWT 並將使用者 ID 寫入 context。
// 優先讀 uid claim，沒有再讀標準的 sub。
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			common.LogWarn("憑證驗證失敗",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		uid, _ := claims["uid"].(string)
		if uid == "" {
			uid, _ = claims["sub"].(string)
		}
		if uid == "" {
			abortUnauthorized(c, "token missing subject")
			return
		}

		c.Set(ContextUIDKey, uid)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  common.ErrCodeUnauthorized,
	})
}
