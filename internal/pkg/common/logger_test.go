package common

import (
	"testing"

	"go.uber.org/zap"
)

// 核心的降級路徑會在 logger 初始化之前記 warn，
// 這些進入點在任何狀態下都不可以 panic
func TestLogHelpersSafeWithoutInit(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	t.Run("default logger is usable", func(t *testing.T) {
		if Logger == nil {
			t.Fatal("package default logger must not be nil")
		}
		LogWarn("型錄搜尋失敗，僅以收藏組菜單", zap.Int("needed", 21))
	})

	t.Run("nil logger is a no-op", func(t *testing.T) {
		Logger = nil
		LogInfo("msg")
		LogWarn("msg")
		LogError("msg")
		LogDebug("msg")
		LogCacheHit("search")
		LogCacheMiss("search")
		Sync()
	})
}
