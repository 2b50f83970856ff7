package mealplan

import "time"

// CurrentWeekStart 回傳 t 所在週的週一日期（伺服器當地時區，ISO 格式）。
// 儲存的菜單只要 week_start 字串不等於本週的值就視為過期。
func CurrentWeekStart(t time.Time) string {
	// time.Weekday 以週日為 0，換算成週一為 0
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return monday.Format("2006-01-02")
}
