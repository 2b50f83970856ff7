package mealplan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// 每日營養目標預設值，缺漏欄位以此補齊
const (
	DefaultDailyCalories = 2000
	DefaultDailyProtein  = 50
	DefaultDailyCarbs    = 300
	DefaultDailyFat      = 70
)

// PerSlotTargets 將每日營養目標換算成單餐目標。
// 缺漏欄位補預設值；存在但無法解析的數值屬於上游資料問題，回傳錯誤而非靜默補值。
func PerSlotTargets(macros map[string]interface{}, slotsPerDay int) (SlotTargets, error) {
	if slotsPerDay <= 0 {
		slotsPerDay = MealsPerDay
	}

	calories, err := macroValue(macros, "calories", DefaultDailyCalories)
	if err != nil {
		return SlotTargets{}, err
	}
	protein, err := macroValue(macros, "protein", DefaultDailyProtein)
	if err != nil {
		return SlotTargets{}, err
	}
	carbs, err := macroValue(macros, "carbs", DefaultDailyCarbs)
	if err != nil {
		return SlotTargets{}, err
	}
	fat, err := macroValue(macros, "fat", DefaultDailyFat)
	if err != nil {
		return SlotTargets{}, err
	}

	n := float64(slotsPerDay)
	return SlotTargets{
		Calories: calories / n,
		Protein:  protein / n,
		Carbs:    carbs / n,
		Fat:      fat / n,
	}, nil
}

func macroValue(macros map[string]interface{}, key string, def float64) (float64, error) {
	if macros == nil {
		return def, nil
	}
	v, ok := macros[key]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err == nil {
			return f, nil
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, common.WrapError(common.ErrInvalidMacro, fmt.Errorf("macro %q has unparseable value %v", key, v))
}
