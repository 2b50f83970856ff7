// Package macro 依使用者人口統計資料計算每日營養目標。
// 計算結果寫入偏好檔後即為菜單推薦的輸入，核心不再回頭解讀人口統計欄位。
package macro

import (
	"math"
	"strings"
)

// Input 計算每日營養目標所需的使用者資料
type Input struct {
	Age           float64 `json:"age" binding:"required"`
	Gender        string  `json:"gender" binding:"required"`
	Height        float64 `json:"height" binding:"required"` // 公分
	Weight        float64 `json:"weight" binding:"required"` // 公斤
	ActivityLevel string  `json:"activityLevel"`
	Goal          string  `json:"goal"` // lose / maintain / gain
}

// Macros 每日營養目標
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// 活動量係數
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// Calculate 以 Mifflin-St Jeor 公式估 BMR，乘上活動量係數後依目標增減熱量，
// 再以 30/45/25 的熱量比例拆成蛋白質、碳水、脂肪克數
func Calculate(in Input) Macros {
	var bmr float64
	if strings.EqualFold(in.Gender, "male") {
		bmr = 10*in.Weight + 6.25*in.Height - 5*in.Age + 5
	} else {
		bmr = 10*in.Weight + 6.25*in.Height - 5*in.Age - 161
	}

	multiplier, ok := activityMultipliers[strings.ToLower(in.ActivityLevel)]
	if !ok {
		multiplier = activityMultipliers["sedentary"]
	}
	calories := bmr * multiplier

	switch strings.ToLower(in.Goal) {
	case "lose":
		calories -= 300
	case "gain":
		calories += 300
	}

	return Macros{
		Calories: math.Round(calories),
		Protein:  math.Round(calories * 0.3 / 4),
		Carbs:    math.Round(calories * 0.45 / 4),
		Fat:      math.Round(calories * 0.25 / 9),
	}
}
