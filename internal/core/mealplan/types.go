package mealplan

// Days 菜單固定的七天順序（週一開始）
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Meals 每天固定的三餐順序
var Meals = []string{"Breakfast", "Lunch", "Dinner"}

const (
	// MealsPerDay 每日餐數
	MealsPerDay = 3
	// PlanSlots 整週菜單格數（7 天 × 3 餐）
	PlanSlots = 21
)

// Recipe 標準食譜格式，收藏庫與型錄的記錄都會正規化成這個形狀
type Recipe struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Image        string   `json:"image"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	CookTime     string   `json:"cookTime"`
	Servings     int      `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
}

// PlanGrid 菜單格：日期 → 餐別 → 食譜（nil 代表空格）
type PlanGrid map[string]map[string]*Recipe

// PlanDocument 儲存在文件庫裡的整份菜單
type PlanDocument struct {
	WeekStart string   `json:"week_start"`
	Plan      PlanGrid `json:"plan"`
}

// Profile 使用者偏好檔；Attrs 為人口統計屬性，核心不解讀
type Profile struct {
	UID    string
	Macros map[string]interface{}
	Attrs  map[string]interface{}
}

// SlotTargets 單餐營養目標
type SlotTargets struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// NewEmptyGrid 建立 21 格全空的菜單格
func NewEmptyGrid() PlanGrid {
	grid := make(PlanGrid, len(Days))
	for _, day := range Days {
		grid[day] = emptyDay()
	}
	return grid
}

func emptyDay() map[string]*Recipe {
	block := make(map[string]*Recipe, len(Meals))
	for _, meal := range Meals {
		block[meal] = nil
	}
	return block
}
