// Package search 封裝型錄搜尋引擎（Elasticsearch）。
// 查詢 DSL 在這裡組好送出，排序機制對核心而言是黑盒評分函數。
package search

import (
	"strings"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
)

// AllergenMap 過敏原 → 食材關鍵字展開表；不在表內的排除詞視為字面食材
var AllergenMap = map[string][]string{
	"dairy":     {"milk", "cheese", "cream", "butter", "yogurt", "whey", "ghee"},
	"nuts":      {"peanut", "almond", "walnut", "cashew", "pecan", "hazelnut", "pistachio", "macadamia"},
	"shellfish": {"shrimp", "crab", "lobster", "clam", "mussel", "oyster", "scallop"},
}

// InteractiveParams 互動式搜尋的條件
type InteractiveParams struct {
	Query       string   // 全文關鍵字，空值表示全部
	Exclude     []string // 過敏原類別或字面食材排除詞
	MinProtein  *float64
	MinCalories *float64
	MaxCalories *float64
	MaxCarbs    *float64
	MaxFat      *float64
	MaxSugar    *float64
}

// InteractiveQuery 組互動式搜尋查詢：模糊全文比對 + 排除子句 + 數值範圍過濾，
// 三者以 bool 查詢做交集
func InteractiveQuery(p InteractiveParams) map[string]interface{} {
	var must []interface{}
	if p.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     p.Query,
				"fields":    []string{"name", "ingredients"},
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	mustNot := make([]interface{}, 0)
	for _, token := range p.Exclude {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		terms, ok := AllergenMap[token]
		if !ok {
			terms = []string{token}
		}
		for _, term := range terms {
			mustNot = append(mustNot, map[string]interface{}{
				"match": map[string]interface{}{"ingredients": term},
			})
		}
	}

	filters := make([]interface{}, 0)
	if p.MinProtein != nil {
		filters = append(filters, rangeFilter("protein_grams", map[string]interface{}{"gte": *p.MinProtein}))
	}
	calories := map[string]interface{}{}
	if p.MinCalories != nil {
		calories["gte"] = *p.MinCalories
	}
	if p.MaxCalories != nil {
		calories["lte"] = *p.MaxCalories
	}
	if len(calories) > 0 {
		filters = append(filters, rangeFilter("calories", calories))
	}
	if p.MaxCarbs != nil {
		filters = append(filters, rangeFilter("carbs_grams", map[string]interface{}{"lte": *p.MaxCarbs}))
	}
	if p.MaxFat != nil {
		filters = append(filters, rangeFilter("fat_grams", map[string]interface{}{"lte": *p.MaxFat}))
	}
	if p.MaxSugar != nil {
		filters = append(filters, rangeFilter("sugar_grams", map[string]interface{}{"lte": *p.MaxSugar}))
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":     must,
				"filter":   filters,
				"must_not": mustNot,
			},
		},
	}
}

// TargetProximityQuery 組目標鄰近度查詢：每個營養欄位一條 gauss 衰減函數，
// 目標值附近一小段容許帶內滿分，越遠分數越低；四個分數相乘而非相加，
// 一個欄位偏太遠整體分數就會被拉下去。
func TargetProximityQuery(t mealplan.SlotTargets, size int) map[string]interface{} {
	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{"match_all": map[string]interface{}{}},
				"functions": []interface{}{
					gaussDecay("calories", t.Calories, 50, 100),
					gaussDecay("protein_grams", t.Protein, 5, 10),
					gaussDecay("carbs_grams", t.Carbs, 10, 20),
					gaussDecay("fat_grams", t.Fat, 5, 10),
				},
				"score_mode": "multiply",
				"boost_mode": "multiply",
			},
		},
	}
}

func gaussDecay(field string, origin, offset, scale float64) map[string]interface{} {
	return map[string]interface{}{
		"gauss": map[string]interface{}{
			field: map[string]interface{}{
				"origin": origin,
				"offset": offset,
				"scale":  scale,
			},
		},
	}
}

func rangeFilter(field string, bounds map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{field: bounds},
	}
}
