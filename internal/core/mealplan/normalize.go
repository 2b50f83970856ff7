package mealplan

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	ingredientSep  = regexp.MustCompile(`[,;\n\r]+`)
	lineSep        = regexp.MustCompile(`[\n\r]+`)
	sentenceSep    = regexp.MustCompile(`\.\s+`)
	numberedMarker = regexp.MustCompile(`\d+\.\s`)
)

// CanonicalID 以來源鍵（URL 或名稱）的 SHA-1 作為跨來源穩定 ID
func CanonicalID(source string) string {
	if source == "" {
		return ""
	}
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Normalize 將型錄或收藏庫的原始記錄正規化成標準食譜。
// 兩個來源的欄位命名不一致（protein vs protein_grams 等），這裡統一吸收。
// raw 為空時回傳 nil；explicitID 優先於由 url/name 推導的 ID。
func Normalize(raw map[string]interface{}, explicitID string) *Recipe {
	if len(raw) == 0 {
		return nil
	}

	id := explicitID
	if id == "" {
		source := firstString(raw, "url", "name")
		id = CanonicalID(source)
	}

	return &Recipe{
		ID:           id,
		Name:         stringValue(raw["name"]),
		Image:        firstString(raw, "img_src", "image", "image_url"),
		Calories:     floatValue(raw["calories"]),
		Protein:      firstFloat(raw, "protein_grams", "protein"),
		Carbs:        firstFloat(raw, "carbs_grams", "carbs"),
		Fat:          firstFloat(raw, "fat_grams", "fat"),
		CookTime:     firstString(raw, "cook_time", "total_time", "prep_time", "cookTime"),
		Servings:     servingsValue(raw),
		Ingredients:  splitIngredients(raw["ingredients"]),
		Instructions: splitInstructions(firstRaw(raw, "directions", "instructions")),
		Tags:         []string{},
	}
}

// firstRaw 回傳第一個非空值的原始欄位
func firstRaw(raw map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(raw map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return floatValue(v)
		}
	}
	return 0
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

// floatValue 寬鬆解析數值欄位：缺漏或無法解析一律視為 0
func floatValue(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// servingsValue 解析份量：servings 優先於 yield，解析失敗回 1，不會失敗
func servingsValue(raw map[string]interface{}) int {
	v := firstRaw(raw, "servings", "yield")
	switch n := v.(type) {
	case nil:
		return 1
	case float64:
		if n <= 0 {
			return 1
		}
		return int(n)
	case int:
		if n <= 0 {
			return 1
		}
		return n
	case json.Number:
		f, err := n.Float64()
		if err != nil || f <= 0 {
			return 1
		}
		return int(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || f <= 0 {
			return 1
		}
		return int(f)
	default:
		return 1
	}
}

// splitIngredients 食材欄位可能是清單或一整串文字；文字以逗號、分號、換行切開
func splitIngredients(v interface{}) []string {
	if items, ok := listValue(v); ok {
		return items
	}
	s, ok := v.(string)
	if !ok {
		return []string{}
	}
	return trimSegments(ingredientSep.Split(s, -1))
}

// splitInstructions 依序嘗試三種切法：換行、句號、編號清單，
// 取第一個切出多段的結果；全都失敗就保留單段。
func splitInstructions(v interface{}) []string {
	if items, ok := listValue(v); ok {
		return items
	}
	s, ok := v.(string)
	if !ok {
		return []string{}
	}

	segments := trimSegments(lineSep.Split(s, -1))
	if len(segments) <= 1 {
		segments = trimSegments(sentenceSep.Split(s, -1))
	}
	if len(segments) <= 1 {
		segments = trimSegments(splitBeforeNumbering(s))
	}
	return segments
}

// splitBeforeNumbering 在每個「<數字>. 」標記前切開（"1. Mix 2. Bake" 這類格式）
func splitBeforeNumbering(s string) []string {
	marks := numberedMarker.FindAllStringIndex(s, -1)
	if len(marks) == 0 {
		return []string{s}
	}
	var segments []string
	prev := 0
	for _, m := range marks {
		if m[0] > prev {
			segments = append(segments, s[prev:m[0]])
		}
		prev = m[0]
	}
	segments = append(segments, s[prev:])
	return segments
}

func listValue(v interface{}) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		out := make([]string, len(items))
		copy(out, items)
		return out, true
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func trimSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
