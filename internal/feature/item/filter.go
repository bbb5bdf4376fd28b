package item

import (
	"strconv"
	"strings"

	"secondchance/internal/domain"
)

// ParseFilter 把 /search 的查询参数转成过滤条件，空参数不参与过滤
func ParseFilter(name, category, condition, ageYears string) (domain.ItemFilter, error) {
	f := domain.ItemFilter{
		Name:      strings.TrimSpace(name),
		Category:  category,
		Condition: condition,
	}
	// age_years 按小数解析（0.5 表示半年内），与存储的一位小数 age_years 比较
	if s := strings.TrimSpace(ageYears); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			var ve domain.ValidationError
			ve.Add("age_years", "must be a number")
			return f, ve.Err()
		}
		f.MaxAgeYears = &v
	}
	return f, nil
}
