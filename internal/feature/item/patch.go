package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"secondchance/internal/domain"
	"secondchance/pkg/patch"
)

type fieldString = patch.Field[string]

var errNullAgeDays = errors.New("age_days cannot be null")

// ItemPatch PUT /items/:id 可修改的字段
type ItemPatch struct {
	Category    patch.Field[string]
	Condition   patch.Field[string]
	Description patch.Field[string]
	AgeDays     patch.Field[int]
}

func ParseItemPatch(body []byte) (ItemPatch, error) {
	var p ItemPatch
	var ve domain.ValidationError
	obj, err := patch.ParseObject(body)
	if err != nil {
		ve.Add("body", "must be a JSON object")
		return p, ve.Err()
	}
	for _, f := range []struct {
		name string
		dst  *patch.Field[string]
	}{
		{"category", &p.Category},
		{"condition", &p.Condition},
		{"description", &p.Description},
	} {
		if err := patch.Decode(obj, f.name, f.dst); err != nil {
			ve.Add(f.name, "must be a string")
		}
	}
	if raw, ok := obj["age_days"]; ok {
		days, err := parseAgeDays(raw)
		if err != nil {
			ve.Add("age_days", "must be a non-negative integer")
		} else {
			p.AgeDays = patch.Of(days)
		}
	}
	return p, ve.Err()
}

// parseAgeDays 接受数字或数字字符串（表单提交的旧客户端）
func parseAgeDays(raw json.RawMessage) (int, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, errNullAgeDays
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		if n, err = strconv.Atoi(strings.TrimSpace(s)); err != nil {
			return 0, err
		}
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
