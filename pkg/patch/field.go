// Package patch decodes partial JSON updates where every field is tri-state:
// absent, explicitly null, or set to a value.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Field[T any] struct {
	Set   bool // 请求中出现了该字段
	Null  bool // 显式为 null
	Value T
}

// Of 构造一个已赋值的字段
func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// HasValue 出现且不为 null
func (f Field[T]) HasValue() bool { return f.Set && !f.Null }

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// Object 已拆成字段的原始 JSON 对象
type Object map[string]json.RawMessage

// ParseObject 空 body 视为空对象
func ParseObject(body []byte) (Object, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Object{}, nil
	}
	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("malformed JSON object: %w", err)
	}
	if obj == nil { // body 是 null
		obj = Object{}
	}
	return obj, nil
}

// Decode 把 name 对应的值解到 dst；字段缺失时 dst 保持未设置
func Decode[T any](obj Object, name string, dst *Field[T]) error {
	raw, ok := obj[name]
	if !ok {
		return nil
	}
	return dst.UnmarshalJSON(raw)
}
