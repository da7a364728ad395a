package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Record 是一条以列名为键的记录。
type Record map[string]interface{}

// Clone 返回记录的浅拷贝。
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has 判断记录是否包含某个非空字段。
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// ID 返回记录的主键，不存在时返回 0。
func (r Record) ID() int64 {
	id, _ := r.Int64("id")
	return id
}

// String 以字符串形式读取字段，缺失时返回空串。
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 以整数形式读取字段。
func (r Record) Int64(key string) (int64, bool) {
	return toInt64(r[key])
}

// Float64 以浮点数形式读取字段。
func (r Record) Float64(key string) (float64, bool) {
	return toFloat64(r[key])
}

// Bool 以布尔形式读取字段。
func (r Record) Bool(key string) (bool, bool) {
	return toBool(r[key])
}

// Strings 以字符串切片形式读取字段。
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		// SQL 后端以 JSON 文本存储数组
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
		return []string{v}
	}
	return nil
}

// Matches 判断记录是否满足全部等值条件。
func (r Record) Matches(where []Eq) bool {
	for _, cond := range where {
		v, ok := r[cond.Field]
		if !ok || !ValuesEqual(v, cond.Value) {
			return false
		}
	}
	return true
}

// ValuesEqual 比较两个标量值，数字按数值比较，布尔值兼容字符串与 0/1。
func ValuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.(bool); ok {
		bb, ok := toBool(b)
		return ok && ab == bb
	}
	if bb, ok := b.(bool); ok {
		ab, ok := toBool(a)
		return ok && ab == bb
	}
	if isNumber(a) || isNumber(b) {
		af, aok := toFloat64(a)
		bf, bok := toFloat64(b)
		if aok && bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return true
	}
	return false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err == nil {
			return i, true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := toFloat64(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	if f, ok := toFloat64(v); ok {
		return f != 0, true
	}
	return false, false
}

// AsInt64 把任意标量转换为整数，供需要 id 的调用方使用。
func AsInt64(v interface{}) (int64, bool) {
	return toInt64(v)
}

// RecordOf 通过 JSON 往返把模型转换为 Record，数字保持为 json.Number。
func RecordOf(v interface{}) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeRecord 按 json 标签把 Record 解码进模型，允许字符串与数字、布尔之间的弱类型转换，
// 时间字段接受 RFC3339 字符串。
func DecodeRecord(r Record, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]interface{}(r))
}
