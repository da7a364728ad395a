package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"campus-info-go/internal/model"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/log"
	"campus-info-go/pkg/tasks"
)

// FieldKind 决定字段值的校验与规范化方式。
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindStrings
	KindDate // YYYY-MM-DD
	KindTime // HH:MM，24 小时制
	KindDay  // 星期，规范化为首字母大写
)

// FieldSpec 描述一个可写字段。
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	Filter   bool     // 是否允许作为列表查询的过滤条件
	Enum     []string // 非空时值必须是其中之一（小写）
	Default  interface{}
}

// ResourceDef 描述一张话题表的字段与默认排序。
type ResourceDef struct {
	Table  string
	Fields []FieldSpec
	Less   func(a, b store.Record) bool
}

func (d ResourceDef) field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ChangePublisher 接收记录变更事件，供搜索索引等下游使用。
type ChangePublisher interface {
	Publish(ctx context.Context, task tasks.RecordChangeTask) error
}

// ResourceService 提供一张话题表的增删改查，删除为软删除。
type ResourceService interface {
	Table() string
	List(ctx context.Context, filters map[string]string, includeInactive bool) ([]store.Record, error)
	Get(ctx context.Context, id int64, includeInactive bool) (store.Record, error)
	Create(ctx context.Context, input map[string]interface{}, actorID int64) (store.Record, error)
	Update(ctx context.Context, id int64, input map[string]interface{}, actorID int64) (store.Record, error)
	Delete(ctx context.Context, id int64, actorID int64) error
}

type resourceService struct {
	def       ResourceDef
	flag      string
	store     store.RecordStore
	publisher ChangePublisher
	now       func() time.Time
}

// NewResourceService 为一张话题表创建服务。publisher 可以为 nil。
func NewResourceService(def ResourceDef, s store.RecordStore, publisher ChangePublisher) ResourceService {
	info, ok := model.LookupTable(def.Table)
	if !ok {
		panic("unknown table " + def.Table)
	}
	return &resourceService{def: def, flag: info.FlagField, store: s, publisher: publisher, now: time.Now}
}

func (s *resourceService) Table() string {
	return s.def.Table
}

// List 按过滤条件列出记录。未声明为过滤字段的参数会被忽略。
func (s *resourceService) List(ctx context.Context, filters map[string]string, includeInactive bool) ([]store.Record, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	where := make([]store.Eq, 0, len(filters)+1)
	for _, k := range keys {
		raw := strings.TrimSpace(filters[k])
		if raw == "" {
			continue
		}
		spec, ok := s.def.field(k)
		if !ok || !spec.Filter {
			log.Debugf("[%s] ignoring unsupported filter %q", s.def.Table, k)
			continue
		}
		v, err := normalizeValue(spec, raw)
		if err != nil {
			return nil, err
		}
		where = append(where, store.Eq{Field: k, Value: v})
	}
	if !includeInactive {
		where = append(where, store.Eq{Field: s.flag, Value: true})
	}

	rows, err := s.store.Find(ctx, s.def.Table, where...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.def.Table, err)
	}
	if s.def.Less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return s.def.Less(rows[i], rows[j]) })
	}
	return rows, nil
}

// Get 读取单条记录，软删除的记录只有 includeInactive 时可见。
func (s *resourceService) Get(ctx context.Context, id int64, includeInactive bool) (store.Record, error) {
	rows, err := s.store.Find(ctx, s.def.Table, store.Eq{Field: "id", Value: id})
	if err != nil {
		return nil, fmt.Errorf("get %s/%d: %w", s.def.Table, id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	if active, _ := rows[0].Bool(s.flag); !active && !includeInactive {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (s *resourceService) Create(ctx context.Context, input map[string]interface{}, actorID int64) (store.Record, error) {
	rec, err := s.validate(input, true)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Insert(ctx, s.def.Table, rec)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.def.Table, err)
	}
	s.publish(ctx, id, tasks.ActionCreate, actorID)
	return s.Get(ctx, id, true)
}

func (s *resourceService) Update(ctx context.Context, id int64, input map[string]interface{}, actorID int64) (store.Record, error) {
	rec, err := s.validate(input, false)
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	n, err := s.store.Update(ctx, s.def.Table, id, rec)
	if err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", s.def.Table, id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	s.publish(ctx, id, tasks.ActionUpdate, actorID)
	return s.Get(ctx, id, true)
}

// Delete 把标记字段置为 false，记录仍保留在存储中。
func (s *resourceService) Delete(ctx context.Context, id int64, actorID int64) error {
	n, err := s.store.Update(ctx, s.def.Table, id, store.Record{s.flag: false})
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", s.def.Table, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.publish(ctx, id, tasks.ActionDelete, actorID)
	return nil
}

func (s *resourceService) publish(ctx context.Context, id int64, action string, actorID int64) {
	if s.publisher == nil {
		return
	}
	task := tasks.RecordChangeTask{Table: s.def.Table, RecordID: id, Action: action, ActorID: actorID, OccurredAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, task); err != nil {
		log.Warnw("publish record change failed", "table", s.def.Table, "id", id, "action", action, "error", err)
	}
}

// validate 校验并规范化输入。create 为 true 时检查必填字段并填充默认值。
func (s *resourceService) validate(input map[string]interface{}, create bool) (store.Record, error) {
	out := make(store.Record, len(input))
	for k, v := range input {
		if k == s.flag {
			b, err := coerce(FieldSpec{Name: k, Kind: KindBool}, v)
			if err != nil {
				return nil, err
			}
			out[k] = b
			continue
		}
		spec, ok := s.def.field(k)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, k)
		}
		cv, err := coerce(spec, v)
		if err != nil {
			return nil, err
		}
		if cv == nil {
			if spec.Required {
				return nil, fmt.Errorf("%w: %s is required", ErrValidation, k)
			}
			continue
		}
		out[k] = cv
	}
	if create {
		for _, spec := range s.def.Fields {
			if out.Has(spec.Name) {
				continue
			}
			if spec.Default != nil {
				out[spec.Name] = spec.Default
			} else if spec.Required {
				return nil, fmt.Errorf("%w: %s is required", ErrValidation, spec.Name)
			}
		}
	}
	return out, nil
}

// coerce 把 JSON 解码得到的值转换为字段类型。空字符串与 null 返回 nil。
func coerce(spec FieldSpec, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch spec.Kind {
	case KindStrings:
		switch list := v.(type) {
		case []interface{}:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s must be a list of strings", ErrValidation, spec.Name)
				}
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out, nil
		case []string:
			return list, nil
		case string:
			var out []string
			for _, s := range strings.Split(list, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out, nil
		}
		return nil, fmt.Errorf("%w: %s must be a list of strings", ErrValidation, spec.Name)
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt, KindFloat:
		switch n := v.(type) {
		case float64, int, int64, json.Number:
			return normalizeValue(spec, fmt.Sprint(n))
		}
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s has invalid type", ErrValidation, spec.Name)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return normalizeValue(spec, s)
}

var dayNames = map[string]string{
	"monday": "Monday", "tuesday": "Tuesday", "wednesday": "Wednesday", "thursday": "Thursday",
	"friday": "Friday", "saturday": "Saturday", "sunday": "Sunday",
}

// normalizeValue 把字符串形式的值按字段类型解析，过滤参数与写入共用。
func normalizeValue(spec FieldSpec, raw string) (interface{}, error) {
	invalid := func(want string) error {
		return fmt.Errorf("%w: %s must be %s", ErrValidation, spec.Name, want)
	}
	switch spec.Kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalid("an integer")
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 {
			return nil, invalid("a non-negative number")
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid("true or false")
		}
		return b, nil
	case KindDate:
		if _, err := time.Parse(model.DateFormat, raw); err != nil {
			return nil, invalid("a date in YYYY-MM-DD format")
		}
		return raw, nil
	case KindTime:
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return nil, invalid("a time in HH:MM format")
		}
		return t.Format("15:04"), nil
	case KindDay:
		day, ok := dayNames[strings.ToLower(raw)]
		if !ok {
			return nil, invalid("a weekday name")
		}
		return day, nil
	case KindStrings:
		return []string{raw}, nil
	}
	if len(spec.Enum) > 0 {
		lower := strings.ToLower(raw)
		for _, e := range spec.Enum {
			if lower == e {
				return lower, nil
			}
		}
		return nil, invalid("one of " + strings.Join(spec.Enum, ", "))
	}
	return raw, nil
}
