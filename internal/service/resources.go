package service

import (
	"campus-info-go/internal/model"
	"campus-info-go/internal/store"
)

// 各话题表的字段定义与默认排序。
var (
	ScheduleResource = ResourceDef{
		Table: model.TableSchedules,
		Fields: []FieldSpec{
			{Name: "subject", Kind: KindString, Required: true, Filter: true},
			{Name: "course_code", Kind: KindString, Filter: true},
			{Name: "day", Kind: KindDay, Required: true, Filter: true},
			{Name: "start_time", Kind: KindTime, Required: true},
			{Name: "end_time", Kind: KindTime, Required: true},
			{Name: "room_number", Kind: KindString},
			{Name: "instructor", Kind: KindString, Filter: true},
			{Name: "department", Kind: KindString, Filter: true},
			{Name: "semester", Kind: KindInt, Filter: true},
		},
		Less: func(a, b store.Record) bool {
			da, db := dayOrder[a.String("day")], dayOrder[b.String("day")]
			if da != db {
				return da < db
			}
			return a.String("start_time") < b.String("start_time")
		},
	}

	MenuResource = ResourceDef{
		Table: model.TableMenus,
		Fields: []FieldSpec{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "description", Kind: KindString},
			{Name: "price", Kind: KindFloat, Required: true},
			{Name: "meal_type", Kind: KindString, Required: true, Filter: true, Enum: []string{"breakfast", "lunch", "dinner", "snack"}},
			{Name: "date", Kind: KindDate, Required: true, Filter: true},
			{Name: "is_vegetarian", Kind: KindBool, Filter: true, Default: false},
		},
		Less: func(a, b store.Record) bool {
			if a.String("date") != b.String("date") {
				return a.String("date") < b.String("date")
			}
			return mealOrder[a.String("meal_type")] < mealOrder[b.String("meal_type")]
		},
	}

	BusResource = ResourceDef{
		Table: model.TableBuses,
		Fields: []FieldSpec{
			{Name: "route_name", Kind: KindString, Required: true, Filter: true},
			{Name: "route_number", Kind: KindString, Required: true, Filter: true},
			{Name: "departure_time", Kind: KindTime, Required: true},
			{Name: "arrival_time", Kind: KindTime},
			{Name: "stops", Kind: KindStrings},
			{Name: "driver_name", Kind: KindString},
			{Name: "driver_contact", Kind: KindString},
		},
		Less: func(a, b store.Record) bool {
			return a.String("departure_time") < b.String("departure_time")
		},
	}

	EventResource = ResourceDef{
		Table: model.TableEvents,
		Fields: []FieldSpec{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindString},
			{Name: "date", Kind: KindDate, Required: true, Filter: true},
			{Name: "time", Kind: KindTime},
			{Name: "location", Kind: KindString},
			{Name: "organizer", Kind: KindString, Filter: true},
			{Name: "category", Kind: KindString, Filter: true},
			{Name: "attachment", Kind: KindString},
		},
		Less: func(a, b store.Record) bool {
			if a.String("date") != b.String("date") {
				return a.String("date") < b.String("date")
			}
			return a.String("time") < b.String("time")
		},
	}

	UpdateResource = ResourceDef{
		Table: model.TableUpdates,
		Fields: []FieldSpec{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "content", Kind: KindString, Required: true},
			{Name: "category", Kind: KindString, Filter: true},
			{Name: "priority", Kind: KindString, Filter: true, Enum: []string{"low", "normal", "high"}, Default: "normal"},
			{Name: "attachment", Kind: KindString},
		},
		// 最新的在前
		Less: func(a, b store.Record) bool {
			return a.ID() > b.ID()
		},
	}

	FAQResource = ResourceDef{
		Table: model.TableFAQs,
		Fields: []FieldSpec{
			{Name: "question", Kind: KindString, Required: true},
			{Name: "answer", Kind: KindString, Required: true},
			{Name: "category", Kind: KindString, Filter: true},
		},
		Less: func(a, b store.Record) bool {
			return a.ID() < b.ID()
		},
	}
)

// TopicResources 按 REST 路径段列出所有话题。
var TopicResources = map[string]ResourceDef{
	"schedules": ScheduleResource,
	"menus":     MenuResource,
	"buses":     BusResource,
	"events":    EventResource,
	"updates":   UpdateResource,
	"faqs":      FAQResource,
}

var dayOrder = map[string]int{
	"Monday": 1, "Tuesday": 2, "Wednesday": 3, "Thursday": 4, "Friday": 5, "Saturday": 6, "Sunday": 7,
}

var mealOrder = map[string]int{"breakfast": 1, "lunch": 2, "snack": 3, "dinner": 4}

// NewResourceServices 为所有话题创建服务，键为 REST 路径段。
func NewResourceServices(s store.RecordStore, publisher ChangePublisher) map[string]ResourceService {
	out := make(map[string]ResourceService, len(TopicResources))
	for topic, def := range TopicResources {
		out[topic] = NewResourceService(def, s, publisher)
	}
	return out
}
