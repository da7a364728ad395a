package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"campus-info-go/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestFormat_EmptyResults(t *testing.T) {
	assert.Equal(t, NoScheduleText, Format(IntentSchedule, nil))
	assert.Equal(t, NoMenuText, Format(IntentMenu, []store.Record{}))
	assert.Equal(t, NoBusText, Format(IntentBus, nil))
	assert.Equal(t, NoEventText, Format(IntentEvent, nil))
	assert.Equal(t, NoUpdateText, Format(IntentUpdate, nil))
	assert.Equal(t, NoFAQText, Format(IntentFAQ, nil))
}

func TestFormat_MenuItem(t *testing.T) {
	veg := store.Record{"name": "Masala Dosa", "price": json.Number("45"), "meal_type": "breakfast", "date": "2026-10-15", "is_vegetarian": true}
	out := Format(IntentMenu, []store.Record{veg})
	assert.Contains(t, out, "Masala Dosa")
	assert.Contains(t, out, "45")
	assert.Contains(t, out, "(Vegetarian)")
	assert.NotContains(t, out, "Non-vegetarian")

	nonVeg := store.Record{"name": "Egg Curry", "price": 60.5, "meal_type": "lunch", "date": "2026-10-15", "is_vegetarian": false}
	out = Format(IntentMenu, []store.Record{nonVeg})
	assert.Contains(t, out, "Egg Curry")
	assert.Contains(t, out, "60.5")
	assert.Contains(t, out, "(Non-vegetarian)")
}

func TestFormat_MenuGroupsByDateAndMeal(t *testing.T) {
	records := []store.Record{
		{"name": "Idli", "price": 30, "meal_type": "breakfast", "date": "2026-10-15", "is_vegetarian": true},
		{"name": "Rajma", "price": 50, "meal_type": "lunch", "date": "2026-10-15", "is_vegetarian": true},
		{"name": "Vada", "price": 20, "meal_type": "breakfast", "date": "2026-10-15", "is_vegetarian": true},
	}
	out := Format(IntentMenu, records)
	assert.Equal(t, 1, strings.Count(out, "Breakfast (2026-10-15):"))
	assert.Equal(t, 1, strings.Count(out, "Lunch (2026-10-15):"))
	// 同组内保持原顺序，Vada 紧跟 Idli
	assert.Less(t, strings.Index(out, "Idli"), strings.Index(out, "Vada"))
	assert.Less(t, strings.Index(out, "Vada"), strings.Index(out, "Lunch"))
}

func TestFormat_ToleratesMissingFields(t *testing.T) {
	out := Format(IntentSchedule, []store.Record{{"subject": "Operating Systems", "day": "Monday", "start_time": "09:00"}})
	assert.Contains(t, out, "Operating Systems")
	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "09:00 - TBA")
	assert.Contains(t, out, "Room: TBA")
	assert.Contains(t, out, "Instructor: TBA")

	assert.NotPanics(t, func() {
		for _, intent := range []Intent{IntentSchedule, IntentMenu, IntentBus, IntentEvent, IntentUpdate, IntentFAQ} {
			assert.NotEmpty(t, Format(intent, []store.Record{{}}))
		}
	})
}

func TestFormat_OtherTopics(t *testing.T) {
	bus := Format(IntentBus, []store.Record{{
		"route_name": "City Loop", "route_number": "12", "departure_time": "07:30",
		"stops": `["Main Gate","Railway Station"]`, "driver_name": "Kumar",
	}})
	assert.Contains(t, bus, "City Loop (Route 12)")
	assert.Contains(t, bus, "Main Gate -> Railway Station")
	assert.Contains(t, bus, "Driver: Kumar")

	upd := Format(IntentUpdate, []store.Record{{"title": "Exam postponed", "content": "New dates soon", "priority": "high"}})
	assert.Contains(t, upd, "[IMPORTANT] Exam postponed")

	faq := Format(IntentFAQ, []store.Record{{"question": "Library hours?", "answer": "8am to 10pm"}})
	assert.Contains(t, faq, "Q: Library hours?")
	assert.Contains(t, faq, "A: 8am to 10pm")

	ev := Format(IntentEvent, []store.Record{{"title": "Hackathon", "date": "2026-10-20"}})
	assert.Contains(t, ev, "2026-10-20 at TBA")
	assert.Contains(t, ev, "Where: TBA")
}
