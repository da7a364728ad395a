package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"campus-info-go/internal/store"
	"campus-info-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.RecordStore {
	t.Helper()
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "campus.json"))
	require.NoError(t, err)
	return s
}

type recordingPublisher struct {
	mu    sync.Mutex
	tasks []tasks.RecordChangeTask
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, task tasks.RecordChangeTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.tasks))
	for _, t := range p.tasks {
		out = append(out, t.Action+" "+t.Key())
	}
	return out
}

func TestResourceService_CreateNormalizesInput(t *testing.T) {
	svc := NewResourceService(ScheduleResource, newTestStore(t), nil)
	ctx := context.Background()

	rec, err := svc.Create(ctx, map[string]interface{}{
		"subject":    "  Data Structures ",
		"day":        "monday",
		"start_time": "9:05",
		"end_time":   "10:00",
		"semester":   float64(3),
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID())
	assert.Equal(t, "Data Structures", rec.String("subject"))
	assert.Equal(t, "Monday", rec.String("day"))
	assert.Equal(t, "09:05", rec.String("start_time"))
	sem, _ := rec.Int64("semester")
	assert.Equal(t, int64(3), sem)
	active, _ := rec.Bool("is_active")
	assert.True(t, active)
}

func TestResourceService_CreateValidation(t *testing.T) {
	svc := NewResourceService(MenuResource, newTestStore(t), nil)
	ctx := context.Background()
	valid := func() map[string]interface{} {
		return map[string]interface{}{"name": "Idli", "price": 30.0, "meal_type": "Breakfast", "date": "2026-10-15"}
	}

	cases := map[string]func(m map[string]interface{}){
		"missing required": func(m map[string]interface{}) { delete(m, "name") },
		"empty required":   func(m map[string]interface{}) { m["name"] = "  " },
		"unknown field":    func(m map[string]interface{}) { m["calories"] = 200 },
		"bad enum":         func(m map[string]interface{}) { m["meal_type"] = "brunch" },
		"bad date":         func(m map[string]interface{}) { m["date"] = "15/10/2026" },
		"negative price":   func(m map[string]interface{}) { m["price"] = -1.0 },
		"wrong type":       func(m map[string]interface{}) { m["is_vegetarian"] = "maybe" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid()
			mutate(in)
			_, err := svc.Create(ctx, in, 1)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	rec, err := svc.Create(ctx, valid(), 1)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", rec.String("meal_type"))
	veg, ok := rec.Bool("is_vegetarian")
	assert.True(t, ok, "default applied")
	assert.False(t, veg)
}

func TestResourceService_ListFiltersAndSorts(t *testing.T) {
	svc := NewResourceService(ScheduleResource, newTestStore(t), nil)
	ctx := context.Background()
	for _, in := range []map[string]interface{}{
		{"subject": "Physics", "day": "Tuesday", "start_time": "09:00", "end_time": "10:00"},
		{"subject": "Maths", "day": "Monday", "start_time": "11:00", "end_time": "12:00"},
		{"subject": "Chemistry", "day": "Monday", "start_time": "08:00", "end_time": "09:00"},
	} {
		_, err := svc.Create(ctx, in, 1)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, nil, false)
	require.NoError(t, err)
	var subjects []string
	for _, r := range all {
		subjects = append(subjects, r.String("subject"))
	}
	assert.Equal(t, []string{"Chemistry", "Maths", "Physics"}, subjects)

	monday, err := svc.List(ctx, map[string]string{"day": "MONDAY", "room_number": "ignored", "bogus": "x"}, false)
	require.NoError(t, err)
	assert.Len(t, monday, 2)

	_, err = svc.List(ctx, map[string]string{"day": "someday"}, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResourceService_SoftDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewResourceService(FAQResource, newTestStore(t), pub)
	ctx := context.Background()

	rec, err := svc.Create(ctx, map[string]interface{}{"question": "Library hours?", "answer": "8 to 8"}, 7)
	require.NoError(t, err)
	id := rec.ID()

	require.NoError(t, svc.Delete(ctx, id, 7))

	_, err = svc.Get(ctx, id, false)
	assert.ErrorIs(t, err, ErrNotFound)
	kept, err := svc.Get(ctx, id, true)
	require.NoError(t, err)
	active, _ := kept.Bool("is_active")
	assert.False(t, active)

	visible, err := svc.List(ctx, nil, false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	all, err := svc.List(ctx, nil, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// 重新启用
	_, err = svc.Update(ctx, id, map[string]interface{}{"is_active": true}, 7)
	require.NoError(t, err)
	_, err = svc.Get(ctx, id, false)
	assert.NoError(t, err)

	assert.Equal(t, []string{"create faqs:1", "delete faqs:1", "update faqs:1"}, pub.actions())
	assert.Equal(t, int64(7), pub.tasks[0].ActorID)
}

func TestResourceService_MissingRecords(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewResourceService(EventResource, newTestStore(t), pub)
	ctx := context.Background()

	_, err := svc.Update(ctx, 42, map[string]interface{}{"title": "x"}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 42, 1), ErrNotFound)
	_, err = svc.Update(ctx, 42, map[string]interface{}{}, 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, pub.actions(), "nothing published for failed writes")
}

func TestResourceService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewResourceService(UpdateResource, newTestStore(t), pub)

	rec, err := svc.Create(context.Background(), map[string]interface{}{"title": "Exam week", "content": "Starts Monday"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "normal", rec.String("priority"))
	assert.Len(t, pub.actions(), 1)
}

func TestResourceService_BusStops(t *testing.T) {
	svc := NewResourceService(BusResource, newTestStore(t), nil)
	rec, err := svc.Create(context.Background(), map[string]interface{}{
		"route_name":     "Campus Loop",
		"route_number":   "7",
		"departure_time": "07:30",
		"stops":          []interface{}{"Main Gate", " Library ", ""},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Main Gate", "Library"}, rec.Strings("stops"))
}

func TestDataEndpoint_ReturnsActiveRecordsOnly(t *testing.T) {
	s := newTestStore(t)
	resources := NewResourceServices(s, nil)
	ctx := context.Background()

	menus := resources["menus"]
	lunch, err := menus.Create(ctx, map[string]interface{}{"name": "Thali", "price": 80.0, "meal_type": "lunch", "date": "2026-10-15"}, 1)
	require.NoError(t, err)
	_, err = menus.Create(ctx, map[string]interface{}{"name": "Dosa", "price": 40.0, "meal_type": "breakfast", "date": "2026-10-15"}, 1)
	require.NoError(t, err)
	_, err = menus.Create(ctx, map[string]interface{}{"name": "Poha", "price": 25.0, "meal_type": "breakfast", "date": "2026-10-16"}, 1)
	require.NoError(t, err)
	require.NoError(t, menus.Delete(ctx, lunch.ID(), 1))

	ep := NewDataEndpoint(resources)
	rows, err := ep.FetchMenus(ctx, map[string]string{"date": "2026-10-15"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dosa", rows[0].String("name"))

	faqs, err := ep.FetchFAQs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, faqs)
}
