package sqlshim

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"campus-info-go/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.JSONStore {
	t.Helper()
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return s
}

func TestExecute_InsertThenSelectRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, q := range []string{"Library timings?", "Hostel curfew?"} {
		_, err := s.Insert(ctx, "faqs", store.Record{"question": q, "answer": "See notice board"})
		require.NoError(t, err)
	}

	res, err := Execute(ctx, s,
		"INSERT INTO faqs (question, answer, category) VALUES (?, ?, ?)",
		"Where is the medical centre?", "Behind Block C", "facilities")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.InsertID, "previous max id plus one")

	res, err = Execute(ctx, s, "SELECT * FROM faqs WHERE id = ?", "3")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	got := res.Records[0]
	assert.Equal(t, "Where is the medical centre?", got.String("question"))
	assert.Equal(t, "Behind Block C", got.String("answer"))
	assert.Equal(t, "facilities", got.String("category"))
	assert.Equal(t, int64(3), got.ID())
}

func TestExecute_SelectByRegNo(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := Execute(ctx, s, "INSERT INTO users (reg_no, name, role, password_hash) VALUES (?, ?, ?, ?)",
		"21BCE1001", "Asha", "student", "hash")
	require.NoError(t, err)
	_, err = Execute(ctx, s, "insert into users (reg_no, name, role, password_hash) values (?, ?, ?, ?)",
		"21BCE1002", "Ravi", "faculty", "hash")
	require.NoError(t, err)

	res, err := Execute(ctx, s, "select id, name from users where reg_no = ?", "21BCE1002")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Ravi", res.Records[0].String("name"))

	res, err = Execute(ctx, s, "SELECT * FROM users")
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	for _, stmt := range []string{
		"SELECT * FROM users WHERE reg_no = ?\n",
		"SELECT *\nFROM users\nWHERE\n  reg_no = ?",
		"SELECT id, name\n  FROM users\n WHERE reg_no = ?\n;",
	} {
		res, err = Execute(ctx, s, stmt, "21BCE1002")
		require.NoError(t, err)
		require.Len(t, res.Records, 1, "statement %q", stmt)
		assert.Equal(t, "Ravi", res.Records[0].String("name"))
	}
}

func TestExecute_MultiLineSelectByID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, q := range []string{"a", "b", "c"} {
		_, err := s.Insert(ctx, "faqs", store.Record{"question": q, "answer": q})
		require.NoError(t, err)
	}

	for _, stmt := range []string{
		"SELECT * FROM faqs WHERE id = ?",
		"SELECT * FROM faqs WHERE id = ?\n",
		"SELECT *\nFROM faqs\nWHERE\n  id = ?",
	} {
		res, err := Execute(ctx, s, stmt, 2)
		require.NoError(t, err)
		require.Len(t, res.Records, 1, "statement %q", stmt)
		assert.Equal(t, int64(2), res.Records[0].ID())
	}
}

func TestExecute_UnsupportedPredicatesAreIgnored(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Insert(ctx, "faqs", store.Record{"question": "a", "answer": "b", "category": "exams"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "faqs", store.Record{"question": "c", "answer": "d", "category": "hostel"})
	require.NoError(t, err)

	res, err := Execute(ctx, s, "SELECT * FROM faqs WHERE category = ?", "exams")
	require.NoError(t, err)
	assert.Len(t, res.Records, 2, "only reg_no and id are filtered")
}

func TestExecute_DeleteMissingIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Insert(ctx, "events", store.Record{"title": "Tech fest", "date": "2026-11-02"})
	require.NoError(t, err)
	before, err := s.Find(ctx, "events")
	require.NoError(t, err)

	res, err := Execute(ctx, s, "DELETE FROM events WHERE id = ?", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)

	after, err := s.Find(ctx, "events")
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("store changed (-before +after):\n%s", diff)
	}

	res, err = Execute(ctx, s, "DELETE FROM events WHERE id = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
}

func TestExecute_UpdateDoesNotApplySet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Insert(ctx, "updates", store.Record{"title": "Exam dates", "content": "TBD", "priority": "high"})
	require.NoError(t, err)

	res, err := Execute(ctx, s, "UPDATE updates SET title = ? WHERE id = ?", "Exam schedule", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	rows, err := s.Find(ctx, "updates", store.Eq{Field: "id", Value: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Exam dates", rows[0].String("title"))

	res, err = Execute(ctx, s, "UPDATE updates SET title = ? WHERE id = ?", "x", 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)
}

func TestExecute_GrammarMismatchYieldsEmptyResult(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tests := []struct {
		name   string
		stmt   string
		params []interface{}
	}{
		{"unknown verb", "TRUNCATE faqs", nil},
		{"placeholder count", "SELECT * FROM faqs WHERE id = ?", nil},
		{"column count", "INSERT INTO faqs (question, answer) VALUES (?)", []interface{}{"q"}},
		{"non integer id", "DELETE FROM faqs WHERE id = ?", []interface{}{"abc"}},
		{"select without from", "SELECT 1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Execute(ctx, s, tt.stmt, tt.params...)
			require.NoError(t, err)
			assert.Empty(t, res.Records)
			assert.Zero(t, res.InsertID)
			assert.Zero(t, res.RowsAffected)
		})
	}
}

func TestExecute_UnknownTableIsAnError(t *testing.T) {
	_, err := Execute(context.Background(), newStore(t), "SELECT * FROM grades")
	assert.True(t, errors.Is(err, store.ErrUnknownTable))
}

func TestParse_TypedQueries(t *testing.T) {
	q, err := Parse("SELECT * FROM users WHERE reg_no = ? AND id = ?", []interface{}{"7", "7"})
	require.NoError(t, err)
	want := store.Select{Table: "users", Where: []store.Eq{
		{Field: "reg_no", Value: "7"},
		{Field: "id", Value: int64(7)},
	}}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}

	q, err = Parse("SELECT *\n  FROM users\n WHERE reg_no = ?\n   AND id = ?\n", []interface{}{"7", "7"})
	require.NoError(t, err)
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("multi-line Parse mismatch (-want +got):\n%s", diff)
	}

	q, err = Parse("UPDATE menus SET price = ?, name = ? WHERE id = ?", []interface{}{10, "Tea", 5})
	require.NoError(t, err)
	assert.Equal(t, store.Update{Table: "menus", ID: 5, Fields: store.Record{}}, q)

	_, err = Parse("MERGE INTO menus", nil)
	assert.True(t, errors.Is(err, ErrGrammarMismatch))
}
