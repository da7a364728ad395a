package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"campus-info-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
statements:
  - statement: INSERT INTO buses (route_name, route_number, departure_time, stops) VALUES (?, ?, ?, ?)
    params: ["Campus Loop", "R1", "08:00", ["Main Gate", "Library"]]
  - statement: INSERT INTO faqs (question, answer) VALUES (?, ?)
    params: ["Where is the library?", "Next to the main gate."]
  - statement: TRUNCATE faqs
  - statement: DELETE FROM faqs WHERE id = ?
    params: [99]
`

func TestRunSeed(t *testing.T) {
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	ctx := context.Background()

	n, err := runSeed(ctx, s, strings.NewReader(testSeed))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	buses, err := s.Find(ctx, "buses")
	require.NoError(t, err)
	require.Len(t, buses, 1)
	assert.Equal(t, []string{"Main Gate", "Library"}, buses[0].Strings("stops"))
	active, _ := buses[0].Bool("is_active")
	assert.True(t, active)
}

func TestRunSeedRejectsBadYAML(t *testing.T) {
	s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	_, err = runSeed(context.Background(), s, strings.NewReader("statements: {"))
	assert.Error(t, err)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"3", "21BCE001", "true", "08:00"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{3, "21BCE001", true, "08:00"}, params)
}
