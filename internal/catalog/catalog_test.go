package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite-gym/ignitegym/internal/database"
	"github.com/ignite-gym/ignitegym/internal/models"
)

func TestDefault(t *testing.T) {
	entries, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	groups := map[string]bool{}
	for _, e := range entries {
		groups[e.Group] = true
		assert.NotEmpty(t, e.Demo, e.Name)
		assert.NotEmpty(t, e.Thumb, e.Name)
	}
	assert.True(t, groups["antebraço"], "the default group must be present")
	assert.True(t, groups["costas"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "empty", input: "", errMsg: "catalog is empty"},
		{name: "unknown key", input: "exercises:\n  - name: A\n    serie: 3\n", errMsg: "failed to parse catalog"},
		{name: "missing group", input: "exercises:\n  - name: A\n    series: 3\n    repetitions: 10\n", errMsg: "group is required"},
		{name: "zero series", input: "exercises:\n  - name: A\n    group: g\n    repetitions: 10\n", errMsg: "series must be positive"},
		{
			name:   "duplicate",
			input:  "exercises:\n  - {name: A, group: g, series: 3, repetitions: 10}\n  - {name: A, group: g, series: 4, repetitions: 8}\n",
			errMsg: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exercises:\n  - {name: Prancha, group: abdômen, series: 3, repetitions: 1}\n"), 0o600))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "Prancha", Group: "abdômen", Series: 3, Repetitions: 1}}, entries)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeed_UpsertKeepsIDs(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	defer database.Close(db)

	ctx := context.Background()
	entries := []Entry{
		{Name: "Rosca direta", Group: "bíceps", Series: 3, Repetitions: 12},
		{Name: "Puxada frontal", Group: "costas", Series: 3, Repetitions: 12},
	}

	n, err := Seed(ctx, db, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var before models.Exercise
	require.NoError(t, db.Where("name = ?", "Rosca direta").First(&before).Error)

	entries[0].Series = 5
	_, err = Seed(ctx, db, entries)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Exercise{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var after models.Exercise
	require.NoError(t, db.Where("name = ?", "Rosca direta").First(&after).Error)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, 5, after.Series)
}

func TestSeed_Empty(t *testing.T) {
	n, err := Seed(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
