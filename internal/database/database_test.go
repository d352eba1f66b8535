package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite-gym/ignitegym/internal/models"
)

func TestOpenMemory_Migrates(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)
	defer Close(db)

	for _, model := range []any{&models.User{}, &models.Exercise{}, &models.History{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestOpenMemory_Isolated(t *testing.T) {
	first, err := OpenMemory(t.Name() + "/first")
	require.NoError(t, err)
	defer Close(first)

	second, err := OpenMemory(t.Name() + "/second")
	require.NoError(t, err)
	defer Close(second)

	require.NoError(t, first.Create(&models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"}).Error)

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBaseModel_GeneratesULID(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)
	defer Close(db)

	user := &models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	assert.Len(t, user.ID, 26)

	var found models.User
	require.NoError(t, models.FindByID(db, user.ID, &found))
	assert.Equal(t, "ana@example.com", found.Email)
}
