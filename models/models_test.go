package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&User{}, &Post{}, &Like{}))
	return db
}

func TestRoleHierarchy(t *testing.T) {
	assert.Equal(t, 0, RoleRank(RoleReader))
	assert.Equal(t, 3, RoleRank(RoleAdmin))
	assert.Equal(t, -1, RoleRank("superuser"))
	assert.Equal(t, -1, RoleRank(""))

	assert.True(t, RoleAtLeast(RoleAdmin, RoleReader))
	assert.True(t, RoleAtLeast(RoleEditor, RoleEditor))
	assert.False(t, RoleAtLeast(RoleContributor, RoleEditor))
	assert.False(t, RoleAtLeast("superuser", RoleReader), "unknown roles never pass a gate")
}

func TestUserBeforeCreateNormalizesRole(t *testing.T) {
	db := openDB(t)

	user := User{Username: "odd", PasswordHash: "x", Role: "warlord"}
	require.NoError(t, db.Create(&user).Error)
	assert.Equal(t, RoleReader, user.Role)
}

func TestLikeRequiresExactlyOneIdentity(t *testing.T) {
	db := openDB(t)
	userID := uint(1)
	anon := "anon-token"
	empty := ""

	// Neither identity.
	err := db.Create(&Like{PostID: 1}).Error
	assert.ErrorIs(t, err, ErrLikeIdentity)

	// Empty anonymous token counts as absent.
	err = db.Create(&Like{PostID: 1, AnonymousID: &empty}).Error
	assert.ErrorIs(t, err, ErrLikeIdentity)

	// Both identities.
	err = db.Create(&Like{PostID: 1, UserID: &userID, AnonymousID: &anon}).Error
	assert.ErrorIs(t, err, ErrLikeIdentity)

	// Exactly one works.
	require.NoError(t, db.Create(&Like{PostID: 1, UserID: &userID}).Error)
	require.NoError(t, db.Create(&Like{PostID: 1, AnonymousID: &anon}).Error)
}

func TestPostPublished(t *testing.T) {
	var p Post
	assert.False(t, p.Published(), "nil published_at is a draft")

	past := time.Now().Add(-time.Minute)
	p.PublishedAt = &past
	assert.True(t, p.Published())

	future := time.Now().Add(time.Hour)
	p.PublishedAt = &future
	assert.False(t, p.Published(), "future publish dates stay hidden")
}
