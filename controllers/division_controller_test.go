package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
)

func newDivisionRouter(t *testing.T, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	controller := NewDivisionController(db)
	r := gin.New()
	group := r.Group("/api/v1")
	if user != nil {
		group.Use(authIdentity(*user))
	}
	group.GET("/divisions", controller.ListDivisions)
	group.GET("/divisions/:slug", controller.GetDivision)
	group.POST("/divisions/validate-slug", controller.ValidateSlug)
	group.POST("/divisions", controller.CreateDivision)
	group.PUT("/divisions/:slug", controller.UpdateDivision)
	group.DELETE("/divisions/:slug", controller.DeleteDivision)
	return r
}

// Slug validation always answers HTTP 200; the outcome lives in the body.
func TestValidateSlugAlwaysOK(t *testing.T) {
	db := newTestDB(t)
	editor, _ := createUser(t, db, "editor", models.RoleEditor)
	division := models.Division{UserID: editor.ID, Slug: "media", Name: "Media"}
	require.NoError(t, db.Create(&division).Error)

	r := newDivisionRouter(t, db, nil)

	tests := []struct {
		name      string
		body      interface{}
		available bool
		withError bool
	}{
		{"missing slug", gin.H{}, false, true},
		{"malformed slug", gin.H{"slug": "Bad Slug!"}, false, true},
		{"uppercase slug", gin.H{"slug": "Media"}, false, true},
		{"taken slug", gin.H{"slug": "media"}, false, true},
		{"own slug exempt", gin.H{"slug": "media", "current_id": division.ID}, true, false},
		{"free slug", gin.H{"slug": "ventures"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, r, "POST", "/api/v1/divisions/validate-slug", "", tt.body)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.available, resp["available"])
			if tt.withError {
				assert.NotEmpty(t, resp["error"])
			} else {
				assert.Nil(t, resp["error"])
			}
		})
	}
}

func TestCreateDivisionRejectsBadSlug(t *testing.T) {
	db := newTestDB(t)
	editor, _ := createUser(t, db, "editor", models.RoleEditor)
	r := newDivisionRouter(t, db, &editor)

	w, resp := doJSON(t, r, "POST", "/api/v1/divisions", "", gin.H{"slug": "Not Valid", "name": "Broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 40051, resp["code"])

	w, resp = doJSON(t, r, "POST", "/api/v1/divisions", "", gin.H{"slug": "media", "name": "Media"})
	require.Equal(t, http.StatusOK, w.Code)
	created := dataOf(t, resp)["division"].(map[string]interface{})
	assert.EqualValues(t, editor.ID, created["user_id"])

	// The slug is now taken.
	w, resp = doJSON(t, r, "POST", "/api/v1/divisions", "", gin.H{"slug": "media", "name": "Copycat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 40051, resp["code"])
}

func TestUpdateDivisionOwnership(t *testing.T) {
	db := newTestDB(t)
	owner, _ := createUser(t, db, "owner", models.RoleEditor)
	rival, _ := createUser(t, db, "rival", models.RoleEditor)
	admin, _ := createUser(t, db, "boss", models.RoleAdmin)

	division := models.Division{UserID: owner.ID, Slug: "media", Name: "Media"}
	require.NoError(t, db.Create(&division).Error)

	body := gin.H{"slug": "media", "name": "Media Group"}

	w, resp := doJSON(t, newDivisionRouter(t, db, &rival), "PUT", "/api/v1/divisions/media", "", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.EqualValues(t, 40304, resp["code"])

	w, _ = doJSON(t, newDivisionRouter(t, db, &owner), "PUT", "/api/v1/divisions/media", "", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, newDivisionRouter(t, db, &admin), "PUT", "/api/v1/divisions/media", "", body)
	assert.Equal(t, http.StatusOK, w.Code)
}

// Renaming a division to its current slug passes the uniqueness check.
func TestUpdateDivisionKeepsOwnSlug(t *testing.T) {
	db := newTestDB(t)
	owner, _ := createUser(t, db, "owner", models.RoleEditor)
	division := models.Division{UserID: owner.ID, Slug: "media", Name: "Media"}
	require.NoError(t, db.Create(&division).Error)

	r := newDivisionRouter(t, db, &owner)
	w, resp := doJSON(t, r, "PUT", "/api/v1/divisions/media", "", gin.H{"slug": "media", "name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := dataOf(t, resp)["division"].(map[string]interface{})
	assert.Equal(t, "Renamed", updated["name"])
}

func TestDeleteDivision(t *testing.T) {
	db := newTestDB(t)
	admin, _ := createUser(t, db, "boss", models.RoleAdmin)
	division := models.Division{UserID: admin.ID, Slug: "media", Name: "Media"}
	require.NoError(t, db.Create(&division).Error)

	r := newDivisionRouter(t, db, &admin)
	w, _ := doJSON(t, r, "DELETE", "/api/v1/divisions/media", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rows int64
	require.NoError(t, db.Model(&models.Division{}).Count(&rows).Error)
	assert.EqualValues(t, 0, rows)

	w, resp := doJSON(t, r, "DELETE", "/api/v1/divisions/media", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 40412, resp["code"])
}
