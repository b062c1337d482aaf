package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
)

func newSiteRouter(t *testing.T, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	clients := NewClientController(db)
	achievements := NewAchievementController(db)
	team := NewTeamController(db)
	stats := NewStatsController(db)

	r := gin.New()
	group := r.Group("/api/v1")
	if user != nil {
		group.Use(authIdentity(*user))
	}
	group.GET("/clients", clients.ListClients)
	group.POST("/clients", clients.CreateClient)
	group.PUT("/clients/:id", clients.UpdateClient)
	group.DELETE("/clients/:id", clients.DeleteClient)
	group.GET("/achievements", achievements.ListAchievements)
	group.POST("/achievements", achievements.CreateAchievement)
	group.GET("/team", team.ListTeam)
	group.POST("/team/departments", team.CreateDepartment)
	group.POST("/team/members", team.CreateMember)
	group.DELETE("/team/departments/:id", team.DeleteDepartment)
	group.GET("/stats", stats.GetStats)
	return r
}

func TestClientLifecycleInvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	editor, _ := createUser(t, db, "editor", models.RoleEditor)
	r := newSiteRouter(t, db, &editor)

	w, resp := doJSON(t, r, "POST", "/api/v1/clients", "", gin.H{"name": "Acme", "industry": "retail"})
	require.Equal(t, http.StatusOK, w.Code)
	created := dataOf(t, resp)["client"].(map[string]interface{})
	clientID := uint(created["id"].(float64))

	// First list populates the cache; the mutation below must not serve it stale.
	w, resp = doJSON(t, r, "GET", "/api/v1/clients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, dataOf(t, resp)["items"].([]interface{}), 1)

	w, _ = doJSON(t, r, "PUT", fmt.Sprintf("/api/v1/clients/%d", clientID), "", gin.H{"name": "Acme Group"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, "GET", "/api/v1/clients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := dataOf(t, resp)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Acme Group", items[0].(map[string]interface{})["name"])

	w, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/api/v1/clients/%d", clientID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, "GET", "/api/v1/clients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, resp)["items"].([]interface{}), 0)
}

func TestAchievementsOrderedByYearDesc(t *testing.T) {
	db := newTestDB(t)
	editor, _ := createUser(t, db, "editor", models.RoleEditor)
	r := newSiteRouter(t, db, &editor)

	for _, year := range []int{2019, 2024, 2021} {
		w, _ := doJSON(t, r, "POST", "/api/v1/achievements", "", gin.H{
			"title": fmt.Sprintf("Award %d", year), "year": year,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp := doJSON(t, r, "GET", "/api/v1/achievements", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := dataOf(t, resp)["items"].([]interface{})
	require.Len(t, items, 3)
	assert.EqualValues(t, 2024, items[0].(map[string]interface{})["year"])
	assert.EqualValues(t, 2019, items[2].(map[string]interface{})["year"])
}

func TestTeamGroupingAndCascade(t *testing.T) {
	db := newTestDB(t)
	editor, _ := createUser(t, db, "editor", models.RoleEditor)
	r := newSiteRouter(t, db, &editor)

	w, resp := doJSON(t, r, "POST", "/api/v1/team/departments", "", gin.H{"name": "Engineering", "position": 1})
	require.Equal(t, http.StatusOK, w.Code)
	department := dataOf(t, resp)["department"].(map[string]interface{})
	departmentID := uint(department["id"].(float64))

	w, resp = doJSON(t, r, "POST", "/api/v1/team/members", "", gin.H{
		"department_id": departmentID, "name": "Ada", "title": "Lead",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Members referencing an unknown department are rejected.
	w, resp = doJSON(t, r, "POST", "/api/v1/team/members", "", gin.H{
		"department_id": 999, "name": "Ghost",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 40092, resp["code"])

	w, resp = doJSON(t, r, "GET", "/api/v1/team", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := dataOf(t, resp)["items"].([]interface{})
	require.Len(t, listed, 1)
	members := listed[0].(map[string]interface{})["members"].([]interface{})
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].(map[string]interface{})["name"])

	// Deleting the department removes its members.
	w, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/api/v1/team/departments/%d", departmentID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var memberRows int64
	require.NoError(t, db.Model(&models.TeamMember{}).Count(&memberRows).Error)
	assert.EqualValues(t, 0, memberRows)
}

func TestStatsAggregates(t *testing.T) {
	db := newTestDB(t)
	author, _ := createUser(t, db, "author", models.RoleContributor)
	post := createPublishedPost(t, db, author.ID, "counted-post")
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("views", 7).Error)

	// Drafts do not count as posts.
	draft := models.Post{UserID: author.ID, Slug: "draft", Title: "Draft", Content: "wip", Category: "news"}
	require.NoError(t, db.Create(&draft).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Content: "hi"}).Error)

	r := newSiteRouter(t, db, nil)
	w, resp := doJSON(t, r, "GET", "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, resp)
	assert.EqualValues(t, 1, data["users"])
	assert.EqualValues(t, 1, data["posts"])
	assert.EqualValues(t, 1, data["comments"])
	assert.EqualValues(t, 7, data["views"])
}
