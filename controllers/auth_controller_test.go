package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/middleware"
	"github.com/kinygroup/kiny/models"
)

// newAuthRouter uses the real auth middleware so the token round trip and the
// logout blacklist are exercised end to end.
func newAuthRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	controller := NewAuthController(db)
	r := gin.New()
	group := r.Group("/api/v1/auth")
	group.POST("/register", controller.Register)
	group.POST("/login", controller.Login)
	group.POST("/logout", middleware.AuthRequired(), controller.Logout)
	group.GET("/me", middleware.AuthRequired(), controller.Me)

	admin := r.Group("/api/v1")
	admin.Use(middleware.AuthRequired(), middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", controller.ListUsers)
	admin.PATCH("/users/:id/role", controller.UpdateUserRole)
	admin.DELETE("/users/:id", controller.DeleteUser)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(t, db)

	w, resp := doJSON(t, r, "POST", "/api/v1/auth/register", "", gin.H{
		"username": "newcomer", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, resp)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, models.RoleReader, user["role"])
	_, hasHash := user["password_hash"]
	assert.False(t, hasHash, "password hash must never be serialized")

	// Duplicate username.
	w, resp = doJSON(t, r, "POST", "/api/v1/auth/register", "", gin.H{
		"username": "newcomer", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 40002, resp["code"])

	// Wrong password and unknown user answer identically.
	w, resp = doJSON(t, r, "POST", "/api/v1/auth/login", "", gin.H{
		"username": "newcomer", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 40107, resp["code"])

	w, resp = doJSON(t, r, "POST", "/api/v1/auth/login", "", gin.H{
		"username": "nobody", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 40107, resp["code"])

	w, resp = doJSON(t, r, "POST", "/api/v1/auth/login", "", gin.H{
		"username": "newcomer", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, dataOf(t, resp)["token"])
}

func TestLogoutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(t, db)
	_, token := createUser(t, db, "leaver", models.RoleReader)

	w, _ := doJSON(t, r, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, "POST", "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The same token no longer authenticates.
	w, resp := doJSON(t, r, "GET", "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 40104, resp["code"])
}

func TestUserAdministration(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(t, db)
	admin, adminToken := createUser(t, db, "boss", models.RoleAdmin)
	target, targetToken := createUser(t, db, "member", models.RoleReader)

	// Non-admins are rejected by the role gate.
	w, resp := doJSON(t, r, "GET", "/api/v1/users", targetToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.EqualValues(t, 40310, resp["code"])

	w, resp = doJSON(t, r, "PATCH", fmt.Sprintf("/api/v1/users/%d/role", target.ID), adminToken, gin.H{"role": "editor"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleEditor, dataOf(t, resp)["user"].(map[string]interface{})["role"])

	w, resp = doJSON(t, r, "PATCH", fmt.Sprintf("/api/v1/users/%d/role", target.ID), adminToken, gin.H{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 40006, resp["code"])

	// Admins cannot delete themselves.
	w, resp = doJSON(t, r, "DELETE", fmt.Sprintf("/api/v1/users/%d", admin.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 40007, resp["code"])

	w, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/api/v1/users/%d", target.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
