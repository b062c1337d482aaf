package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/middleware"
	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// parseLimitOffset reads limit/offset query parameters with sane bounds.
func parseLimitOffset(ctx *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(ctx.Query("limit")); err == nil && v > 0 && v <= maxPageSize {
		limit = v
	}
	if v, err := strconv.Atoi(ctx.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func getRole(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}

// canMutate implements the ownership rule: contributors may mutate only
// records they authored, editors and admins may mutate any.
func canMutate(ctx *gin.Context, ownerID uint) bool {
	userID, ok := getUserID(ctx)
	if !ok {
		return false
	}
	if models.RoleAtLeast(getRole(ctx), models.RoleEditor) {
		return true
	}
	return userID == ownerID
}

// requesterIdentity resolves the like/view identity for the current request:
// the authenticated user when present, otherwise the anonymous token from the
// body or one derived from IP and user-agent.
func requesterIdentity(ctx *gin.Context, bodyAnonID string) (userID *uint, anonID string) {
	if id, ok := getUserID(ctx); ok {
		return &id, ""
	}
	anonID = strings.TrimSpace(bodyAnonID)
	if len(anonID) > utils.AnonymousIDLength {
		anonID = anonID[:utils.AnonymousIDLength]
	}
	if anonID == "" {
		anonID = utils.AnonymousID(ctx.ClientIP(), ctx.Request.UserAgent())
	}
	return nil, anonID
}

// slugAvailability checks slug format and uniqueness against the given model.
// currentID exempts the record being edited. The returned reason is empty
// when the slug is available.
func slugAvailability(db *gorm.DB, model interface{}, slug string, currentID uint) (bool, string, error) {
	if !utils.IsValidSlug(slug) {
		return false, "slug may contain lowercase letters, digits and hyphens only", nil
	}
	var existing struct{ ID uint }
	err := db.Model(model).Select("id").Where("slug = ?", slug).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if currentID != 0 && existing.ID == currentID {
		return true, "", nil
	}
	return false, "slug is already taken", nil
}
