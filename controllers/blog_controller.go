package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/utils"
)

// BlogController manages posts, comments, likes and view tracking.
type BlogController struct {
	db    *gorm.DB
	views *utils.ViewTracker
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(db *gorm.DB, views *utils.ViewTracker) *BlogController {
	return &BlogController{db: db, views: views}
}

// published restricts a query to publicly visible posts.
func published(db *gorm.DB) *gorm.DB {
	return db.Where("published_at IS NOT NULL AND published_at <= ?", time.Now())
}

// ListPosts returns paginated published posts, newest first.
func (b *BlogController) ListPosts(ctx *gin.Context) {
	limit, offset := parseLimitOffset(ctx)
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))

	ctx.Header("Cache-Control", "public, max-age=300")

	// Cache list responses only when there is no search term to avoid cache
	// key explosion.
	cacheKey := fmt.Sprintf("cache:blog:list:cat=%s:limit=%d:offset=%d", category, limit, offset)
	if search == "" {
		if cached, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	query := b.db.Scopes(published).Preload("User").Order("published_at DESC")
	if search != "" {
		query = query.Where("title LIKE ? OR content LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := gin.H{
		"items": posts,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"total":  total,
		},
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// ListCategories returns the distinct categories of published posts with counts.
func (b *BlogController) ListCategories(ctx *gin.Context) {
	type categoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}

	if cached, ok := utils.CacheGetBytes("cache:blog:categories"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	var rows []categoryCount
	if err := b.db.Model(&models.Post{}).
		Scopes(published).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to aggregate categories")
		return
	}

	payload := gin.H{"items": rows}
	utils.CacheSetJSON("cache:blog:categories", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// GetPost returns a single post with its threaded comments and records a
// view event asynchronously. Drafts are visible only to users who may mutate
// them. The response is not cached so the counters stay live.
func (b *BlogController) GetPost(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var post models.Post
	if err := b.db.Preload("User").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	if !post.Published() && !canMutate(ctx, post.UserID) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	comments, err := b.loadThreadedComments(post.ID)
	if err != nil {
		// Serve the post anyway; the comment list is secondary.
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to load comments for post %d: %v", post.ID, err)
		}
	}
	post.Comments = comments

	// Fire-and-forget view recording: the response never waits on the write.
	userID, _ := getUserID(ctx)
	ev := utils.ViewEvent{
		PostID:    post.ID,
		IP:        ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
	}
	if userID != 0 {
		ev.UserID = &userID
	}
	b.views.Track(ev)

	utils.Success(ctx, gin.H{"post": post})
}

// loadThreadedComments returns top-level comments with replies nested under
// the root of their thread. Parents always precede replies in creation order.
func (b *BlogController) loadThreadedComments(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := b.db.Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []models.Comment{}, nil
	}

	var userIDs []uint
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	var users []models.User
	userMap := make(map[uint]models.User)
	if err := b.db.Find(&users, utils.UniqueUint(userIDs)).Error; err == nil {
		for _, u := range users {
			userMap[u.ID] = u
		}
	}
	for i := range comments {
		comments[i].User = userMap[comments[i].UserID]
	}

	rootOf := make(map[uint]int) // comment ID -> index in roots
	var roots []models.Comment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			rootOf[c.ID] = len(roots) - 1
			continue
		}
		idx, ok := rootOf[*c.ParentID]
		if !ok {
			continue // orphaned reply, parent deleted
		}
		roots[idx].Replies = append(roots[idx].Replies, c)
		rootOf[c.ID] = idx
	}
	return roots, nil
}

// ListMyPosts returns the authenticated user's posts, drafts included.
func (b *BlogController) ListMyPosts(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	limit, offset := parseLimitOffset(ctx)

	query := b.db.Where("user_id = ?", userID).Order("created_at DESC")
	var total int64
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to count posts")
		return
	}
	var posts []models.Post
	if err := query.Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items": posts,
		"pagination": gin.H{"limit": limit, "offset": offset, "total": total},
	})
}

type postRequest struct {
	Title    string `json:"title" binding:"required,min=1"`
	Slug     string `json:"slug" binding:"required"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
	CoverURL string `json:"cover_url"`
	Featured bool   `json:"featured"`
	Publish  bool   `json:"publish"`
}

// CreatePost allows contributors and above to create posts.
func (b *BlogController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	slug := strings.TrimSpace(req.Slug)
	available, reason, err := slugAvailability(b.db, &models.Post{}, slug, 0)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to validate slug")
		return
	}
	if !available {
		utils.Error(ctx, http.StatusBadRequest, 40021, reason)
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "news"
	}
	if !utils.IsValidSlug(category) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid category")
		return
	}

	post := models.Post{
		UserID:   userID,
		Slug:     slug,
		Title:    utils.Sanitize(strings.TrimSpace(req.Title)),
		Excerpt:  utils.Sanitize(req.Excerpt),
		Content:  utils.Sanitize(req.Content),
		Category: category,
		CoverURL: req.CoverURL,
	}
	// Only editors and admins control the featured flag.
	if models.RoleAtLeast(getRole(ctx), models.RoleEditor) {
		post.Featured = req.Featured
	}
	if req.Publish {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := b.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:blog:")
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost allows the author (contributor) or editors and above to update a post.
func (b *BlogController) UpdatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	var post models.Post
	if err := b.db.Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load post")
		return
	}

	if !canMutate(ctx, post.UserID) {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own posts")
		return
	}

	newSlug := strings.TrimSpace(req.Slug)
	available, reason, err := slugAvailability(b.db, &models.Post{}, newSlug, post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to validate slug")
		return
	}
	if !available {
		utils.Error(ctx, http.StatusBadRequest, 40024, reason)
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = post.Category
	}
	if !utils.IsValidSlug(category) {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid category")
		return
	}

	post.Slug = newSlug
	post.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	post.Excerpt = utils.Sanitize(req.Excerpt)
	post.Content = utils.Sanitize(req.Content)
	post.Category = category
	post.CoverURL = req.CoverURL
	if models.RoleAtLeast(getRole(ctx), models.RoleEditor) {
		post.Featured = req.Featured
	}
	if req.Publish && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	} else if !req.Publish {
		post.PublishedAt = nil
	}

	if err := b.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:blog:")
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost allows the author or editors and above to delete a post.
func (b *BlogController) DeletePost(ctx *gin.Context) {
	var post models.Post
	if err := b.db.Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load post")
		return
	}

	if !canMutate(ctx, post.UserID) {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own posts")
		return
	}

	if err := b.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:blog:")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ToggleLike flips the like state of a post for the current identity and
// returns the resulting state and counter.
func (b *BlogController) ToggleLike(ctx *gin.Context) {
	var req struct {
		AnonymousID string `json:"anonymous_id"`
	}
	// The body is optional; anonymous visitors without one get a derived token.
	_ = ctx.ShouldBindJSON(&req)

	var post models.Post
	if err := b.db.Scopes(published).Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load post")
		return
	}

	userID, anonID := requesterIdentity(ctx, req.AnonymousID)
	query := b.db.Where("post_id = ?", post.ID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("anonymous_id = ?", anonID)
	}

	// The existence check and the counter mutation are separate statements;
	// the counter itself only moves through atomic updates and never drops
	// below zero.
	var like models.Like
	err := query.First(&like).Error
	var liked bool
	switch {
	case err == nil:
		if err := b.db.Delete(&models.Like{}, like.ID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to remove like")
			return
		}
		if err := b.db.Model(&models.Post{}).
			Where("id = ? AND likes > 0", post.ID).
			UpdateColumn("likes", gorm.Expr("likes - 1")).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to update like counter")
			return
		}
		liked = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		like = models.Like{PostID: post.ID, UserID: userID}
		if userID == nil {
			like.AnonymousID = &anonID
		}
		if err := b.db.Create(&like).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to record like")
			return
		}
		if err := b.db.Model(&models.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to update like counter")
			return
		}
		liked = true
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50039, "failed to look up like")
		return
	}

	var likes int64
	if err := b.db.Model(&models.Post{}).Select("likes").Where("id = ?", post.ID).Scan(&likes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to read like counter")
		return
	}
	utils.Success(ctx, gin.H{"liked": liked, "likes": likes})
}

// CreateComment allows authenticated users to comment on published posts.
func (b *BlogController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40027, "content cannot be empty")
		return
	}

	var post models.Post
	if err := b.db.Scopes(published).Where("slug = ?", ctx.Param("slug")).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := b.db.First(&parent, *req.ParentID).Error; err != nil || parent.PostID != post.ID {
			utils.Error(ctx, http.StatusBadRequest, 40028, "parent comment not found on this post")
			return
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := b.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create comment")
		return
	}
	if err := b.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load comment")
		return
	}

	b.refreshCommentsCount(post.ID)
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment allows the comment author or editors and above to delete a comment.
func (b *BlogController) DeleteComment(ctx *gin.Context) {
	var comment models.Comment
	if err := b.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comment")
		return
	}

	if !canMutate(ctx, comment.UserID) {
		utils.Error(ctx, http.StatusForbidden, 40303, "you can only delete your own comments")
		return
	}

	// Threads nest to arbitrary depth, so walk the reply tree level by level
	// and remove the whole branch in one transaction. A surviving descendant
	// would still be counted but never rendered.
	err := b.db.Transaction(func(tx *gorm.DB) error {
		doomed := []uint{comment.ID}
		frontier := doomed
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			doomed = append(doomed, children...)
			frontier = children
		}
		return tx.Delete(&models.Comment{}, doomed).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to delete comment")
		return
	}

	b.refreshCommentsCount(comment.PostID)
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// refreshCommentsCount recomputes the cached counter from live rows so it can
// never drift from the actual comment count.
func (b *BlogController) refreshCommentsCount(postID uint) {
	var count int64
	if err := b.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to recount comments for post %d: %v", postID, err)
		}
		return
	}
	if err := b.db.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments_count", count).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to store comment count for post %d: %v", postID, err)
		}
	}
}
