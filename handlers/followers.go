package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safe2gether/models"
	"safe2gether/services"
)

// FollowersHandler serves the /Seguidores endpoints.
type FollowersHandler struct {
	followers *services.FollowersService
}

func NewFollowersHandler(followers *services.FollowersService) *FollowersHandler {
	return &FollowersHandler{followers: followers}
}

func (h *FollowersHandler) List(c *gin.Context) {
	followers, err := h.followers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, followers)
}

func (h *FollowersHandler) ListFollowers(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	followers, err := h.followers.ListFollowers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, followers)
}

func (h *FollowersHandler) ListFollowing(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	following, err := h.followers.ListFollowing(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, following)
}

func (h *FollowersHandler) Follow(c *gin.Context) {
	req := &models.CreateFollowerRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	follower, err := h.followers.Follow(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, follower)
}

// Unfollow deletes by the (follower, followed) pair rather than row id,
// matching how clients track relationships.
func (h *FollowersHandler) Unfollow(c *gin.Context) {
	followerID, ok := pathID(c, "follower_id")
	if !ok {
		return
	}
	followedID, ok := pathID(c, "followed_id")
	if !ok {
		return
	}
	resp, err := h.followers.Unfollow(c.Request.Context(), followerID, followedID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FollowersHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.followers.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FollowersHandler) IsFollowing(c *gin.Context) {
	followerID, ok := pathID(c, "follower_id")
	if !ok {
		return
	}
	followedID, ok := pathID(c, "followed_id")
	if !ok {
		return
	}
	resp, err := h.followers.IsFollowing(c.Request.Context(), followerID, followedID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
