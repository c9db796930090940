package models

// Follower is a follow relationship between two users.
type Follower struct {
	ID         int64  `json:"id"`
	FollowerID int64  `json:"seguidor_id"`
	FollowedID int64  `json:"seguido_id"`
	CreatedAt  string `json:"created_at"`
}

// CreateFollowerRequest is the payload for POST /Seguidores.
type CreateFollowerRequest struct {
	FollowerID int64 `json:"seguidor_id" binding:"required"`
	FollowedID int64 `json:"seguido_id" binding:"required"`
}

// UpdateFollowerRequest is the payload for PATCH /Seguidores/:id.
type UpdateFollowerRequest struct {
	FollowerID *int64 `json:"seguidor_id"`
	FollowedID *int64 `json:"seguido_id"`
}

// IsFollowingResponse answers /Seguidores/is-following checks.
type IsFollowingResponse struct {
	IsFollowing bool `json:"is_following"`
}
