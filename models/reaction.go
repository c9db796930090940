package models

// Reaction vote kinds. Any other value contributes no vote.
const (
	ReactionUpvote   = "upvote"
	ReactionDownvote = "downvote"
)

// Reaction is a single vote cast by a user on a report.
type Reaction struct {
	ID        int64  `json:"id"`
	ReportID  int64  `json:"reporte_id"`
	UserID    int64  `json:"user_id"`
	Kind      string `json:"tipo"`
	CreatedAt string `json:"created_at"`
}

// CreateReactionRequest is the payload for POST /Reacciones.
type CreateReactionRequest struct {
	ReportID int64  `json:"reporte_id" binding:"required"`
	UserID   int64  `json:"user_id" binding:"required"`
	Kind     string `json:"tipo" binding:"required"`
}

// UpdateReactionRequest is the payload for PATCH /Reacciones/:id.
type UpdateReactionRequest struct {
	ReportID *int64  `json:"reporte_id"`
	UserID   *int64  `json:"user_id"`
	Kind     *string `json:"tipo"`
}
