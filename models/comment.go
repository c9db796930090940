package models

// Comment is a plain discussion message attached to a report.
type Comment struct {
	ID        int64  `json:"id"`
	ReportID  int64  `json:"reporte_id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"mensaje"`
	CreatedAt string `json:"created_at"`
}

// CreateCommentRequest is the payload for POST /Comentarios.
type CreateCommentRequest struct {
	ReportID int64  `json:"reporte_id" binding:"required"`
	UserID   int64  `json:"user_id" binding:"required"`
	Message  string `json:"mensaje" binding:"required"`
}

// UpdateCommentRequest is the payload for PATCH /Comentarios/:id.
type UpdateCommentRequest struct {
	ReportID *int64  `json:"reporte_id"`
	UserID   *int64  `json:"user_id"`
	Message  *string `json:"mensaje"`
}
