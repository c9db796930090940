package models

// CommunityNote is a free-text fact-check annotation on a report.
// Truthful is tri-state: true, false, or nil for a neutral note.
type CommunityNote struct {
	ID        int64  `json:"id"`
	ReportID  int64  `json:"reporte_id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"nota"`
	Truthful  *bool  `json:"es_veraz"`
	CreatedAt string `json:"created_at"`
}

// CreateNoteRequest is the payload for POST /Notas_Comunidad.
type CreateNoteRequest struct {
	ReportID int64  `json:"reporte_id" binding:"required"`
	UserID   int64  `json:"user_id" binding:"required"`
	Text     string `json:"nota" binding:"required"`
	Truthful *bool  `json:"es_veraz"`
}

// UpdateNoteRequest is the payload for PATCH /Notas_Comunidad/:id.
type UpdateNoteRequest struct {
	ReportID *int64  `json:"reporte_id"`
	UserID   *int64  `json:"user_id"`
	Text     *string `json:"nota"`
	Truthful *bool   `json:"es_veraz"`
}
