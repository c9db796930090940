package models

// Attachment is a media file (image, video) linked to a report.
type Attachment struct {
	ID        int64  `json:"id"`
	ReportID  int64  `json:"reporte_id"`
	URL       string `json:"url"`
	Kind      string `json:"tipo"`
	CreatedAt string `json:"created_at"`
}

// CreateAttachmentRequest is the payload for POST /Adjuntos.
type CreateAttachmentRequest struct {
	ReportID int64  `json:"reporte_id" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Kind     string `json:"tipo" binding:"required"`
}

// UpdateAttachmentRequest is the payload for PATCH /Adjuntos/:id.
type UpdateAttachmentRequest struct {
	ReportID *int64  `json:"reporte_id"`
	URL      *string `json:"url"`
	Kind     *string `json:"tipo"`
}
