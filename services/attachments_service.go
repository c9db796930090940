package services

import (
	"context"

	"safe2gether/models"
	"safe2gether/supabase"
)

// AttachmentsService manages media files linked to reports.
type AttachmentsService struct {
	store RecordStore
}

func NewAttachmentsService(store RecordStore) *AttachmentsService {
	return &AttachmentsService{store: store}
}

// List returns every attachment.
func (s *AttachmentsService) List(ctx context.Context) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	err := s.store.List(ctx, TableAttachments, supabase.ListOptions{}, &attachments)
	return attachments, err
}

// ListByReport returns the attachments of one report.
func (s *AttachmentsService) ListByReport(ctx context.Context, reportID int64) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	err := s.store.List(ctx, TableAttachments, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("reporte_id", reportID)},
	}, &attachments)
	return attachments, err
}

// ListByReports returns the attachments of a batch of reports in a
// single store round-trip.
func (s *AttachmentsService) ListByReports(ctx context.Context, reportIDs []int64) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	if len(reportIDs) == 0 {
		return attachments, nil
	}
	err := s.store.List(ctx, TableAttachments, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.In("reporte_id", reportIDs)},
	}, &attachments)
	return attachments, err
}

// Get returns a single attachment by id.
func (s *AttachmentsService) Get(ctx context.Context, id int64) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := s.store.Get(ctx, TableAttachments, id, &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Create stores a new attachment.
func (s *AttachmentsService) Create(ctx context.Context, req *models.CreateAttachmentRequest) (*models.Attachment, error) {
	fields := map[string]any{
		"reporte_id": req.ReportID,
		"url":        req.URL,
		"tipo":       req.Kind,
	}
	var created models.Attachment
	if err := s.store.Create(ctx, TableAttachments, fields, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches an attachment.
func (s *AttachmentsService) Update(ctx context.Context, id int64, req *models.UpdateAttachmentRequest) (*models.Attachment, error) {
	fields := map[string]any{}
	if req.ReportID != nil {
		fields["reporte_id"] = *req.ReportID
	}
	if req.URL != nil {
		fields["url"] = *req.URL
	}
	if req.Kind != nil {
		fields["tipo"] = *req.Kind
	}
	var updated models.Attachment
	if err := s.store.Update(ctx, TableAttachments, id, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an attachment.
func (s *AttachmentsService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	deleted, err := s.store.Delete(ctx, TableAttachments, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: deleted}, nil
}
