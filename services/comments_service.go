package services

import (
	"context"
	"strings"

	"safe2gether/models"
	"safe2gether/supabase"
)

// CommentsService manages discussion comments on reports.
type CommentsService struct {
	store RecordStore
}

func NewCommentsService(store RecordStore) *CommentsService {
	return &CommentsService{store: store}
}

// List returns every comment.
func (s *CommentsService) List(ctx context.Context) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.store.List(ctx, TableComments, supabase.ListOptions{}, &comments)
	return comments, err
}

// ListByReport returns the comments on one report.
func (s *CommentsService) ListByReport(ctx context.Context, reportID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.store.List(ctx, TableComments, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("reporte_id", reportID)},
	}, &comments)
	return comments, err
}

// ListByUser returns the comments written by one user.
func (s *CommentsService) ListByUser(ctx context.Context, userID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.store.List(ctx, TableComments, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("user_id", userID)},
	}, &comments)
	return comments, err
}

// Get returns a single comment by id.
func (s *CommentsService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := s.store.Get(ctx, TableComments, id, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Create stores a new comment. The message must be non-empty after
// trimming.
func (s *CommentsService) Create(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, validationErrorf("mensaje must not be empty")
	}
	fields := map[string]any{
		"reporte_id": req.ReportID,
		"user_id":    req.UserID,
		"mensaje":    message,
	}
	var created models.Comment
	if err := s.store.Create(ctx, TableComments, fields, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches a comment.
func (s *CommentsService) Update(ctx context.Context, id int64, req *models.UpdateCommentRequest) (*models.Comment, error) {
	fields := map[string]any{}
	if req.ReportID != nil {
		fields["reporte_id"] = *req.ReportID
	}
	if req.UserID != nil {
		fields["user_id"] = *req.UserID
	}
	if req.Message != nil {
		message := strings.TrimSpace(*req.Message)
		if message == "" {
			return nil, validationErrorf("mensaje must not be empty")
		}
		fields["mensaje"] = message
	}
	var updated models.Comment
	if err := s.store.Update(ctx, TableComments, id, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a comment.
func (s *CommentsService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	deleted, err := s.store.Delete(ctx, TableComments, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: deleted}, nil
}
