package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"

	"safe2gether/models"
	"safe2gether/supabase"
)

// NotesService manages community fact-check notes and triggers the
// full veracity recomputation whenever a note's vote contribution may
// have changed.
type NotesService struct {
	store    RecordStore
	veracity *VeracityAggregator
}

// NewNotesService creates a community-notes service.
func NewNotesService(store RecordStore, veracity *VeracityAggregator) *NotesService {
	return &NotesService{store: store, veracity: veracity}
}

// List returns every community note.
func (s *NotesService) List(ctx context.Context) ([]models.CommunityNote, error) {
	notes := []models.CommunityNote{}
	err := s.store.List(ctx, TableNotes, supabase.ListOptions{}, &notes)
	return notes, err
}

// ListByReport returns the notes attached to a report.
func (s *NotesService) ListByReport(ctx context.Context, reportID int64) ([]models.CommunityNote, error) {
	notes := []models.CommunityNote{}
	err := s.store.List(ctx, TableNotes, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("reporte_id", reportID)},
	}, &notes)
	return notes, err
}

// ListByUser returns the notes written by a user.
func (s *NotesService) ListByUser(ctx context.Context, userID int64) ([]models.CommunityNote, error) {
	notes := []models.CommunityNote{}
	err := s.store.List(ctx, TableNotes, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("user_id", userID)},
	}, &notes)
	return notes, err
}

// Get returns a single note by id.
func (s *NotesService) Get(ctx context.Context, id int64) (*models.CommunityNote, error) {
	var note models.CommunityNote
	if err := s.store.Get(ctx, TableNotes, id, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Create stores a new note and recomputes its report's veracity from
// all live sources. Empty note text is rejected before any write.
func (s *NotesService) Create(ctx context.Context, req *models.CreateNoteRequest) (*models.CommunityNote, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, validationErrorf("La nota no puede estar vacía")
	}

	fields := map[string]any{
		"reporte_id": req.ReportID,
		"user_id":    req.UserID,
		"nota":       text,
	}
	if req.Truthful != nil {
		fields["es_veraz"] = *req.Truthful
	}

	var created models.CommunityNote
	if err := s.store.Create(ctx, TableNotes, fields, &created); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.recompute(ctx, created.ReportID)
	return &created, nil
}

// Update patches a note. The report's veracity is recomputed only when
// the truthfulness flag actually changes; text edits leave the derived
// state alone.
func (s *NotesService) Update(ctx context.Context, id int64, req *models.UpdateNoteRequest) (*models.CommunityNote, error) {
	var before models.CommunityNote
	if err := s.store.Get(ctx, TableNotes, id, &before); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.ReportID != nil {
		fields["reporte_id"] = *req.ReportID
	}
	if req.UserID != nil {
		fields["user_id"] = *req.UserID
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, validationErrorf("La nota no puede estar vacía")
		}
		fields["nota"] = text
	}
	truthChanged := false
	if req.Truthful != nil {
		truthChanged = before.Truthful == nil || *before.Truthful != *req.Truthful
		fields["es_veraz"] = *req.Truthful
	}

	var updated models.CommunityNote
	if err := s.store.Update(ctx, TableNotes, id, fields, &updated); err != nil {
		return nil, err
	}

	moved := updated.ReportID != before.ReportID
	if truthChanged || (moved && before.Truthful != nil) {
		if moved {
			s.recompute(ctx, before.ReportID)
		}
		s.recompute(ctx, updated.ReportID)
	}
	return &updated, nil
}

// Delete removes a note and recomputes its report's veracity.
func (s *NotesService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	var before models.CommunityNote
	err := s.store.Get(ctx, TableNotes, id, &before)
	known := err == nil

	deleted, err := s.store.Delete(ctx, TableNotes, id)
	if err != nil {
		return nil, err
	}

	if known && deleted > 0 {
		s.recompute(ctx, before.ReportID)
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// recompute runs the full recomputation, logging instead of
// propagating: the note mutation already succeeded.
func (s *NotesService) recompute(ctx context.Context, reportID int64) {
	if err := s.veracity.RecomputeFromSources(ctx, reportID); err != nil {
		log.WithError(err).Warnf("Veracity recompute failed for report %d", reportID)
	}
}
