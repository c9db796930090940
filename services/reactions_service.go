package services

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"safe2gether/models"
	"safe2gether/supabase"
)

// ReactionsService manages up/down votes on reports and triggers the
// incremental veracity recomputation on every mutation.
type ReactionsService struct {
	store    RecordStore
	veracity *VeracityAggregator
}

// NewReactionsService creates a reactions service.
func NewReactionsService(store RecordStore, veracity *VeracityAggregator) *ReactionsService {
	return &ReactionsService{store: store, veracity: veracity}
}

// List returns every reaction.
func (s *ReactionsService) List(ctx context.Context) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	err := s.store.List(ctx, TableReactions, supabase.ListOptions{}, &reactions)
	return reactions, err
}

// ListByReport returns the reactions attached to a report.
func (s *ReactionsService) ListByReport(ctx context.Context, reportID int64) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	err := s.store.List(ctx, TableReactions, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("reporte_id", reportID)},
	}, &reactions)
	return reactions, err
}

// ListByUser returns the reactions cast by a user.
func (s *ReactionsService) ListByUser(ctx context.Context, userID int64) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	err := s.store.List(ctx, TableReactions, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("user_id", userID)},
	}, &reactions)
	return reactions, err
}

// Get returns a single reaction by id.
func (s *ReactionsService) Get(ctx context.Context, id int64) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := s.store.Get(ctx, TableReactions, id, &reaction); err != nil {
		return nil, err
	}
	return &reaction, nil
}

// Create stores a new reaction and applies the none→kind veracity
// delta to its report. The reaction write is the primary operation: a
// recompute failure is logged and the created row is still returned.
func (s *ReactionsService) Create(ctx context.Context, req *models.CreateReactionRequest) (*models.Reaction, error) {
	var created models.Reaction
	err := s.store.Create(ctx, TableReactions, map[string]any{
		"reporte_id": req.ReportID,
		"user_id":    req.UserID,
		"tipo":       req.Kind,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("create reaction: %w", err)
	}

	s.recompute(ctx, created.ReportID, "", created.Kind)
	return &created, nil
}

// Update patches a reaction and applies the old→new veracity delta.
// Moving a reaction to another report is treated as a removal from the
// old report plus an addition to the new one.
func (s *ReactionsService) Update(ctx context.Context, id int64, req *models.UpdateReactionRequest) (*models.Reaction, error) {
	var before models.Reaction
	if err := s.store.Get(ctx, TableReactions, id, &before); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.ReportID != nil {
		fields["reporte_id"] = *req.ReportID
	}
	if req.UserID != nil {
		fields["user_id"] = *req.UserID
	}
	if req.Kind != nil {
		fields["tipo"] = *req.Kind
	}

	var updated models.Reaction
	if err := s.store.Update(ctx, TableReactions, id, fields, &updated); err != nil {
		return nil, err
	}

	if updated.ReportID == before.ReportID {
		s.recompute(ctx, updated.ReportID, before.Kind, updated.Kind)
	} else {
		s.recompute(ctx, before.ReportID, before.Kind, "")
		s.recompute(ctx, updated.ReportID, "", updated.Kind)
	}
	return &updated, nil
}

// Delete removes a reaction and applies the kind→none veracity delta.
func (s *ReactionsService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	var before models.Reaction
	err := s.store.Get(ctx, TableReactions, id, &before)
	known := err == nil

	deleted, err := s.store.Delete(ctx, TableReactions, id)
	if err != nil {
		return nil, err
	}

	if known && deleted > 0 {
		s.recompute(ctx, before.ReportID, before.Kind, "")
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// recompute applies a veracity delta, logging instead of propagating:
// the vote mutation already succeeded.
func (s *ReactionsService) recompute(ctx context.Context, reportID int64, oldKind, newKind string) {
	if err := s.veracity.ApplyReactionDelta(ctx, reportID, oldKind, newKind); err != nil {
		log.WithError(err).Warnf("Veracity delta failed for report %d (%s→%s)", reportID, oldKind, newKind)
	}
}
