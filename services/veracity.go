package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"safe2gether/metrics"
	"safe2gether/models"
	"safe2gether/supabase"
)

// VeracityAggregator keeps a report's vote counters, veracity
// percentage and status consistent with its live reactions and
// community notes.
//
// Two strategies coexist, reflecting their different trigger paths:
// community-note changes re-read every vote source (RecomputeFromSources),
// while reaction changes patch the stored counters with a transition
// delta (ApplyReactionDelta). The two rules intentionally disagree on
// the zero-vote default (50 vs 0) and the status thresholds (70/40 vs
// 33); see DESIGN.md before touching either.
//
// Recomputation is a read-then-write sequence with no locking: two
// concurrent mutations on the same report can race and the last writer
// wins. That is accepted; the aggregator is a best-effort side effect
// of an already-committed vote write.
type VeracityAggregator struct {
	store RecordStore
}

// NewVeracityAggregator creates a veracity aggregator on the given
// record store.
func NewVeracityAggregator(store RecordStore) *VeracityAggregator {
	return &VeracityAggregator{store: store}
}

// RecomputeFromSources recomputes a report's counters from every live
// reaction and community note. Used on community-note changes.
//
// upvotes   = #(reactions tipo=upvote)   + #(notes es_veraz=true)
// downvotes = #(reactions tipo=downvote) + #(notes es_veraz=false)
// percentage = up/(up+down)*100, or 50.0 with no votes
// estado: ≥70 Verificado, ≥40 Activo, else Dudoso
//
// A missing report is skipped silently: the triggering note write has
// already succeeded and this is a secondary effect.
func (a *VeracityAggregator) RecomputeFromSources(ctx context.Context, reportID int64) error {
	var report models.Report
	if err := a.store.Get(ctx, TableReports, reportID, &report); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			log.Warnf("Veracity recompute: report %d not found, skipping", reportID)
			metrics.VeracityRecomputeTotal.WithLabelValues("full", "skipped").Inc()
			return nil
		}
		metrics.VeracityRecomputeTotal.WithLabelValues("full", "error").Inc()
		return fmt.Errorf("fetch report %d: %w", reportID, err)
	}

	var reactions []models.Reaction
	if err := a.store.List(ctx, TableReactions, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("reporte_id", reportID)},
	}, &reactions); err != nil {
		metrics.VeracityRecomputeTotal.WithLabelValues("full", "error").Inc()
		return fmt.Errorf("list reactions for report %d: %w", reportID, err)
	}

	var notes []models.CommunityNote
	if err := a.store.List(ctx, TableNotes, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("reporte_id", reportID)},
	}, &notes); err != nil {
		metrics.VeracityRecomputeTotal.WithLabelValues("full", "error").Inc()
		return fmt.Errorf("list notes for report %d: %w", reportID, err)
	}

	upvotes, downvotes := countVotes(reactions, notes)
	percentage := fullPercentage(upvotes, downvotes)
	status := fullStatus(percentage)

	if err := a.writeBack(ctx, reportID, upvotes, downvotes, percentage, status); err != nil {
		metrics.VeracityRecomputeTotal.WithLabelValues("full", "error").Inc()
		return err
	}
	metrics.VeracityRecomputeTotal.WithLabelValues("full", "ok").Inc()
	return nil
}

// ApplyReactionDelta patches a report's stored counters for a vote-kind
// transition. Used on reaction create (none→kind), update (old→new)
// and delete (kind→none).
//
// percentage = up/(up+down)*100, or 0.0 with no votes
// estado: <33 Falso, else Activo
func (a *VeracityAggregator) ApplyReactionDelta(ctx context.Context, reportID int64, oldKind, newKind string) error {
	dUp, dDown := reactionDelta(oldKind, newKind)
	if dUp == 0 && dDown == 0 {
		return nil
	}

	var report models.Report
	if err := a.store.Get(ctx, TableReports, reportID, &report); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			log.Warnf("Veracity delta: report %d not found, skipping", reportID)
			metrics.VeracityRecomputeTotal.WithLabelValues("delta", "skipped").Inc()
			return nil
		}
		metrics.VeracityRecomputeTotal.WithLabelValues("delta", "error").Inc()
		return fmt.Errorf("fetch report %d: %w", reportID, err)
	}

	upvotes := report.Upvotes + dUp
	downvotes := report.Downvotes + dDown
	if upvotes < 0 {
		upvotes = 0
	}
	if downvotes < 0 {
		downvotes = 0
	}

	percentage := deltaPercentage(upvotes, downvotes)
	status := deltaStatus(percentage)

	if err := a.writeBack(ctx, reportID, upvotes, downvotes, percentage, status); err != nil {
		metrics.VeracityRecomputeTotal.WithLabelValues("delta", "error").Inc()
		return err
	}
	metrics.VeracityRecomputeTotal.WithLabelValues("delta", "ok").Inc()
	return nil
}

func (a *VeracityAggregator) writeBack(ctx context.Context, reportID int64, upvotes, downvotes int, percentage float64, status string) error {
	var updated models.Report
	err := a.store.Update(ctx, TableReports, reportID, map[string]any{
		"cantidad_upvotes":     upvotes,
		"cantidad_downvotes":   downvotes,
		"veracidad_porcentaje": percentage,
		"estado":               status,
	}, &updated)
	if errors.Is(err, supabase.ErrNotFound) {
		// Report deleted between read and write: still non-fatal.
		log.Warnf("Veracity write-back: report %d vanished, skipping", reportID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("write veracity for report %d: %w", reportID, err)
	}
	return nil
}

// countVotes tallies vote units from reactions and tri-state notes.
func countVotes(reactions []models.Reaction, notes []models.CommunityNote) (upvotes, downvotes int) {
	for _, r := range reactions {
		switch r.Kind {
		case models.ReactionUpvote:
			upvotes++
		case models.ReactionDownvote:
			downvotes++
		}
	}
	for _, n := range notes {
		if n.Truthful == nil {
			continue
		}
		if *n.Truthful {
			upvotes++
		} else {
			downvotes++
		}
	}
	return upvotes, downvotes
}

// reactionDelta returns the counter adjustments for an old→new vote
// transition. Kinds other than upvote/downvote count as no vote.
func reactionDelta(oldKind, newKind string) (dUp, dDown int) {
	if oldKind == newKind {
		return 0, 0
	}
	switch oldKind {
	case models.ReactionUpvote:
		dUp--
	case models.ReactionDownvote:
		dDown--
	}
	switch newKind {
	case models.ReactionUpvote:
		dUp++
	case models.ReactionDownvote:
		dDown++
	}
	return dUp, dDown
}

func fullPercentage(upvotes, downvotes int) float64 {
	total := upvotes + downvotes
	if total == 0 {
		return 50.0
	}
	return float64(upvotes) / float64(total) * 100.0
}

func fullStatus(percentage float64) string {
	switch {
	case percentage >= 70:
		return models.StatusVerified
	case percentage >= 40:
		return models.StatusActive
	default:
		return models.StatusDoubtful
	}
}

func deltaPercentage(upvotes, downvotes int) float64 {
	total := upvotes + downvotes
	if total == 0 {
		return 0.0
	}
	return float64(upvotes) / float64(total) * 100.0
}

func deltaStatus(percentage float64) string {
	if percentage < 33 {
		return models.StatusFalse
	}
	return models.StatusActive
}
