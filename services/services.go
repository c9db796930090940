// Package services implements the business logic of the safe2gether
// backend: entity CRUD on top of the Supabase record store plus the
// derived-state engine (veracity aggregation, risk scoring, district
// ranking).
package services

import (
	"context"
	"time"

	"safe2gether/models"
	"safe2gether/supabase"
)

// Supabase table names.
const (
	TableReports     = "Reportes"
	TableReactions   = "Reaccion"
	TableNotes       = "Notas_Comunidad"
	TableComments    = "Comentarios"
	TableAttachments = "Adjunto"
	TableFollowers   = "Seguidores"
	TableAreas       = "Areas_Interes"
	TableUsers       = "Usuarios"
)

// RecordStore is the persistence contract the services program
// against. *supabase.Client is the production implementation.
type RecordStore interface {
	List(ctx context.Context, table string, opts supabase.ListOptions, dest any) error
	Get(ctx context.Context, table string, id int64, dest any) error
	Create(ctx context.Context, table string, fields map[string]any, dest any) error
	Update(ctx context.Context, table string, id int64, fields map[string]any, dest any) error
	Delete(ctx context.Context, table string, id int64) (int, error)
	DeleteWhere(ctx context.Context, table string, filters []supabase.Filter) (int, error)
}

// Geocoder resolves an administrative district name from coordinates.
type Geocoder interface {
	DistrictFor(ctx context.Context, lat, lon float64) (string, error)
}

// Notifier sends transactional notifications. All calls are treated as
// best-effort by the services: failures are logged, never propagated.
type Notifier interface {
	SendReportConfirmation(recipient, username string, reportID int64, title, category, address string) error
	SendNewReportNotification(recipient, followerName, authorName, title string, reportID int64, district string) error
	SendRiskAlert(recipient, username string, risk *models.RiskAssessment) error
	SendPasswordReset(recipient, username, token string) error
}

// DeleteResponse is the body returned by every DELETE endpoint.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseCreatedAt parses a PostgREST timestamp. The second layout covers
// timestamp-without-timezone columns.
func parseCreatedAt(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range createdAtLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// withinWindow reports whether a row's created_at falls at or after the
// cutoff. Rows with a missing or unparseable timestamp are treated as
// within the window (fail-open), so a bad row is never silently lost
// from an aggregate.
func withinWindow(createdAt string, cutoff time.Time) bool {
	if createdAt == "" {
		return true
	}
	t, err := parseCreatedAt(createdAt)
	if err != nil {
		return true
	}
	return !t.Before(cutoff)
}
