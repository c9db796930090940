package services

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"safe2gether/models"
	"safe2gether/supabase"
)

// riskFetchLimit bounds how many recent reports the risk scorer and
// notification sweep read per invocation. Best-effort cap, not a
// completeness guarantee.
const riskFetchLimit = 1000

// notifyTimeout bounds the fire-and-forget notification goroutines.
const notifyTimeout = 15 * time.Second

// ReportsService manages safety reports and their derived fields.
type ReportsService struct {
	store    RecordStore
	geocoder Geocoder
	notifier Notifier
}

// NewReportsService creates a reports service. geocoder and notifier
// may be nil, disabling district auto-population and emails.
func NewReportsService(store RecordStore, geocoder Geocoder, notifier Notifier) *ReportsService {
	return &ReportsService{store: store, geocoder: geocoder, notifier: notifier}
}

// List returns every report.
func (s *ReportsService) List(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	err := s.store.List(ctx, TableReports, supabase.ListOptions{}, &reports)
	return reports, err
}

// ListByUser returns the reports submitted by a user.
func (s *ReportsService) ListByUser(ctx context.Context, userID int64) ([]models.Report, error) {
	reports := []models.Report{}
	err := s.store.List(ctx, TableReports, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("user_id", userID)},
	}, &reports)
	return reports, err
}

// Get returns a single report by id.
func (s *ReportsService) Get(ctx context.Context, id int64) (*models.Report, error) {
	var report models.Report
	if err := s.store.Get(ctx, TableReports, id, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Create stores a new report. Veracity defaults to 0 when the caller
// does not supply it; the status defaults to Activo unless the supplied
// percentage is already below 33. When coordinates are present the
// district is resolved through the geocoder; a geocoding failure only
// costs the district. Confirmation and follower notification emails go
// out asynchronously.
func (s *ReportsService) Create(ctx context.Context, req *models.CreateReportRequest) (*models.Report, error) {
	veracity := 0.0
	if req.Veracity != nil {
		veracity = *req.Veracity
	}
	status := req.Status
	if status == "" {
		status = models.StatusActive
		if veracity < 33 && req.Veracity != nil {
			status = models.StatusFalse
		}
	}

	fields := map[string]any{
		"user_id":              req.UserID,
		"titulo":               req.Title,
		"descripcion":          req.Description,
		"categoria":            req.Category,
		"direccion":            req.Address,
		"estado":               status,
		"veracidad_porcentaje": veracity,
		"cantidad_upvotes":     req.Upvotes,
		"cantidad_downvotes":   req.Downvotes,
	}
	if req.Lat != nil {
		fields["lat"] = *req.Lat
	}
	if req.Lon != nil {
		fields["lon"] = *req.Lon
	}

	if s.geocoder != nil && req.Lat != nil && req.Lon != nil {
		district, err := s.geocoder.DistrictFor(ctx, *req.Lat, *req.Lon)
		if err != nil {
			log.WithError(err).Warnf("District lookup failed for (%f, %f), creating report without district", *req.Lat, *req.Lon)
		} else {
			fields["distrito"] = district
		}
	}

	var created models.Report
	if err := s.store.Create(ctx, TableReports, fields, &created); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.notifyCreated(created)
	return &created, nil
}

// Update patches a report. Mirroring the write API contract: when vote
// counters arrive without an explicit veracity percentage, the
// percentage is recomputed from the resulting counters.
func (s *ReportsService) Update(ctx context.Context, id int64, req *models.UpdateReportRequest) (*models.Report, error) {
	fields := map[string]any{}
	if req.Title != nil {
		fields["titulo"] = *req.Title
	}
	if req.Description != nil {
		fields["descripcion"] = *req.Description
	}
	if req.Category != nil {
		fields["categoria"] = *req.Category
	}
	if req.Lat != nil {
		fields["lat"] = *req.Lat
	}
	if req.Lon != nil {
		fields["lon"] = *req.Lon
	}
	if req.Address != nil {
		fields["direccion"] = *req.Address
	}
	if req.District != nil {
		fields["distrito"] = *req.District
	}
	if req.Status != nil {
		fields["estado"] = *req.Status
	}
	if req.Veracity != nil {
		fields["veracidad_porcentaje"] = *req.Veracity
	}
	if req.Upvotes != nil {
		fields["cantidad_upvotes"] = *req.Upvotes
	}
	if req.Downvotes != nil {
		fields["cantidad_downvotes"] = *req.Downvotes
	}

	if req.Veracity == nil && (req.Upvotes != nil || req.Downvotes != nil) {
		var current models.Report
		if err := s.store.Get(ctx, TableReports, id, &current); err == nil {
			upvotes := current.Upvotes
			if req.Upvotes != nil {
				upvotes = *req.Upvotes
			}
			downvotes := current.Downvotes
			if req.Downvotes != nil {
				downvotes = *req.Downvotes
			}
			total := upvotes + downvotes
			percentage := 0.0
			if total > 0 {
				percentage = float64(upvotes) / float64(total) * 100.0
			}
			fields["veracidad_porcentaje"] = percentage
		}
	}

	var updated models.Report
	if err := s.store.Update(ctx, TableReports, id, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// BackfillSummary is the body returned by the district backfill.
type BackfillSummary struct {
	Examined int `json:"examinados"`
	Updated  int `json:"actualizados"`
	Skipped  int `json:"omitidos"`
}

// BackfillDistricts resolves the district for every report that has
// coordinates but no district yet. Geocoder failures skip the report
// and the sweep keeps going.
func (s *ReportsService) BackfillDistricts(ctx context.Context) (*BackfillSummary, error) {
	if s.geocoder == nil {
		return nil, validationErrorf("geocoder is not configured")
	}
	// A never-geocoded report carries a NULL district; an emptied one
	// carries "". Both need the sweep.
	reports := []models.Report{}
	for _, filter := range []supabase.Filter{supabase.IsNull("distrito"), supabase.Eq("distrito", "")} {
		batch := []models.Report{}
		if err := s.store.List(ctx, TableReports, supabase.ListOptions{
			Filters: []supabase.Filter{filter},
		}, &batch); err != nil {
			return nil, err
		}
		reports = append(reports, batch...)
	}

	summary := &BackfillSummary{}
	for i := range reports {
		r := &reports[i]
		if !r.HasCoordinates() {
			continue
		}
		summary.Examined++
		district, err := s.geocoder.DistrictFor(ctx, *r.Lat, *r.Lon)
		if err != nil {
			log.WithError(err).Warnf("Backfill: district lookup failed for report %d", r.ID)
			summary.Skipped++
			continue
		}
		var updated models.Report
		if err := s.store.Update(ctx, TableReports, r.ID, map[string]any{"distrito": district}, &updated); err != nil {
			log.WithError(err).Warnf("Backfill: district write failed for report %d", r.ID)
			summary.Skipped++
			continue
		}
		summary.Updated++
	}
	return summary, nil
}

// Delete removes a report.
func (s *ReportsService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	deleted, err := s.store.Delete(ctx, TableReports, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// notifyCreated sends the confirmation email to the author and the
// new-report notification to each of the author's followers. Runs in a
// detached goroutine; failures are logged and never reach the caller.
func (s *ReportsService) notifyCreated(report models.Report) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		var author models.User
		if err := s.store.Get(ctx, TableUsers, report.UserID, &author); err != nil {
			log.WithError(err).Warnf("Report %d: author %d lookup failed, skipping notifications", report.ID, report.UserID)
			return
		}

		district := report.District
		if district == "" {
			district = models.NoDistrict
		}

		if author.Email != "" {
			if err := s.notifier.SendReportConfirmation(author.Email, author.Username, report.ID, report.Title, report.Category, report.Address); err != nil {
				log.WithError(err).Warnf("Report %d: confirmation email to %s failed", report.ID, author.Email)
			}
		}

		followers := []models.Follower{}
		if err := s.store.List(ctx, TableFollowers, supabase.ListOptions{
			Filters: []supabase.Filter{supabase.Eq("seguido_id", report.UserID)},
		}, &followers); err != nil {
			log.WithError(err).Warnf("Report %d: follower lookup failed", report.ID)
			return
		}

		for _, f := range followers {
			var follower models.User
			if err := s.store.Get(ctx, TableUsers, f.FollowerID, &follower); err != nil {
				log.WithError(err).Warnf("Report %d: follower %d lookup failed", report.ID, f.FollowerID)
				continue
			}
			if follower.Email == "" {
				continue
			}
			if err := s.notifier.SendNewReportNotification(follower.Email, follower.Username, author.Username, report.Title, report.ID, district); err != nil {
				log.WithError(err).Warnf("Report %d: notification to %s failed", report.ID, follower.Email)
			}
		}
	}()
}
