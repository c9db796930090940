package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safe2gether/models"
)

func TestCreateNoteRejectsEmptyText(t *testing.T) {
	service := NewNotesService(newFakeStore(), NewVeracityAggregator(newFakeStore()))

	_, err := service.Create(context.Background(), &models.CreateNoteRequest{
		ReportID: 1,
		UserID:   2,
		Text:     "   ",
	})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateTruthfulNoteRecomputesReport(t *testing.T) {
	store := newFakeStore()
	service := NewNotesService(store, NewVeracityAggregator(store))
	reportID := seedReport(store, nil)

	_, err := service.Create(context.Background(), &models.CreateNoteRequest{
		ReportID: reportID,
		UserID:   2,
		Text:     "confirmado, estuve ahi",
		Truthful: boolPtr(true),
	})
	require.NoError(t, err)

	report := storedReport(t, store, reportID)
	assert.Equal(t, 1, report.Upvotes)
	assert.Equal(t, 100.0, report.Veracity)
	assert.Equal(t, models.StatusVerified, report.Status)
}

func TestCreateNeutralNoteStillRecomputes(t *testing.T) {
	store := newFakeStore()
	service := NewNotesService(store, NewVeracityAggregator(store))
	reportID := seedReport(store, map[string]any{"veracidad_porcentaje": 10.0, "estado": models.StatusFalse})

	_, err := service.Create(context.Background(), &models.CreateNoteRequest{
		ReportID: reportID,
		UserID:   2,
		Text:     "sin confirmar",
	})
	require.NoError(t, err)

	// Zero votes under the full rule: 50% and Activo.
	report := storedReport(t, store, reportID)
	assert.Equal(t, 50.0, report.Veracity)
	assert.Equal(t, models.StatusActive, report.Status)
}

func TestUpdateNoteTextOnlyLeavesDerivedStateAlone(t *testing.T) {
	store := newFakeStore()
	service := NewNotesService(store, NewVeracityAggregator(store))
	reportID := seedReport(store, map[string]any{"veracidad_porcentaje": 75.0, "estado": models.StatusVerified})
	noteID := store.seed(TableNotes, map[string]any{
		"reporte_id": reportID,
		"user_id":    int64(2),
		"nota":       "texto original",
		"es_veraz":   true,
	})

	newText := "texto corregido"
	_, err := service.Update(context.Background(), noteID, &models.UpdateNoteRequest{Text: &newText})
	require.NoError(t, err)

	report := storedReport(t, store, reportID)
	assert.Equal(t, 75.0, report.Veracity)
	assert.Equal(t, models.StatusVerified, report.Status)
}

func TestUpdateNoteTruthFlipRecomputes(t *testing.T) {
	store := newFakeStore()
	service := NewNotesService(store, NewVeracityAggregator(store))
	reportID := seedReport(store, nil)
	noteID := store.seed(TableNotes, map[string]any{
		"reporte_id": reportID,
		"user_id":    int64(2),
		"nota":       "lo vi",
		"es_veraz":   true,
	})

	_, err := service.Update(context.Background(), noteID, &models.UpdateNoteRequest{Truthful: boolPtr(false)})
	require.NoError(t, err)

	report := storedReport(t, store, reportID)
	assert.Equal(t, 0, report.Upvotes)
	assert.Equal(t, 1, report.Downvotes)
	assert.Equal(t, 0.0, report.Veracity)
	assert.Equal(t, models.StatusDoubtful, report.Status)
}

func TestUpdateNoteMoveRecomputesBothReports(t *testing.T) {
	store := newFakeStore()
	service := NewNotesService(store, NewVeracityAggregator(store))
	firstID := seedReport(store, nil)
	secondID := seedReport(store, nil)
	noteID := store.seed(TableNotes, map[string]any{
		"reporte_id": firstID,
		"user_id":    int64(2),
		"nota":       "lo vi",
		"es_veraz":   true,
	})

	_, err := service.Update(context.Background(), noteID, &models.UpdateNoteRequest{ReportID: &secondID})
	require.NoError(t, err)

	first := storedReport(t, store, firstID)
	second := storedReport(t, store, secondID)
	assert.Equal(t, 0, first.Upvotes)
	assert.Equal(t, 1, second.Upvotes)
}

func TestDeleteNoteRecomputes(t *testing.T) {
	store := newFakeStore()
	service := NewNotesService(store, NewVeracityAggregator(store))
	reportID := seedReport(store, map[string]any{"cantidad_upvotes": 1, "veracidad_porcentaje": 100.0})
	noteID := store.seed(TableNotes, map[string]any{
		"reporte_id": reportID,
		"user_id":    int64(2),
		"nota":       "lo vi",
		"es_veraz":   true,
	})

	resp, err := service.Delete(context.Background(), noteID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Deleted)

	report := storedReport(t, store, reportID)
	assert.Equal(t, 0, report.Upvotes)
	assert.Equal(t, 50.0, report.Veracity)
	assert.Equal(t, models.StatusActive, report.Status)
}
