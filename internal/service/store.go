package service

import (
	"context"
	"errors"

	"github.com/hray3182/calendar/internal/models"
)

// Store is the persistence collaborator the service writes through.
// Implementations assign ids on create and a shared repeat id to every
// recurring member of a batch.
type Store interface {
	List(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, e models.Event) (models.Event, error)
	CreateBatch(ctx context.Context, events []models.Event) ([]models.Event, error)
	Update(ctx context.Context, e models.Event) (models.Event, error)
	UpdateBatch(ctx context.Context, events []models.Event) ([]models.Event, error)
	UpdateSeries(ctx context.Context, seriesID string, patch models.SeriesPatch) ([]models.Event, error)
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) error
	DeleteSeries(ctx context.Context, seriesID string) error
}

// classify keeps not-found and validation failures as they are and wraps
// everything else as a transport failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *models.TransportError
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalid) || errors.As(err, &te) {
		return err
	}
	return &models.TransportError{Op: op, Err: err}
}
