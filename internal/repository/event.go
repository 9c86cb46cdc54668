package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hray3182/calendar/internal/database"
	"github.com/hray3182/calendar/internal/models"
)

const eventColumns = `id, title, date, start_time, end_time, description, location, category,
	 repeat_type, repeat_interval, repeat_end_date, repeat_id, notification_time`

const insertEvent = `INSERT INTO events (` + eventColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const updateEvent = `UPDATE events SET title = $2, date = $3, start_time = $4, end_time = $5,
	 description = $6, location = $7, category = $8, repeat_type = $9, repeat_interval = $10,
	 repeat_end_date = $11, repeat_id = $12, notification_time = $13
	 WHERE id = $1`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC, start_time ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (models.Event, error) {
	e, err := scanEvent(r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Event{}, models.EventNotFound(id)
	}
	return e, err
}

func (r *EventRepository) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = uuid.NewString()
	args, err := eventArgs(e)
	if err != nil {
		return models.Event{}, err
	}
	if _, err := r.db.Pool.Exec(ctx, insertEvent, args...); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// CreateBatch inserts events in one transaction. Recurring members share one
// freshly generated series id.
func (r *EventRepository) CreateBatch(ctx context.Context, events []models.Event) ([]models.Event, error) {
	seriesID := uuid.NewString()
	created := make([]models.Event, len(events))
	batch := &pgx.Batch{}
	for i, e := range events {
		e.ID = uuid.NewString()
		if e.IsRecurring() {
			e.Repeat.ID = seriesID
		}
		args, err := eventArgs(e)
		if err != nil {
			return nil, err
		}
		batch.Queue(insertEvent, args...)
		created[i] = e
	}

	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *EventRepository) Update(ctx context.Context, e models.Event) (models.Event, error) {
	args, err := eventArgs(e)
	if err != nil {
		return models.Event{}, err
	}
	tag, err := r.db.Pool.Exec(ctx, updateEvent, args...)
	if err != nil {
		return models.Event{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.Event{}, models.EventNotFound(e.ID)
	}
	return e, nil
}

// UpdateBatch updates every listed event that exists and returns those. It
// fails with not found only when none of them exist.
func (r *EventRepository) UpdateBatch(ctx context.Context, events []models.Event) ([]models.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	var updated []models.Event
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		for _, e := range events {
			args, err := eventArgs(e)
			if err != nil {
				return err
			}
			tag, err := tx.Exec(ctx, updateEvent, args...)
			if err != nil {
				return fmt.Errorf("failed to update event %s: %w", e.ID, err)
			}
			if tag.RowsAffected() > 0 {
				updated = append(updated, e)
			}
		}
		if len(updated) == 0 {
			return models.EventNotFound(events[0].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateSeries applies patch to every member of the series inside one
// transaction, with the members locked while the day offset is computed.
func (r *EventRepository) UpdateSeries(ctx context.Context, seriesID string, patch models.SeriesPatch) ([]models.Event, error) {
	var updated []models.Event
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+eventColumns+` FROM events WHERE repeat_id = $1 ORDER BY date ASC FOR UPDATE`,
			seriesID,
		)
		if err != nil {
			return err
		}
		members, err := scanEvents(rows)
		rows.Close()
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return models.SeriesNotFound(seriesID)
		}

		updated, err = patch.Apply(members)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, e := range updated {
			args, err := eventArgs(e)
			if err != nil {
				return err
			}
			batch.Queue(updateEvent, args...)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.EventNotFound(id)
	}
	return nil
}

// DeleteBatch removes every listed id that exists. Unknown ids are ignored.
func (r *EventRepository) DeleteBatch(ctx context.Context, ids []string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = ANY($1)`, ids)
	return err
}

func (r *EventRepository) DeleteSeries(ctx context.Context, seriesID string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE repeat_id = $1`, seriesID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.SeriesNotFound(seriesID)
	}
	return nil
}

func eventArgs(e models.Event) ([]any, error) {
	date, err := models.ParseDate(e.Date)
	if err != nil {
		return nil, &models.ValidationError{Field: "date", Message: "invalid date " + e.Date}
	}

	var endDate *time.Time
	if e.Repeat.EndDate != "" {
		d, err := models.ParseDate(e.Repeat.EndDate)
		if err != nil {
			return nil, &models.ValidationError{Field: "repeat.endDate", Message: "invalid end date " + e.Repeat.EndDate}
		}
		endDate = &d
	}

	var repeatID *string
	if e.Repeat.ID != "" {
		repeatID = &e.Repeat.ID
	}

	repeatType := e.Repeat.Type
	if repeatType == "" {
		repeatType = models.RepeatNone
	}

	return []any{
		e.ID, e.Title, date, e.StartTime, e.EndTime, e.Description, e.Location, e.Category,
		string(repeatType), e.Repeat.Interval, endDate, repeatID, e.NotificationTime,
	}, nil
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var (
		e          models.Event
		date       time.Time
		repeatType string
		endDate    *time.Time
		repeatID   *string
	)
	if err := row.Scan(&e.ID, &e.Title, &date, &e.StartTime, &e.EndTime, &e.Description,
		&e.Location, &e.Category, &repeatType, &e.Repeat.Interval, &endDate, &repeatID,
		&e.NotificationTime); err != nil {
		return models.Event{}, err
	}

	e.Date = models.FormatDate(date)
	e.Repeat.Type = models.RepeatType(repeatType)
	if endDate != nil {
		e.Repeat.EndDate = models.FormatDate(*endDate)
	}
	if repeatID != nil {
		e.Repeat.ID = *repeatID
	}
	return e, nil
}

func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
