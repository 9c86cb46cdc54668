package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/hray3182/calendar/internal/models"
)

const eventsBucket = "events"

type Config struct {
	Path string
	// Timeout bounds the wait for the file lock on open. Zero waits forever.
	Timeout time.Duration
}

// Store keeps events as JSON values in a single bbolt bucket keyed by id.
type Store struct {
	d      *bolt.DB
	bucket []byte
}

// Open opens or creates the database file and its events bucket.
func Open(c Config) (*Store, error) {
	d, err := bolt.Open(c.Path, 0600, &bolt.Options{Timeout: c.Timeout})
	if err != nil {
		return nil, fmt.Errorf("could not open db %s: %w", c.Path, err)
	}

	s := &Store{d: d, bucket: []byte(eventsBucket)}
	err = d.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
			return fmt.Errorf("unable to create bucket %s: %w", s.bucket, err)
		}
		return nil
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.d == nil {
		return nil
	}
	return s.d.Close()
}

func (s *Store) List(_ context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := s.d.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(_, raw []byte) error {
			e, err := loadItem(raw)
			if err != nil {
				return err
			}
			events = append(events, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return models.Less(events[i], events[j]) })
	return events, nil
}

func (s *Store) Get(_ context.Context, id string) (models.Event, error) {
	var e models.Event
	err := s.d.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(id))
		if raw == nil {
			return models.EventNotFound(id)
		}
		var err error
		e, err = loadItem(raw)
		return err
	})
	return e, err
}

func (s *Store) Create(_ context.Context, e models.Event) (models.Event, error) {
	e.ID = uuid.NewString()
	err := s.d.Update(func(tx *bolt.Tx) error {
		return putItem(tx.Bucket(s.bucket), e)
	})
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// CreateBatch stores events in one transaction. Recurring members share one
// freshly generated series id.
func (s *Store) CreateBatch(_ context.Context, events []models.Event) ([]models.Event, error) {
	seriesID := uuid.NewString()
	created := make([]models.Event, len(events))
	err := s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for i, e := range events {
			e.ID = uuid.NewString()
			if e.IsRecurring() {
				e.Repeat.ID = seriesID
			}
			if err := putItem(b, e); err != nil {
				return err
			}
			created[i] = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) Update(_ context.Context, e models.Event) (models.Event, error) {
	err := s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get([]byte(e.ID)) == nil {
			return models.EventNotFound(e.ID)
		}
		return putItem(b, e)
	})
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// UpdateBatch updates every listed event that exists and returns those. It
// fails with not found only when none of them exist.
func (s *Store) UpdateBatch(_ context.Context, events []models.Event) ([]models.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	var updated []models.Event
	err := s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, e := range events {
			if b.Get([]byte(e.ID)) == nil {
				continue
			}
			if err := putItem(b, e); err != nil {
				return err
			}
			updated = append(updated, e)
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

func (s *Store) UpdateSeries(_ context.Context, seriesID string, patch models.SeriesPatch) ([]models.Event, error) {
	var updated []models.Event
	err := s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		members, err := seriesMembers(b, seriesID)
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
		for _, e := range updated {
			if err := putItem(b, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	return s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get([]byte(id)) == nil {
			return models.EventNotFound(id)
		}
		return b.Delete([]byte(id))
	})
}

// DeleteBatch removes every listed id that exists. Unknown ids are ignored.
func (s *Store) DeleteBatch(_ context.Context, ids []string) error {
	return s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteSeries(_ context.Context, seriesID string) error {
	return s.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		members, err := seriesMembers(b, seriesID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return models.SeriesNotFound(seriesID)
		}
		for _, e := range members {
			if err := b.Delete([]byte(e.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func seriesMembers(b *bolt.Bucket, seriesID string) ([]models.Event, error) {
	var members []models.Event
	if seriesID == "" {
		return nil, nil
	}
	err := b.ForEach(func(_, raw []byte) error {
		e, err := loadItem(raw)
		if err != nil {
			return err
		}
		if e.Repeat.ID == seriesID {
			members = append(members, e)
		}
		return nil
	})
	sort.SliceStable(members, func(i, j int) bool { return models.Less(members[i], members[j]) })
	return members, err
}

func putItem(b *bolt.Bucket, e models.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("unable to encode event %s: %w", e.ID, err)
	}
	return b.Put([]byte(e.ID), raw)
}

func loadItem(raw []byte) (models.Event, error) {
	e := models.Event{}
	if len(raw) == 0 {
		return e, fmt.Errorf("empty raw item")
	}
	err := json.Unmarshal(raw, &e)
	return e, err
}
