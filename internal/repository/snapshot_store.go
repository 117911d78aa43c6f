package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	collectionCourses     = "courses"
	collectionInstructors = "instructors"
	collectionRooms       = "rooms"
	collectionStudents    = "students"
	collectionExams       = "exams"
)

const markCollectionQuery = `INSERT INTO snapshot_collections (name, stored_at) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET stored_at = EXCLUDED.stored_at`

const collectionStoredQuery = `SELECT EXISTS (SELECT 1 FROM snapshot_collections WHERE name = $1)`

// snapshotStore implements load-all/replace-all over one table. A collection that was never
// written is seeded on first read. Rows keep the order they were written in: insertQuery binds
// the item by name and its index through a trailing ? placeholder stored as position.
type snapshotStore[T any] struct {
	db          *sqlx.DB
	collection  string
	selectQuery string
	insertQuery string
	seed        func() []T
	stamp       func(item *T, now time.Time)
	now         func() time.Time
}

func (s *snapshotStore[T]) listAll(ctx context.Context) ([]T, error) {
	var stored bool
	if err := s.db.GetContext(ctx, &stored, collectionStoredQuery, s.collection); err != nil {
		return nil, fmt.Errorf("check %s collection: %w", s.collection, err)
	}
	if !stored {
		items := s.seed()
		if err := s.replaceAll(ctx, items); err != nil {
			return nil, fmt.Errorf("seed %s: %w", s.collection, err)
		}
		return items, nil
	}

	items := make([]T, 0)
	if err := s.db.SelectContext(ctx, &items, s.selectQuery); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}
	return items, nil
}

func (s *snapshotStore[T]) replaceAll(ctx context.Context, items []T) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s tx: %w", s.collection, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.collection); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear %s: %w", s.collection, err)
	}

	now := s.clock()
	for i := range items {
		if s.stamp != nil {
			s.stamp(&items[i], now)
		}
		query, args, err := sqlx.Named(s.insertQuery, items[i])
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bind %s: %w", s.collection, err)
		}
		args = append(args, i)
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", s.collection, err)
		}
	}

	if _, err := tx.ExecContext(ctx, markCollectionQuery, s.collection, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark %s stored: %w", s.collection, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", s.collection, err)
	}
	return nil
}

func (s *snapshotStore[T]) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}
