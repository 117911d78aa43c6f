package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// RoomRepository stores the room collection.
type RoomRepository struct {
	store *snapshotStore[models.Room]
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{store: &snapshotStore[models.Room]{
		db:         db,
		collection: collectionRooms,
		selectQuery: `SELECT id, name, building, capacity, status, seat_colors, used_seat_colors, created_at, updated_at
FROM rooms ORDER BY position ASC`,
		insertQuery: `INSERT INTO rooms (id, name, building, capacity, status, seat_colors, used_seat_colors, created_at, updated_at, position)
VALUES (:id, :name, :building, :capacity, :status, :seat_colors, :used_seat_colors, :created_at, :updated_at, ?)`,
		seed: SeedRooms,
		stamp: func(r *models.Room, now time.Time) {
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
			r.UpdatedAt = now
			if r.SeatColors == nil {
				r.SeatColors = []string{}
			}
			if r.UsedSeatColors == nil {
				r.UsedSeatColors = []string{}
			}
		},
	}}
}

// ListAll returns every room, seeding the collection on first use.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.Room, error) {
	return r.store.listAll(ctx)
}

// ReplaceAll overwrites the room collection.
func (r *RoomRepository) ReplaceAll(ctx context.Context, rooms []models.Room) error {
	return r.store.replaceAll(ctx, rooms)
}
