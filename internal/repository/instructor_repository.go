package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// InstructorRepository stores the instructor collection.
type InstructorRepository struct {
	store *snapshotStore[models.Instructor]
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{store: &snapshotStore[models.Instructor]{
		db:         db,
		collection: collectionInstructors,
		selectQuery: `SELECT id, employee_id, full_name, email, department, status, max_load, current_load, created_at, updated_at
FROM instructors ORDER BY position ASC`,
		insertQuery: `INSERT INTO instructors (id, employee_id, full_name, email, department, status, max_load, current_load, created_at, updated_at, position)
VALUES (:id, :employee_id, :full_name, :email, :department, :status, :max_load, :current_load, :created_at, :updated_at, ?)`,
		seed: SeedInstructors,
		stamp: func(i *models.Instructor, now time.Time) {
			if i.CreatedAt.IsZero() {
				i.CreatedAt = now
			}
			i.UpdatedAt = now
		},
	}}
}

// ListAll returns every instructor, seeding the collection on first use.
func (r *InstructorRepository) ListAll(ctx context.Context) ([]models.Instructor, error) {
	return r.store.listAll(ctx)
}

// ReplaceAll overwrites the instructor collection.
func (r *InstructorRepository) ReplaceAll(ctx context.Context, instructors []models.Instructor) error {
	return r.store.replaceAll(ctx, instructors)
}
