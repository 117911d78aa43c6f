package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// CourseRepository stores the course collection.
type CourseRepository struct {
	store *snapshotStore[models.Course]
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{store: &snapshotStore[models.Course]{
		db:         db,
		collection: collectionCourses,
		selectQuery: `SELECT id, code, name, department, credits, capacity, enrolled, status, prerequisites, instructor, created_at, updated_at
FROM courses ORDER BY position ASC`,
		insertQuery: `INSERT INTO courses (id, code, name, department, credits, capacity, enrolled, status, prerequisites, instructor, created_at, updated_at, position)
VALUES (:id, :code, :name, :department, :credits, :capacity, :enrolled, :status, :prerequisites, :instructor, :created_at, :updated_at, ?)`,
		seed: SeedCourses,
		stamp: func(c *models.Course, now time.Time) {
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			c.UpdatedAt = now
			if c.Prerequisites == nil {
				c.Prerequisites = []string{}
			}
		},
	}}
}

// ListAll returns every course, seeding the collection on first use.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	return r.store.listAll(ctx)
}

// ReplaceAll overwrites the course collection.
func (r *CourseRepository) ReplaceAll(ctx context.Context, courses []models.Course) error {
	return r.store.replaceAll(ctx, courses)
}
