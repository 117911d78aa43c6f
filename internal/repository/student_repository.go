package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// StudentRepository stores the student collection.
type StudentRepository struct {
	store *snapshotStore[models.Student]
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{store: &snapshotStore[models.Student]{
		db:         db,
		collection: collectionStudents,
		selectQuery: `SELECT id, student_id, name, major, email, enrolled_courses, created_at, updated_at
FROM students ORDER BY position ASC`,
		insertQuery: `INSERT INTO students (id, student_id, name, major, email, enrolled_courses, created_at, updated_at, position)
VALUES (:id, :student_id, :name, :major, :email, :enrolled_courses, :created_at, :updated_at, ?)`,
		seed: SeedStudents,
		stamp: func(s *models.Student, now time.Time) {
			if s.CreatedAt.IsZero() {
				s.CreatedAt = now
			}
			s.UpdatedAt = now
			s.NormalizeEnrollments()
		},
	}}
}

// ListAll returns every student, seeding the collection on first use.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	return r.store.listAll(ctx)
}

// ReplaceAll overwrites the student collection.
func (r *StudentRepository) ReplaceAll(ctx context.Context, students []models.Student) error {
	return r.store.replaceAll(ctx, students)
}
