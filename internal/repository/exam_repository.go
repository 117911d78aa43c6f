package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// ExamRepository stores the exam collection. It starts empty.
type ExamRepository struct {
	store *snapshotStore[models.Exam]
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{store: &snapshotStore[models.Exam]{
		db:         db,
		collection: collectionExams,
		selectQuery: `SELECT id, course_code, course_name, instructor, instructor_id, room, building, seat_color, exam_date, time_slot,
       duration, enrolled_students, room_capacity, exam_type, course_level, status, auto_scheduled, created_at
FROM exams ORDER BY position ASC`,
		insertQuery: `INSERT INTO exams (id, course_code, course_name, instructor, instructor_id, room, building, seat_color, exam_date, time_slot,
       duration, enrolled_students, room_capacity, exam_type, course_level, status, auto_scheduled, created_at, position)
VALUES (:id, :course_code, :course_name, :instructor, :instructor_id, :room, :building, :seat_color, :exam_date, :time_slot,
       :duration, :enrolled_students, :room_capacity, :exam_type, :course_level, :status, :auto_scheduled, :created_at, ?)`,
		seed: func() []models.Exam { return []models.Exam{} },
		stamp: func(e *models.Exam, now time.Time) {
			if e.CreatedAt.IsZero() {
				e.CreatedAt = now
			}
		},
	}}
}

// ListAll returns every exam.
func (r *ExamRepository) ListAll(ctx context.Context) ([]models.Exam, error) {
	return r.store.listAll(ctx)
}

// ReplaceAll overwrites the exam collection.
func (r *ExamRepository) ReplaceAll(ctx context.Context, exams []models.Exam) error {
	return r.store.replaceAll(ctx, exams)
}
