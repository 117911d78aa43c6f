package models

import (
	"time"

	"github.com/lib/pq"
)

// Student is enrolled in a set of courses.
type Student struct {
	ID              string         `db:"id" json:"id" yaml:"id"`
	StudentID       string         `db:"student_id" json:"student_id" yaml:"student_id" validate:"required"`
	Name            string         `db:"name" json:"name" yaml:"name" validate:"required"`
	Major           string         `db:"major" json:"major" yaml:"major"`
	Email           string         `db:"email" json:"email" yaml:"email" validate:"omitempty,email"`
	EnrolledCourses pq.StringArray `db:"enrolled_courses" json:"enrolled_courses" yaml:"enrolled_courses"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at" yaml:"-"`
}

// IsEnrolled reports whether the student takes the course.
func (s Student) IsEnrolled(courseCode string) bool {
	for _, code := range s.EnrolledCourses {
		if code == courseCode {
			return true
		}
	}
	return false
}

// NormalizeEnrollments collapses duplicate course codes keeping first occurrence.
func (s *Student) NormalizeEnrollments() {
	seen := make(map[string]bool, len(s.EnrolledCourses))
	unique := make(pq.StringArray, 0, len(s.EnrolledCourses))
	for _, code := range s.EnrolledCourses {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}
	s.EnrolledCourses = unique
}
