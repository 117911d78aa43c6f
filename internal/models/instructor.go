package models

import "time"

// InstructorStatus is the employment state of an instructor.
type InstructorStatus string

const (
	InstructorStatusActive   InstructorStatus = "active"
	InstructorStatusOnLeave  InstructorStatus = "on-leave"
	InstructorStatusPartTime InstructorStatus = "part-time"
)

// DefaultInstructorMaxLoad applies when an instructor has no explicit ceiling.
const DefaultInstructorMaxLoad = 8

// Instructor proctors exams for courses in their department.
type Instructor struct {
	ID          string           `db:"id" json:"id" yaml:"id"`
	EmployeeID  string           `db:"employee_id" json:"employee_id" yaml:"employee_id" validate:"required"`
	FullName    string           `db:"full_name" json:"full_name" yaml:"full_name" validate:"required"`
	Email       string           `db:"email" json:"email" yaml:"email" validate:"omitempty,email"`
	Department  string           `db:"department" json:"department" yaml:"department" validate:"required"`
	Status      InstructorStatus `db:"status" json:"status" yaml:"status" validate:"omitempty,oneof=active on-leave part-time"`
	MaxLoad     int              `db:"max_load" json:"max_load" yaml:"max_load" validate:"gte=0"`
	CurrentLoad int              `db:"current_load" json:"current_load" yaml:"current_load"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at" yaml:"-"`
}

// EffectiveMaxLoad returns MaxLoad or the default ceiling when unset.
func (i Instructor) EffectiveMaxLoad() int {
	if i.MaxLoad <= 0 {
		return DefaultInstructorMaxLoad
	}
	return i.MaxLoad
}

// IsActive reports whether the instructor can be assigned exams.
func (i Instructor) IsActive() bool {
	return i.Status == InstructorStatusActive
}

// Proctors reports whether the exam references this instructor.
func (i Instructor) Proctors(exam Exam) bool {
	if i.ID != "" && exam.InstructorID != "" {
		return i.ID == exam.InstructorID
	}
	return i.FullName != "" && i.FullName == exam.Instructor
}
