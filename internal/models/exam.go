package models

import "time"

// ExamType selects the exam window.
type ExamType string

const (
	ExamTypeMidterm ExamType = "midterm"
	ExamTypeFinal   ExamType = "final"
)

// ExamStatusScheduled is assigned to every generated exam.
const ExamStatusScheduled = "scheduled"

// ExamDateLayout is the calendar-day format of Exam.Date.
const ExamDateLayout = "2006-01-02"

// Exam is one placed exam: a course at a date, slot, room and seat color.
type Exam struct {
	ID               string    `db:"id" json:"id" yaml:"id"`
	CourseCode       string    `db:"course_code" json:"course_code" yaml:"course_code" validate:"required"`
	CourseName       string    `db:"course_name" json:"course" yaml:"course"`
	Instructor       string    `db:"instructor" json:"instructor" yaml:"instructor"`
	InstructorID     string    `db:"instructor_id" json:"instructor_id" yaml:"instructor_id"`
	Room             string    `db:"room" json:"room" yaml:"room" validate:"required"`
	Building         string    `db:"building" json:"building" yaml:"building"`
	SeatColor        string    `db:"seat_color" json:"seat_color" yaml:"seat_color"`
	Date             string    `db:"exam_date" json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Time             string    `db:"time_slot" json:"time" yaml:"time" validate:"required"`
	Duration         float64   `db:"duration" json:"duration" yaml:"duration"`
	EnrolledStudents int       `db:"enrolled_students" json:"enrolled_students" yaml:"enrolled_students"`
	RoomCapacity     int       `db:"room_capacity" json:"room_capacity" yaml:"room_capacity"`
	ExamType         ExamType  `db:"exam_type" json:"exam_type" yaml:"exam_type" validate:"omitempty,oneof=midterm final"`
	CourseLevel      int       `db:"course_level" json:"course_level" yaml:"course_level"`
	Status           string    `db:"status" json:"status" yaml:"status"`
	AutoScheduled    bool      `db:"auto_scheduled" json:"auto_scheduled" yaml:"auto_scheduled"`
	CreatedAt        time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// SameSlot reports whether both exams sit at the same date and time.
func (e Exam) SameSlot(other Exam) bool {
	return e.Date == other.Date && e.Time == other.Time
}

// SameInstructor compares proctors by id when both carry one, otherwise by name.
func (e Exam) SameInstructor(other Exam) bool {
	if e.InstructorID != "" && other.InstructorID != "" {
		return e.InstructorID == other.InstructorID
	}
	return e.Instructor == other.Instructor
}
