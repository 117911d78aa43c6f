package models

import "time"

// Unscheduled course reasons.
const (
	ReasonNoInstructors = "No available instructors"
	ReasonExhausted     = "No available time slots or rooms after trying all options"
)

// ScheduleConfig parameterises one scheduling run.
type ScheduleConfig struct {
	SemesterStart    time.Time
	ExamType         ExamType
	ExamDuration     float64
	MidtermStartWeek int
	FinalStartWeek   int
	// Weeks overrides the window length of the exam type when positive.
	Weeks int
}

// StartWeek returns the configured first week for the exam type.
func (c ScheduleConfig) StartWeek() int {
	if c.ExamType == ExamTypeFinal {
		if c.FinalStartWeek > 0 {
			return c.FinalStartWeek
		}
		return 16
	}
	if c.MidtermStartWeek > 0 {
		return c.MidtermStartWeek
	}
	return 7
}

// UnscheduledCourse records why a course could not be placed.
type UnscheduledCourse struct {
	Course Course `json:"course"`
	Reason string `json:"reason"`
}

// ScheduleResult is the outcome of one scheduling run.
type ScheduleResult struct {
	NewExams           []Exam              `json:"newExams"`
	UnscheduledCourses []UnscheduledCourse `json:"unscheduledCourses"`
	Warnings           []string            `json:"warnings,omitempty"`
}

// Snapshot bundles the five collections both engines read.
type Snapshot struct {
	Courses     []Course     `json:"courses" yaml:"courses"`
	Instructors []Instructor `json:"instructors" yaml:"instructors"`
	Rooms       []Room       `json:"rooms" yaml:"rooms"`
	Students    []Student    `json:"students" yaml:"students"`
	Exams       []Exam       `json:"exams" yaml:"exams"`
}
