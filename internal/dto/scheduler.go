package dto

import (
	"time"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// AutoScheduleRequest starts a scheduling run.
type AutoScheduleRequest struct {
	SemesterStart string  `json:"semesterStart" validate:"required,datetime=2006-01-02"`
	ExamType      string  `json:"examType" validate:"required,oneof=midterm final"`
	ExamDuration  float64 `json:"examDuration" validate:"omitempty,gt=0,lte=8"`
	Weeks         int     `json:"weeks" validate:"omitempty,min=1,max=20"`
}

// ScheduleRunResponse reports a completed run.
type ScheduleRunResponse struct {
	models.ScheduleResult
	Persisted        bool `json:"persisted"`
	ScheduledCount   int  `json:"scheduledCount"`
	UnscheduledCount int  `json:"unscheduledCount"`
}

// ScheduleJobStatus enumerates asynchronous run states.
type ScheduleJobStatus string

const (
	ScheduleJobQueued    ScheduleJobStatus = "QUEUED"
	ScheduleJobRunning   ScheduleJobStatus = "RUNNING"
	ScheduleJobSucceeded ScheduleJobStatus = "SUCCEEDED"
	ScheduleJobFailed    ScheduleJobStatus = "FAILED"
	ScheduleJobCancelled ScheduleJobStatus = "CANCELLED"
)

// ScheduleJobResponse is the polled view of an asynchronous run.
type ScheduleJobResponse struct {
	ID          string               `json:"id"`
	Status      ScheduleJobStatus    `json:"status"`
	Progress    int                  `json:"progress"`
	CurrentStep string               `json:"currentStep,omitempty"`
	Request     AutoScheduleRequest  `json:"request"`
	Result      *ScheduleRunResponse `json:"result,omitempty"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	FinishedAt  *time.Time           `json:"finishedAt,omitempty"`
}

// InstructorLoad is one row of the load table.
type InstructorLoad struct {
	InstructorID string `json:"instructorId"`
	FullName     string `json:"fullName"`
	Department   string `json:"department"`
	Assigned     int    `json:"assigned"`
	MaxLoad      int    `json:"maxLoad"`
	Display      string `json:"display"`
	Percentage   int    `json:"percentage"`
}

// ScheduleSummary aggregates the persisted exam set.
type ScheduleSummary struct {
	TotalExams         int                     `json:"totalExams"`
	ExamsByType        map[models.ExamType]int `json:"examsByType"`
	AutoScheduled      int                     `json:"autoScheduled"`
	AverageEnrollment  float64                 `json:"averageEnrollment"`
	InstructorLoads    []InstructorLoad        `json:"instructorLoads"`
	UnscheduledCourses []models.Course         `json:"unscheduledCourses"`
	ConflictCount      int                     `json:"conflictCount"`
}

// ExamExportQuery filters exam timetable exports.
type ExamExportQuery struct {
	Format   string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
	ExamType string `form:"examType" validate:"omitempty,oneof=midterm final"`
}

// ConflictExportQuery selects the conflict export format.
type ConflictExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Collection string `json:"collection"`
	Imported   int    `json:"imported"`
}

// SeatColorClearResult reports the room whose used colors were reset.
type SeatColorClearResult struct {
	Room models.Room `json:"room"`
}
