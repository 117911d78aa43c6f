package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

func conflictExam(id, course, room, color, instructor string) models.Exam {
	return models.Exam{
		ID:         id,
		CourseCode: course,
		Room:       room,
		SeatColor:  color,
		Instructor: instructor,
		Date:       "2024-10-11",
		Time:       "10:00-12:00",
	}
}

func TestDetectConflictsSameSeatColorIsRoomConflict(t *testing.T) {
	exams := []models.Exam{
		conflictExam("e1", "CSCI101", "C3", "Red", "Dr. A"),
		conflictExam("e2", "MATH201", "C3", "Red", "Dr. B"),
	}

	report := DetectConflicts(exams, nil, nil, nil, nil)

	require.Len(t, report.Room, 1)
	conflict := report.Room[0]
	assert.Equal(t, models.ConflictTypeRoom, conflict.Type)
	assert.Equal(t, "e1-e2", conflict.ConflictID)
	assert.Equal(t, models.SeverityHigh, conflict.Severity)
	assert.Equal(t, "C3", conflict.Room)
	assert.Equal(t, "Red", conflict.SeatColor)
	require.NotNil(t, conflict.Exam1)
	require.NotNil(t, conflict.Exam2)
	assert.Equal(t, "e1", conflict.Exam1.ID)
	assert.Equal(t, "e2", conflict.Exam2.ID)
	assert.Empty(t, report.Instructor)
	assert.Empty(t, report.Student)
}

func TestDetectConflictsDifferentSeatColorsShareRoom(t *testing.T) {
	exams := []models.Exam{
		conflictExam("e1", "CSCI101", "C3", "Red", "Dr. A"),
		conflictExam("e2", "MATH201", "C3", "Green", "Dr. B"),
	}

	report := DetectConflicts(exams, nil, nil, nil, nil)

	assert.Equal(t, 0, report.Total())
}

func TestDetectConflictsInstructorDoubleBooked(t *testing.T) {
	exams := []models.Exam{
		conflictExam("e1", "CSCI101", "C3", "Red", "Dr. A"),
		conflictExam("e2", "MATH201", "D4", "Red", "Dr. A"),
		conflictExam("e3", "PHYS301", "Auditorium", "Red", "Dr. A"),
	}

	report := DetectConflicts(exams, nil, nil, nil, nil)

	require.Len(t, report.Instructor, 3)
	ids := []string{report.Instructor[0].ConflictID, report.Instructor[1].ConflictID, report.Instructor[2].ConflictID}
	assert.Equal(t, []string{"e1-e2", "e1-e3", "e2-e3"}, ids)
	assert.Equal(t, "Dr. A", report.Instructor[0].Instructor)
}

func TestDetectConflictsInstructorPrefersIDs(t *testing.T) {
	a := conflictExam("e1", "CSCI101", "C3", "Red", "Dr. Lee")
	a.InstructorID = "inst-1"
	b := conflictExam("e2", "MATH201", "D4", "Red", "Dr. Lee")
	b.InstructorID = "inst-2"

	report := DetectConflicts([]models.Exam{a, b}, nil, nil, nil, nil)

	assert.Empty(t, report.Instructor)
}

func TestDetectConflictsStudentOverlapDeduplicated(t *testing.T) {
	exams := []models.Exam{
		conflictExam("e1", "CSCI101", "C3", "Red", "Dr. A"),
		conflictExam("e2", "MATH201", "D4", "Red", "Dr. B"),
	}
	students := []models.Student{
		{StudentID: "20230001", Name: "John Doe", EnrolledCourses: pq.StringArray{"CSCI101", "MATH201"}},
		{StudentID: "20230001", Name: "John Doe", EnrolledCourses: pq.StringArray{"CSCI101", "MATH201"}},
		{StudentID: "20230002", Name: "Jane Smith", EnrolledCourses: pq.StringArray{"MATH201"}},
	}

	report := DetectConflicts(exams, nil, nil, nil, students)

	require.Len(t, report.Student, 1)
	conflict := report.Student[0]
	assert.Equal(t, "20230001-e1-e2", conflict.ConflictID)
	assert.Equal(t, models.SeverityMedium, conflict.Severity)
	assert.Equal(t, "John Doe", conflict.StudentName)
}

func TestDetectConflictsCapacityOverflow(t *testing.T) {
	exams := []models.Exam{conflictExam("e1", "CSCI401", "C3", "Red", "Dr. A")}
	courses := []models.Course{{Code: "CSCI401", Enrolled: 60}}
	rooms := []models.Room{{Name: "C3", Capacity: 50}}

	report := DetectConflicts(exams, courses, nil, rooms, nil)

	require.Len(t, report.Room, 1)
	conflict := report.Room[0]
	assert.Equal(t, models.ConflictTypeCapacity, conflict.Type)
	assert.Equal(t, "e1-capacity", conflict.ConflictID)
	assert.Equal(t, 10, conflict.Overflow)
	assert.Equal(t, 60, conflict.StudentsEnrolled)
	assert.Equal(t, 50, conflict.RoomCapacity)
	require.NotNil(t, conflict.Exam)
	assert.Equal(t, "e1", conflict.Exam.ID)
}

func TestDetectConflictsSkipsMissingReferences(t *testing.T) {
	exams := []models.Exam{conflictExam("e1", "GONE101", "Nowhere", "Red", "Dr. A")}
	courses := []models.Course{{Code: "CSCI101", Enrolled: 60}}
	rooms := []models.Room{{Name: "C3", Capacity: 50}}

	report := DetectConflicts(exams, courses, nil, rooms, nil)

	assert.Equal(t, 0, report.Total())
}

func TestDetectConflictsIsIdempotent(t *testing.T) {
	exams := []models.Exam{
		conflictExam("e1", "CSCI101", "C3", "Red", "Dr. A"),
		conflictExam("e2", "MATH201", "C3", "Red", "Dr. A"),
	}
	students := []models.Student{{StudentID: "s1", EnrolledCourses: pq.StringArray{"CSCI101", "MATH201"}}}
	courses := []models.Course{{Code: "CSCI101", Enrolled: 80}}
	rooms := []models.Room{{Name: "C3", Capacity: 50}}

	first := DetectConflicts(exams, courses, nil, rooms, students)
	second := DetectConflicts(exams, courses, nil, rooms, students)

	assert.Equal(t, first, second)
	counts := first.CountByType()
	assert.Equal(t, 1, counts[models.ConflictTypeRoom])
	assert.Equal(t, 1, counts[models.ConflictTypeCapacity])
	assert.Equal(t, 1, counts[models.ConflictTypeInstructor])
	assert.Equal(t, 1, counts[models.ConflictTypeStudent])
	assert.Equal(t, 4, first.Total())
}
