package service

import (
	"fmt"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// DetectConflicts classifies every room, instructor, student and capacity violation in
// the exam set. It never mutates its inputs and unresolved cross-references are skipped.
func DetectConflicts(
	exams []models.Exam,
	courses []models.Course,
	_ []models.Instructor,
	rooms []models.Room,
	students []models.Student,
) models.ConflictReport {
	report := models.ConflictReport{
		Room:       detectRoomConflicts(exams),
		Instructor: detectInstructorConflicts(exams),
		Student:    detectStudentConflicts(exams, students),
	}
	report.Room = append(report.Room, detectCapacityConflicts(exams, courses, rooms)...)
	return report
}

func detectRoomConflicts(exams []models.Exam) []models.Conflict {
	conflicts := make([]models.Conflict, 0)
	for i := range exams {
		for j := i + 1; j < len(exams); j++ {
			a, b := exams[i], exams[j]
			if !a.SameSlot(b) || a.Room != b.Room || a.SeatColor != b.SeatColor {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:       models.ConflictTypeRoom,
				ConflictID: pairID(a, b),
				Severity:   models.SeverityHigh,
				Exam1:      examRef(a),
				Exam2:      examRef(b),
				Room:       a.Room,
				SeatColor:  a.SeatColor,
				Date:       a.Date,
				Time:       a.Time,
			})
		}
	}
	return conflicts
}

func detectInstructorConflicts(exams []models.Exam) []models.Conflict {
	conflicts := make([]models.Conflict, 0)
	for i := range exams {
		for j := i + 1; j < len(exams); j++ {
			a, b := exams[i], exams[j]
			if !a.SameSlot(b) || !a.SameInstructor(b) {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:       models.ConflictTypeInstructor,
				ConflictID: pairID(a, b),
				Severity:   models.SeverityHigh,
				Exam1:      examRef(a),
				Exam2:      examRef(b),
				Instructor: a.Instructor,
				Date:       a.Date,
				Time:       a.Time,
			})
		}
	}
	return conflicts
}

type studentConflictKey struct {
	studentID string
	exam1     string
	exam2     string
}

func detectStudentConflicts(exams []models.Exam, students []models.Student) []models.Conflict {
	conflicts := make([]models.Conflict, 0)
	seen := make(map[studentConflictKey]bool)
	for _, student := range students {
		enrolled := make([]models.Exam, 0)
		for _, exam := range exams {
			if student.IsEnrolled(exam.CourseCode) {
				enrolled = append(enrolled, exam)
			}
		}
		for i := range enrolled {
			for j := i + 1; j < len(enrolled); j++ {
				a, b := enrolled[i], enrolled[j]
				if !a.SameSlot(b) {
					continue
				}
				key := studentConflictKey{studentID: student.StudentID, exam1: a.ID, exam2: b.ID}
				if seen[key] {
					continue
				}
				seen[key] = true
				conflicts = append(conflicts, models.Conflict{
					Type:        models.ConflictTypeStudent,
					ConflictID:  fmt.Sprintf("%s-%s-%s", student.StudentID, a.ID, b.ID),
					Severity:    models.SeverityMedium,
					Exam1:       examRef(a),
					Exam2:       examRef(b),
					StudentID:   student.StudentID,
					StudentName: student.Name,
					Date:        a.Date,
					Time:        a.Time,
				})
			}
		}
	}
	return conflicts
}

func detectCapacityConflicts(exams []models.Exam, courses []models.Course, rooms []models.Room) []models.Conflict {
	courseByCode := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		if _, exists := courseByCode[course.Code]; !exists {
			courseByCode[course.Code] = course
		}
	}
	roomByName := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		if _, exists := roomByName[room.Name]; !exists {
			roomByName[room.Name] = room
		}
	}

	conflicts := make([]models.Conflict, 0)
	for _, exam := range exams {
		course, okCourse := courseByCode[exam.CourseCode]
		room, okRoom := roomByName[exam.Room]
		if !okCourse || !okRoom || course.Enrolled <= room.Capacity {
			continue
		}
		courseCopy, roomCopy := course, room
		conflicts = append(conflicts, models.Conflict{
			Type:             models.ConflictTypeCapacity,
			ConflictID:       exam.ID + "-capacity",
			Severity:         models.SeverityHigh,
			Exam:             examRef(exam),
			Course:           &courseCopy,
			RoomRef:          &roomCopy,
			Room:             room.Name,
			StudentsEnrolled: course.Enrolled,
			RoomCapacity:     room.Capacity,
			Overflow:         course.Enrolled - room.Capacity,
			Date:             exam.Date,
			Time:             exam.Time,
		})
	}
	return conflicts
}

func pairID(a, b models.Exam) string {
	return a.ID + "-" + b.ID
}

func examRef(exam models.Exam) *models.Exam {
	cp := exam
	return &cp
}
