package repository

import (
	"github.com/lib/pq"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// SeedStudents is the student collection stored on first read.
func SeedStudents() []models.Student {
	return []models.Student{
		{
			ID:              "1",
			StudentID:       "20230001",
			Name:            "John Doe",
			Major:           "Computer Science",
			Email:           "john.doe@students.liu.edu.lb",
			EnrolledCourses: pq.StringArray{"CSCI101"},
		},
		{
			ID:              "2",
			StudentID:       "20230002",
			Name:            "Jane Smith",
			Major:           "Mathematics",
			Email:           "jane.smith@students.liu.edu.lb",
			EnrolledCourses: pq.StringArray{"MATH201"},
		},
	}
}

// SeedCourses is the course collection stored on first read.
func SeedCourses() []models.Course {
	instructor := "Dr. Sarah Johnson"
	return []models.Course{
		{
			ID:            "1",
			Code:          "CSCI101",
			Name:          "Introduction to Programming",
			Department:    "Computer Science",
			Credits:       3,
			Capacity:      45,
			Enrolled:      42,
			Status:        models.CourseStatusActive,
			Prerequisites: pq.StringArray{},
			Instructor:    &instructor,
		},
	}
}

// SeedInstructors is the instructor collection stored on first read.
func SeedInstructors() []models.Instructor {
	return []models.Instructor{
		{
			ID:          "1",
			EmployeeID:  "PROF001",
			FullName:    "Dr. Sarah Johnson",
			Email:       "sarah.johnson@liu.edu.lb",
			Department:  "Computer Science",
			Status:      models.InstructorStatusActive,
			MaxLoad:     3,
			CurrentLoad: 2,
		},
	}
}

// SeedRooms is the room collection stored on first read.
func SeedRooms() []models.Room {
	return []models.Room{
		{ID: "1", Name: "Auditorium", Building: "Building E", Capacity: 100, Status: models.RoomStatusAvailable, SeatColors: pq.StringArray{"Red", "Green", "Blue", "Yellow"}, UsedSeatColors: pq.StringArray{}},
		{ID: "2", Name: "C3", Building: "Building C", Capacity: 50, Status: models.RoomStatusAvailable, SeatColors: pq.StringArray{"Red", "Green", "Blue"}, UsedSeatColors: pq.StringArray{}},
		{ID: "3", Name: "D4", Building: "Building D", Capacity: 75, Status: models.RoomStatusAvailable, SeatColors: pq.StringArray{"Red", "Green", "Blue", "Yellow"}, UsedSeatColors: pq.StringArray{}},
	}
}
