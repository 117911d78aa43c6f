package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

// Import collections.
const (
	CollectionCourses     = "courses"
	CollectionInstructors = "instructors"
	CollectionRooms       = "rooms"
	CollectionStudents    = "students"
	CollectionExams       = "exams"
)

// listSeparator splits multi-valued CSV cells such as prerequisites or seat colors.
const listSeparator = "|"

type catalogReplacer interface {
	ReplaceCourses(ctx context.Context, courses []models.Course) ([]models.Course, error)
	ReplaceInstructors(ctx context.Context, instructors []models.Instructor) ([]models.Instructor, error)
	ReplaceRooms(ctx context.Context, rooms []models.Room) ([]models.Room, error)
	ReplaceStudents(ctx context.Context, students []models.Student) ([]models.Student, error)
	ReplaceExams(ctx context.Context, exams []models.Exam) ([]models.Exam, error)
}

type courseRow struct {
	ID            string `csv:"id"`
	Code          string `csv:"code"`
	Name          string `csv:"name"`
	Department    string `csv:"department"`
	Credits       int    `csv:"credits"`
	Capacity      int    `csv:"capacity"`
	Enrolled      int    `csv:"enrolled"`
	Status        string `csv:"status"`
	Prerequisites string `csv:"prerequisites"`
	Instructor    string `csv:"instructor"`
}

type instructorRow struct {
	ID         string `csv:"id"`
	EmployeeID string `csv:"employee_id"`
	FullName   string `csv:"full_name"`
	Email      string `csv:"email"`
	Department string `csv:"department"`
	Status     string `csv:"status"`
	MaxLoad    int    `csv:"max_load"`
}

type roomRow struct {
	ID             string `csv:"id"`
	Name           string `csv:"name"`
	Building       string `csv:"building"`
	Capacity       int    `csv:"capacity"`
	Status         string `csv:"status"`
	SeatColors     string `csv:"seat_colors"`
	UsedSeatColors string `csv:"used_seat_colors"`
}

type studentRow struct {
	ID              string `csv:"id"`
	StudentID       string `csv:"student_id"`
	Name            string `csv:"name"`
	Major           string `csv:"major"`
	Email           string `csv:"email"`
	EnrolledCourses string `csv:"enrolled_courses"`
}

type examRow struct {
	ID               string  `csv:"id"`
	CourseCode       string  `csv:"course_code"`
	CourseName       string  `csv:"course"`
	Instructor       string  `csv:"instructor"`
	InstructorID     string  `csv:"instructor_id"`
	Room             string  `csv:"room"`
	Building         string  `csv:"building"`
	SeatColor        string  `csv:"seat_color"`
	Date             string  `csv:"date"`
	Time             string  `csv:"time"`
	Duration         float64 `csv:"duration"`
	EnrolledStudents int     `csv:"enrolled_students"`
	RoomCapacity     int     `csv:"room_capacity"`
	ExamType         string  `csv:"exam_type"`
	Status           string  `csv:"status"`
}

// ImportService replaces a collection from an uploaded CSV file.
type ImportService struct {
	catalog catalogReplacer
	logger  *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(catalog catalogReplacer, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{catalog: catalog, logger: logger}
}

// Import parses in as CSV rows of collection and replaces the stored collection with them.
func (s *ImportService) Import(ctx context.Context, collection string, in io.Reader) (*dto.ImportResult, error) {
	var (
		imported int
		err      error
	)
	switch collection {
	case CollectionCourses:
		imported, err = importRows(in, func(rows []courseRow) (int, error) {
			courses := make([]models.Course, 0, len(rows))
			for _, row := range rows {
				course := models.Course{
					ID:            row.ID,
					Code:          row.Code,
					Name:          row.Name,
					Department:    row.Department,
					Credits:       row.Credits,
					Capacity:      row.Capacity,
					Enrolled:      row.Enrolled,
					Status:        models.CourseStatus(row.Status),
					Prerequisites: splitList(row.Prerequisites),
				}
				if row.Instructor != "" {
					instructor := row.Instructor
					course.Instructor = &instructor
				}
				courses = append(courses, course)
			}
			stored, err := s.catalog.ReplaceCourses(ctx, courses)
			return len(stored), err
		})
	case CollectionInstructors:
		imported, err = importRows(in, func(rows []instructorRow) (int, error) {
			instructors := make([]models.Instructor, 0, len(rows))
			for _, row := range rows {
				instructors = append(instructors, models.Instructor{
					ID:         row.ID,
					EmployeeID: row.EmployeeID,
					FullName:   row.FullName,
					Email:      row.Email,
					Department: row.Department,
					Status:     models.InstructorStatus(row.Status),
					MaxLoad:    row.MaxLoad,
				})
			}
			stored, err := s.catalog.ReplaceInstructors(ctx, instructors)
			return len(stored), err
		})
	case CollectionRooms:
		imported, err = importRows(in, func(rows []roomRow) (int, error) {
			rooms := make([]models.Room, 0, len(rows))
			for _, row := range rows {
				rooms = append(rooms, models.Room{
					ID:             row.ID,
					Name:           row.Name,
					Building:       row.Building,
					Capacity:       row.Capacity,
					Status:         models.RoomStatus(row.Status),
					SeatColors:     splitList(row.SeatColors),
					UsedSeatColors: splitList(row.UsedSeatColors),
				})
			}
			stored, err := s.catalog.ReplaceRooms(ctx, rooms)
			return len(stored), err
		})
	case CollectionStudents:
		imported, err = importRows(in, func(rows []studentRow) (int, error) {
			students := make([]models.Student, 0, len(rows))
			for _, row := range rows {
				students = append(students, models.Student{
					ID:              row.ID,
					StudentID:       row.StudentID,
					Name:            row.Name,
					Major:           row.Major,
					Email:           row.Email,
					EnrolledCourses: splitList(row.EnrolledCourses),
				})
			}
			stored, err := s.catalog.ReplaceStudents(ctx, students)
			return len(stored), err
		})
	case CollectionExams:
		imported, err = importRows(in, func(rows []examRow) (int, error) {
			exams := make([]models.Exam, 0, len(rows))
			for _, row := range rows {
				exams = append(exams, models.Exam{
					ID:               row.ID,
					CourseCode:       row.CourseCode,
					CourseName:       row.CourseName,
					Instructor:       row.Instructor,
					InstructorID:     row.InstructorID,
					Room:             row.Room,
					Building:         row.Building,
					SeatColor:        row.SeatColor,
					Date:             row.Date,
					Time:             row.Time,
					Duration:         row.Duration,
					EnrolledStudents: row.EnrolledStudents,
					RoomCapacity:     row.RoomCapacity,
					ExamType:         models.ExamType(row.ExamType),
					Status:           row.Status,
				})
			}
			stored, err := s.catalog.ReplaceExams(ctx, exams)
			return len(stored), err
		})
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown collection %q", collection))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Sugar().Infow("collection imported", "collection", collection, "rows", imported)
	return &dto.ImportResult{Collection: collection, Imported: imported}, nil
}

func importRows[T any](in io.Reader, store func([]T) (int, error)) (int, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true
	rows := make([]T, 0)
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv upload")
	}
	return store(rows)
}

func splitList(raw string) pq.StringArray {
	values := pq.StringArray{}
	for _, part := range strings.Split(raw, listSeparator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
