package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/export"
)

type examCatalog interface {
	ListExams(ctx context.Context, examType models.ExamType) ([]models.Exam, error)
	InstructorExams(ctx context.Context, instructorID string) (*models.Instructor, []models.Exam, error)
	StudentExams(ctx context.Context, studentID string) (*models.Student, []models.Exam, error)
}

type conflictReporter interface {
	Report(ctx context.Context) (models.ConflictReport, bool, error)
}

type calendarRenderer interface {
	Render(name string, events []export.CalendarEvent) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders exam timetables, conflict reports and personal calendars.
type ExportService struct {
	catalog   examCatalog
	conflicts conflictReporter
	renderers export.Registry
	calendar  calendarRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(catalog examCatalog, conflicts conflictReporter, renderers export.Registry, calendar calendarRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers == nil {
		renderers = export.NewRegistry()
	}
	if calendar == nil {
		calendar = export.NewICSExporter()
	}
	return &ExportService{
		catalog:   catalog,
		conflicts: conflicts,
		renderers: renderers,
		calendar:  calendar,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var timetableHeaders = []string{"Course Code", "Course", "Date", "Time", "Room", "Building", "Seat Color", "Instructor", "Enrolled", "Capacity", "Type", "Status"}

// Timetable renders the stored exams, optionally filtered by type, in format.
func (s *ExportService) Timetable(ctx context.Context, examType models.ExamType, format string) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	exams, err := s.catalog.ListExams(ctx, examType)
	if err != nil {
		return nil, err
	}
	sortExamsChronologically(exams)

	rows := make([]map[string]string, 0, len(exams))
	for _, exam := range exams {
		rows = append(rows, map[string]string{
			"Course Code": exam.CourseCode,
			"Course":      exam.CourseName,
			"Date":        exam.Date,
			"Time":        exam.Time,
			"Room":        exam.Room,
			"Building":    exam.Building,
			"Seat Color":  exam.SeatColor,
			"Instructor":  exam.Instructor,
			"Enrolled":    fmt.Sprintf("%d", exam.EnrolledStudents),
			"Capacity":    fmt.Sprintf("%d", exam.RoomCapacity),
			"Type":        string(exam.ExamType),
			"Status":      exam.Status,
		})
	}

	title := "Exam Timetable"
	if examType != "" {
		label := string(examType)
		title = strings.ToUpper(label[:1]) + label[1:] + " Exam Timetable"
	}
	return s.render(renderer, export.Dataset{Title: title, Headers: timetableHeaders, Rows: rows}, "exam_timetable")
}

var conflictHeaders = []string{"Conflict ID", "Type", "Severity", "Date", "Time", "Room", "Seat Color", "Instructor", "Student", "Exams", "Detail"}

// Conflicts renders the current conflict report in format. Only csv and pdf are offered.
func (s *ExportService) Conflicts(ctx context.Context, format string) (*ExportFile, error) {
	if format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "conflict reports export as csv or pdf")
	}
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	report, _, err := s.conflicts.Report(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, report.Total())
	for _, group := range [][]models.Conflict{report.Room, report.Instructor, report.Student} {
		for _, conflict := range group {
			rows = append(rows, conflictRow(conflict))
		}
	}
	return s.render(renderer, export.Dataset{Title: "Exam Conflict Report", Headers: conflictHeaders, Rows: rows}, "exam_conflicts")
}

func conflictRow(c models.Conflict) map[string]string {
	row := map[string]string{
		"Conflict ID": c.ConflictID,
		"Type":        string(c.Type),
		"Severity":    string(c.Severity),
		"Date":        c.Date,
		"Time":        c.Time,
		"Room":        c.Room,
		"Seat Color":  c.SeatColor,
		"Instructor":  c.Instructor,
		"Student":     c.StudentName,
	}
	switch {
	case c.Exam1 != nil && c.Exam2 != nil:
		row["Exams"] = c.Exam1.CourseCode + " / " + c.Exam2.CourseCode
	case c.Exam != nil:
		row["Exams"] = c.Exam.CourseCode
	}
	if c.Type == models.ConflictTypeCapacity {
		row["Detail"] = fmt.Sprintf("%d enrolled, capacity %d, overflow %d", c.StudentsEnrolled, c.RoomCapacity, c.Overflow)
	}
	return row
}

// InstructorCalendar renders the exams an instructor proctors as an iCalendar feed.
func (s *ExportService) InstructorCalendar(ctx context.Context, instructorID string) (*ExportFile, error) {
	instructor, exams, err := s.catalog.InstructorExams(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	return s.calendarFile(instructor.FullName, "instructor_"+instructor.EmployeeID, exams)
}

// StudentCalendar renders the exams of a student's courses as an iCalendar feed.
func (s *ExportService) StudentCalendar(ctx context.Context, studentID string) (*ExportFile, error) {
	student, exams, err := s.catalog.StudentExams(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.calendarFile(student.Name, "student_"+student.StudentID, exams)
}

func (s *ExportService) calendarFile(owner, prefix string, exams []models.Exam) (*ExportFile, error) {
	events := make([]export.CalendarEvent, 0, len(exams))
	for _, exam := range exams {
		start, end, err := export.ParseSlot(exam.Date, exam.Time)
		if err != nil {
			s.logger.Warn("skipping exam with unparseable slot", zap.String("exam_id", exam.ID), zap.Error(err))
			continue
		}
		events = append(events, export.CalendarEvent{
			UID:         exam.ID + "@exam-scheduler",
			Summary:     fmt.Sprintf("%s %s exam", exam.CourseCode, exam.ExamType),
			Location:    strings.TrimSpace(exam.Room + " " + exam.Building),
			Description: fmt.Sprintf("%s. Seat color %s. Proctor %s.", exam.CourseName, exam.SeatColor, exam.Instructor),
			Start:       start,
			End:         end,
		})
	}

	data, err := s.calendar.Render(owner+" exams", events)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar")
	}
	return &ExportFile{
		Filename:    s.filename(prefix, "ics"),
		ContentType: s.calendar.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) renderer(format string) (export.Renderer, error) {
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers.Lookup(strings.ToLower(format))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	return renderer, nil
}

func (s *ExportService) render(renderer export.Renderer, data export.Dataset, prefix string) (*ExportFile, error) {
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Sugar().Infow("export rendered", "dataset", data.Title, "rows", len(data.Rows), "format", renderer.Extension())
	return &ExportFile{
		Filename:    s.filename(prefix, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

func (s *ExportService) filename(prefix, extension string) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeFilename(prefix), s.now().Format("20060102_150405"), extension)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
