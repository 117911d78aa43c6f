package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

type courseStore interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	ReplaceAll(ctx context.Context, courses []models.Course) error
}

type instructorStore interface {
	ListAll(ctx context.Context) ([]models.Instructor, error)
	ReplaceAll(ctx context.Context, instructors []models.Instructor) error
}

type roomStore interface {
	ListAll(ctx context.Context) ([]models.Room, error)
	ReplaceAll(ctx context.Context, rooms []models.Room) error
}

type studentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	ReplaceAll(ctx context.Context, students []models.Student) error
}

type examStore interface {
	ListAll(ctx context.Context) ([]models.Exam, error)
	ReplaceAll(ctx context.Context, exams []models.Exam) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// WriteGate serialises writers of the stored collections. A nil gate does not lock.
type WriteGate struct {
	mu sync.Mutex
}

// Lock blocks until no other writer holds the gate.
func (g *WriteGate) Lock() {
	if g != nil {
		g.mu.Lock()
	}
}

// Unlock releases the gate.
func (g *WriteGate) Unlock() {
	if g != nil {
		g.mu.Unlock()
	}
}

// Stores bundles the five collection stores. Services built from one Stores value share its Gate.
type Stores struct {
	Courses     courseStore
	Instructors instructorStore
	Rooms       roomStore
	Students    studentStore
	Exams       examStore
	Gate        *WriteGate
}

// LoadSnapshot reads every collection once.
func (s Stores) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	var err error
	if snap.Courses, err = s.Courses.ListAll(ctx); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if snap.Instructors, err = s.Instructors.ListAll(ctx); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	if snap.Rooms, err = s.Rooms.ListAll(ctx); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if snap.Students, err = s.Students.ListAll(ctx); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	if snap.Exams, err = s.Exams.ListAll(ctx); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}
	return snap, nil
}

// CatalogService reads and replaces the entity collections.
type CatalogService struct {
	stores    Stores
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	newID     func() string
}

// NewCatalogService constructs the service. cache may be nil.
func NewCatalogService(stores Stores, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{stores: stores, cache: cache, validator: validate, logger: logger, newID: uuid.NewString}
}

// ListCourses returns every course.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.stores.Courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	return courses, nil
}

// ReplaceCourses validates and stores the full course collection.
func (s *CatalogService) ReplaceCourses(ctx context.Context, courses []models.Course) ([]models.Course, error) {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	seen := make(map[string]bool, len(courses))
	for i := range courses {
		course := &courses[i]
		if course.Status == "" {
			course.Status = models.CourseStatusActive
		}
		if err := s.validator.Struct(course); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid course at position %d", i))
		}
		if seen[course.Code] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate course code %s", course.Code))
		}
		seen[course.Code] = true
		if course.ID == "" {
			course.ID = s.newID()
		}
	}
	if err := s.stores.Courses.ReplaceAll(ctx, courses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store courses")
	}
	s.invalidateConflicts(ctx)
	return courses, nil
}

// ListInstructors returns every instructor.
func (s *CatalogService) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	instructors, err := s.stores.Instructors.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	return instructors, nil
}

// ReplaceInstructors validates and stores the full instructor collection. Loads are
// recomputed from the stored exams so CurrentLoad in the payload is ignored.
func (s *CatalogService) ReplaceInstructors(ctx context.Context, instructors []models.Instructor) ([]models.Instructor, error) {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	seen := make(map[string]bool, len(instructors))
	for i := range instructors {
		instructor := &instructors[i]
		if instructor.Status == "" {
			instructor.Status = models.InstructorStatusActive
		}
		if err := s.validator.Struct(instructor); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid instructor at position %d", i))
		}
		if seen[instructor.EmployeeID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate employee id %s", instructor.EmployeeID))
		}
		seen[instructor.EmployeeID] = true
		if instructor.ID == "" {
			instructor.ID = s.newID()
		}
	}

	exams, err := s.stores.Exams.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}
	updated := RecomputeInstructorLoads(instructors, exams)
	for _, warning := range duplicateInstructorWarnings(updated) {
		s.logger.Warn("instructor roster warning", zap.String("warning", warning))
	}

	if err := s.stores.Instructors.ReplaceAll(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store instructors")
	}
	s.invalidateConflicts(ctx)
	return updated, nil
}

// ListRooms returns every room.
func (s *CatalogService) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.stores.Rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	return rooms, nil
}

// ReplaceRooms validates and stores the full room collection.
func (s *CatalogService) ReplaceRooms(ctx context.Context, rooms []models.Room) ([]models.Room, error) {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	seen := make(map[string]bool, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		if room.Status == "" {
			room.Status = models.RoomStatusAvailable
		}
		if err := s.validator.Struct(room); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid room at position %d", i))
		}
		if seen[room.Name] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate room name %s", room.Name))
		}
		seen[room.Name] = true
		if room.ID == "" {
			room.ID = s.newID()
		}
	}
	if err := s.stores.Rooms.ReplaceAll(ctx, rooms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store rooms")
	}
	s.invalidateConflicts(ctx)
	return rooms, nil
}

// ClearUsedSeatColors resets the used seat color marker of one room.
func (s *CatalogService) ClearUsedSeatColors(ctx context.Context, roomID string) (*models.Room, error) {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range rooms {
		if rooms[i].ID == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
	}
	rooms[idx].UsedSeatColors = []string{}
	if err := s.stores.Rooms.ReplaceAll(ctx, rooms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store rooms")
	}
	room := rooms[idx]
	return &room, nil
}

// ListStudents returns every student.
func (s *CatalogService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.stores.Students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return students, nil
}

// ReplaceStudents validates and stores the full student collection.
func (s *CatalogService) ReplaceStudents(ctx context.Context, students []models.Student) ([]models.Student, error) {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	seen := make(map[string]bool, len(students))
	for i := range students {
		student := &students[i]
		student.NormalizeEnrollments()
		if err := s.validator.Struct(student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid student at position %d", i))
		}
		if seen[student.StudentID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate student id %s", student.StudentID))
		}
		seen[student.StudentID] = true
		if student.ID == "" {
			student.ID = s.newID()
		}
	}
	if err := s.stores.Students.ReplaceAll(ctx, students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store students")
	}
	s.invalidateConflicts(ctx)
	return students, nil
}

// ListExams returns every exam, optionally restricted to one exam type.
func (s *CatalogService) ListExams(ctx context.Context, examType models.ExamType) ([]models.Exam, error) {
	exams, err := s.stores.Exams.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}
	if examType == "" {
		return exams, nil
	}
	filtered := make([]models.Exam, 0, len(exams))
	for _, exam := range exams {
		if exam.ExamType == examType {
			filtered = append(filtered, exam)
		}
	}
	return filtered, nil
}

// ReplaceExams stores a manually edited exam set and refreshes instructor loads.
func (s *CatalogService) ReplaceExams(ctx context.Context, exams []models.Exam) ([]models.Exam, error) {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	seen := make(map[string]bool, len(exams))
	for i := range exams {
		exam := &exams[i]
		if exam.ID == "" {
			exam.ID = s.newID()
		}
		if exam.Status == "" {
			exam.Status = models.ExamStatusScheduled
		}
		if exam.CourseLevel == 0 {
			exam.CourseLevel = models.CourseLevelFromCode(exam.CourseCode)
		}
		if err := s.validator.Struct(exam); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid exam at position %d", i))
		}
		if seen[exam.ID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate exam id %s", exam.ID))
		}
		seen[exam.ID] = true
	}
	if err := s.storeExams(ctx, exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// DeleteExam removes one exam by id.
func (s *CatalogService) DeleteExam(ctx context.Context, id string) error {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	exams, err := s.ListExams(ctx, "")
	if err != nil {
		return err
	}
	remaining := make([]models.Exam, 0, len(exams))
	for _, exam := range exams {
		if exam.ID != id {
			remaining = append(remaining, exam)
		}
	}
	if len(remaining) == len(exams) {
		return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	return s.storeExams(ctx, remaining)
}

// ClearExams removes every exam.
func (s *CatalogService) ClearExams(ctx context.Context) error {
	s.stores.Gate.Lock()
	defer s.stores.Gate.Unlock()

	return s.storeExams(ctx, []models.Exam{})
}

// InstructorExams returns the exams proctored by the instructor, matched by id or employee id.
func (s *CatalogService) InstructorExams(ctx context.Context, instructorID string) (*models.Instructor, []models.Exam, error) {
	instructors, err := s.ListInstructors(ctx)
	if err != nil {
		return nil, nil, err
	}
	var found *models.Instructor
	for i := range instructors {
		if instructors[i].ID == instructorID || instructors[i].EmployeeID == instructorID {
			found = &instructors[i]
			break
		}
	}
	if found == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	exams, err := s.ListExams(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	owned := make([]models.Exam, 0)
	for _, exam := range exams {
		if found.Proctors(exam) {
			owned = append(owned, exam)
		}
	}
	sortExamsChronologically(owned)
	return found, owned, nil
}

// StudentExams returns the exams of every course the student is enrolled in.
func (s *CatalogService) StudentExams(ctx context.Context, studentID string) (*models.Student, []models.Exam, error) {
	students, err := s.ListStudents(ctx)
	if err != nil {
		return nil, nil, err
	}
	var found *models.Student
	for i := range students {
		if students[i].ID == studentID || students[i].StudentID == studentID {
			found = &students[i]
			break
		}
	}
	if found == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	exams, err := s.ListExams(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	owned := make([]models.Exam, 0)
	for _, exam := range exams {
		if found.IsEnrolled(exam.CourseCode) {
			owned = append(owned, exam)
		}
	}
	sortExamsChronologically(owned)
	return found, owned, nil
}

func (s *CatalogService) storeExams(ctx context.Context, exams []models.Exam) error {
	instructors, err := s.ListInstructors(ctx)
	if err != nil {
		return err
	}
	if err := persistExamsAndLoads(ctx, s.stores, instructors, exams, s.logger); err != nil {
		return err
	}
	s.invalidateConflicts(ctx)
	return nil
}

// persistExamsAndLoads writes the exam set and then the instructor loads derived from it.
// A failed load write leaves the stored loads stale until the next exam mutation.
func persistExamsAndLoads(ctx context.Context, stores Stores, instructors []models.Instructor, exams []models.Exam, logger *zap.Logger) error {
	if err := stores.Exams.ReplaceAll(ctx, exams); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store exams")
	}
	if err := stores.Instructors.ReplaceAll(ctx, RecomputeInstructorLoads(instructors, exams)); err != nil {
		logger.Warn("exams stored but instructor loads are stale",
			zap.Int("exams", len(exams)),
			zap.Int("instructors", len(instructors)),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store instructor loads")
	}
	return nil
}

func (s *CatalogService) invalidateConflicts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, conflictCachePattern); err != nil {
		s.logger.Warn("failed to invalidate conflict cache", zap.Error(err))
	}
}

func sortExamsChronologically(exams []models.Exam) {
	sort.SliceStable(exams, func(i, j int) bool {
		if exams[i].Date != exams[j].Date {
			return exams[i].Date < exams[j].Date
		}
		return exams[i].Time < exams[j].Time
	})
}
