package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

const defaultSnugMargin = 10

// ProgressFunc is notified after each candidate course is processed.
type ProgressFunc func(done, total int, courseCode string)

// ExamScheduler places unscheduled courses into exam slots, rooms and seat colors.
type ExamScheduler struct {
	newID          func() string
	now            func() time.Time
	snugMargin     int
	defaultMaxLoad int
}

// ExamSchedulerOption customises an ExamScheduler.
type ExamSchedulerOption func(*ExamScheduler)

// WithIDGenerator overrides exam id generation.
func WithIDGenerator(fn func() string) ExamSchedulerOption {
	return func(s *ExamScheduler) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(fn func() time.Time) ExamSchedulerOption {
	return func(s *ExamScheduler) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithSnugMargin sets how far above enrollment a room still counts as snug.
func WithSnugMargin(margin int) ExamSchedulerOption {
	return func(s *ExamScheduler) {
		if margin >= 0 {
			s.snugMargin = margin
		}
	}
}

// WithDefaultMaxLoad sets the load ceiling for instructors without one.
func WithDefaultMaxLoad(load int) ExamSchedulerOption {
	return func(s *ExamScheduler) {
		if load > 0 {
			s.defaultMaxLoad = load
		}
	}
}

// NewExamScheduler builds a scheduler with the given options applied.
func NewExamScheduler(opts ...ExamSchedulerOption) *ExamScheduler {
	s := &ExamScheduler{
		newID:          uuid.NewString,
		now:            func() time.Time { return time.Now().UTC() },
		snugMargin:     defaultSnugMargin,
		defaultMaxLoad: models.DefaultInstructorMaxLoad,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoSchedule runs the default scheduler without progress reporting.
func AutoSchedule(
	cfg models.ScheduleConfig,
	courses []models.Course,
	instructors []models.Instructor,
	rooms []models.Room,
	students []models.Student,
	existing []models.Exam,
) models.ScheduleResult {
	return NewExamScheduler().Schedule(cfg, models.Snapshot{
		Courses:     courses,
		Instructors: instructors,
		Rooms:       rooms,
		Students:    students,
		Exams:       existing,
	}, nil)
}

// Schedule places every active course without an exam. Courses that cannot be placed are
// reported with a reason; the run itself never fails.
func (s *ExamScheduler) Schedule(cfg models.ScheduleConfig, snap models.Snapshot, progress ProgressFunc) models.ScheduleResult {
	result := models.ScheduleResult{
		NewExams:           make([]models.Exam, 0),
		UnscheduledCourses: make([]models.UnscheduledCourse, 0),
		Warnings:           duplicateInstructorWarnings(snap.Instructors),
	}

	candidates := pendingCourses(snap.Courses, snap.Exams)
	if len(candidates) == 0 {
		return result
	}

	window := WindowFor(cfg.ExamType)
	weeks := cfg.Weeks
	if weeks <= 0 {
		weeks = window.DefaultWeeks
	}

	run := &schedulingRun{
		cfg:       cfg,
		window:    window,
		weeks:     weeks,
		startWeek: cfg.StartWeek(),
		rooms:     snap.Rooms,
		students:  snap.Students,
		ledger:    newPlacementLedger(snap.Exams),
		loads:     make(map[int]int, len(snap.Instructors)),
		scheduler: s,
	}
	for idx, instructor := range snap.Instructors {
		run.loads[idx] = countProctored(instructor, snap.Exams)
	}

	done := 0
	for _, course := range orderByLevel(candidates) {
		exam, reason := run.place(course, snap.Instructors)
		if exam != nil {
			result.NewExams = append(result.NewExams, *exam)
		} else {
			result.UnscheduledCourses = append(result.UnscheduledCourses, models.UnscheduledCourse{Course: course, Reason: reason})
		}
		done++
		if progress != nil {
			progress(done, len(candidates), course.Code)
		}
	}

	return result
}

// RecomputeInstructorLoads returns copies of the instructors with CurrentLoad set to the
// number of exams each one proctors.
func RecomputeInstructorLoads(instructors []models.Instructor, exams []models.Exam) []models.Instructor {
	updated := make([]models.Instructor, len(instructors))
	for i, instructor := range instructors {
		instructor.CurrentLoad = countProctored(instructor, exams)
		updated[i] = instructor
	}
	return updated
}

func countProctored(instructor models.Instructor, exams []models.Exam) int {
	count := 0
	for _, exam := range exams {
		if instructor.Proctors(exam) {
			count++
		}
	}
	return count
}

func pendingCourses(courses []models.Course, existing []models.Exam) []models.Course {
	scheduled := make(map[string]bool, len(existing))
	for _, exam := range existing {
		scheduled[exam.CourseCode] = true
	}
	pending := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if course.IsActive() && !scheduled[course.Code] {
			pending = append(pending, course)
		}
	}
	return pending
}

var levelOrder = []int{models.CourseLevel400, models.CourseLevel300, models.CourseLevel200, models.CourseLevel100}

func orderByLevel(courses []models.Course) []models.Course {
	ordered := make([]models.Course, 0, len(courses))
	for _, level := range levelOrder {
		for _, course := range courses {
			if course.Level() == level {
				ordered = append(ordered, course)
			}
		}
	}
	return ordered
}

func duplicateInstructorWarnings(instructors []models.Instructor) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, instructor := range instructors {
		if instructor.FullName == "" {
			continue
		}
		if counts[instructor.FullName] == 0 {
			order = append(order, instructor.FullName)
		}
		counts[instructor.FullName]++
	}
	warnings := make([]string, 0)
	for _, name := range order {
		if counts[name] > 1 {
			warnings = append(warnings, fmt.Sprintf("instructor name %q is shared by %d records; exams without an instructor id match all of them", name, counts[name]))
		}
	}
	return warnings
}

// placementLedger holds persisted exams and exams placed earlier in the run, indexed by slot.
type placementLedger struct {
	bySlot map[string][]models.Exam
}

func newPlacementLedger(existing []models.Exam) *placementLedger {
	ledger := &placementLedger{bySlot: make(map[string][]models.Exam)}
	for _, exam := range existing {
		ledger.add(exam)
	}
	return ledger
}

func slotKey(date, slot string) string {
	return date + "|" + slot
}

func (l *placementLedger) add(exam models.Exam) {
	key := slotKey(exam.Date, exam.Time)
	l.bySlot[key] = append(l.bySlot[key], exam)
}

func (l *placementLedger) at(date, slot string) []models.Exam {
	return l.bySlot[slotKey(date, slot)]
}

// placementCandidate is one (instructor, date, slot) attempt.
type placementCandidate struct {
	instructorIdx int
	date          string
	slot          string
}

type schedulingRun struct {
	cfg       models.ScheduleConfig
	window    ExamWindow
	weeks     int
	startWeek int
	rooms     []models.Room
	students  []models.Student
	ledger    *placementLedger
	loads     map[int]int
	scheduler *ExamScheduler
}

func (r *schedulingRun) place(course models.Course, instructors []models.Instructor) (*models.Exam, string) {
	eligible := r.eligibleInstructors(course, instructors)
	if len(eligible) == 0 {
		return nil, models.ReasonNoInstructors
	}

	enrolled := r.enrolledStudents(course.Code)

	var placed *models.Exam
	r.candidates(eligible, instructors, func(c placementCandidate) bool {
		instructor := instructors[c.instructorIdx]
		slotExams := r.ledger.at(c.date, c.slot)
		if studentsBusy(enrolled, slotExams) || instructorBusy(instructor, slotExams) {
			return true
		}
		room, color, ok := r.assignRoom(course, slotExams)
		if !ok {
			return true
		}
		exam := r.materialise(course, instructor, room, color, c)
		r.ledger.add(exam)
		r.loads[c.instructorIdx]++
		placed = &exam
		return false
	})

	if placed == nil {
		return nil, models.ReasonExhausted
	}
	return placed, ""
}

func (r *schedulingRun) eligibleInstructors(course models.Course, instructors []models.Instructor) []int {
	eligible := make([]int, 0)
	for idx, instructor := range instructors {
		if instructor.Department == course.Department && instructor.IsActive() {
			eligible = append(eligible, idx)
		}
	}
	sort.SliceStable(eligible, func(a, b int) bool {
		return r.loads[eligible[a]] < r.loads[eligible[b]]
	})
	return eligible
}

// candidates yields attempts in search order until yield returns false.
func (r *schedulingRun) candidates(eligible []int, instructors []models.Instructor, yield func(placementCandidate) bool) {
	for _, idx := range eligible {
		maxLoad := instructors[idx].MaxLoad
		if maxLoad <= 0 {
			maxLoad = r.scheduler.defaultMaxLoad
		}
		if r.loads[idx] >= maxLoad {
			continue
		}
		for week := 0; week < r.weeks; week++ {
			for _, day := range r.window.Weekdays {
				date := ExamDate(r.cfg.SemesterStart, r.startWeek, week, day)
				for _, slot := range r.window.Slots {
					if !slot.OfferedOn(day) {
						continue
					}
					if !yield(placementCandidate{instructorIdx: idx, date: date, slot: slot.Label}) {
						return
					}
				}
			}
		}
	}
}

func (r *schedulingRun) enrolledStudents(courseCode string) []models.Student {
	enrolled := make([]models.Student, 0)
	for _, student := range r.students {
		if student.IsEnrolled(courseCode) {
			enrolled = append(enrolled, student)
		}
	}
	return enrolled
}

func studentsBusy(enrolled []models.Student, slotExams []models.Exam) bool {
	for _, exam := range slotExams {
		for _, student := range enrolled {
			if student.IsEnrolled(exam.CourseCode) {
				return true
			}
		}
	}
	return false
}

func instructorBusy(instructor models.Instructor, slotExams []models.Exam) bool {
	for _, exam := range slotExams {
		if instructor.Proctors(exam) {
			return true
		}
	}
	return false
}

// assignRoom picks the first room, snug rooms first, that has an unclaimed seat color and
// no exam of the same course level at the slot.
func (r *schedulingRun) assignRoom(course models.Course, slotExams []models.Exam) (models.Room, string, bool) {
	snug := make([]models.Room, 0)
	larger := make([]models.Room, 0)
	for _, room := range r.rooms {
		if !room.IsAvailable() || room.Capacity < course.Enrolled {
			continue
		}
		if room.Capacity <= course.Enrolled+r.scheduler.snugMargin {
			snug = append(snug, room)
		} else {
			larger = append(larger, room)
		}
	}

	level := course.Level()
	for _, room := range append(snug, larger...) {
		claimed := make(map[string]bool)
		levelClash := false
		for _, exam := range slotExams {
			if exam.Room != room.Name {
				continue
			}
			claimed[exam.SeatColor] = true
			if examLevel(exam) == level {
				levelClash = true
			}
		}
		if levelClash {
			continue
		}
		free := room.UnclaimedSeatColors(claimed)
		if len(free) == 0 {
			continue
		}
		return room, free[0], true
	}
	return models.Room{}, "", false
}

func examLevel(exam models.Exam) int {
	if exam.CourseLevel > 0 {
		return exam.CourseLevel
	}
	return models.CourseLevelFromCode(exam.CourseCode)
}

func (r *schedulingRun) materialise(course models.Course, instructor models.Instructor, room models.Room, color string, c placementCandidate) models.Exam {
	return models.Exam{
		ID:               r.scheduler.newID(),
		CourseCode:       course.Code,
		CourseName:       course.Name,
		Instructor:       instructor.FullName,
		InstructorID:     instructor.ID,
		Room:             room.Name,
		Building:         room.Building,
		SeatColor:        color,
		Date:             c.date,
		Time:             c.slot,
		Duration:         r.cfg.ExamDuration,
		EnrolledStudents: course.Enrolled,
		RoomCapacity:     room.Capacity,
		ExamType:         r.cfg.ExamType,
		CourseLevel:      course.Level(),
		Status:           models.ExamStatusScheduled,
		AutoScheduled:    true,
		CreatedAt:        r.scheduler.now(),
	}
}
