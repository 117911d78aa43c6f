package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

var errStoreDown = errors.New("store down")

type memoryCollection[T any] struct {
	mu         sync.Mutex
	items      []T
	replaces   int
	listErr    error
	replaceErr error
}

func (m *memoryCollection[T]) ListAll(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memoryCollection[T]) ReplaceAll(ctx context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.items = make([]T, len(items))
	copy(m.items, items)
	m.replaces++
	return nil
}

func (m *memoryCollection[T]) snapshot() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

type memoryStores struct {
	courses     *memoryCollection[models.Course]
	instructors *memoryCollection[models.Instructor]
	rooms       *memoryCollection[models.Room]
	students    *memoryCollection[models.Student]
	exams       *memoryCollection[models.Exam]
	gate        *WriteGate
}

func newMemoryStores(snap models.Snapshot) *memoryStores {
	return &memoryStores{
		courses:     &memoryCollection[models.Course]{items: snap.Courses},
		instructors: &memoryCollection[models.Instructor]{items: snap.Instructors},
		rooms:       &memoryCollection[models.Room]{items: snap.Rooms},
		students:    &memoryCollection[models.Student]{items: snap.Students},
		exams:       &memoryCollection[models.Exam]{items: snap.Exams},
		gate:        &WriteGate{},
	}
}

func (m *memoryStores) Stores() Stores {
	return Stores{
		Courses:     m.courses,
		Instructors: m.instructors,
		Rooms:       m.rooms,
		Students:    m.students,
		Exams:       m.exams,
		Gate:        m.gate,
	}
}

type stubInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (s *stubInvalidator) Invalidate(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, pattern)
	return nil
}

type memoryReportCache struct {
	entries map[string]models.ConflictReport
	sets    int
	cleared int
}

func (m *memoryReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	report, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	*(dest.(*models.ConflictReport)) = report
	return true, nil
}

func (m *memoryReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string]models.ConflictReport)
	}
	m.entries[key] = value.(models.ConflictReport)
	m.sets++
	return nil
}

func (m *memoryReportCache) Invalidate(ctx context.Context, pattern string) error {
	m.entries = nil
	m.cleared++
	return nil
}

// schedulingFixture is one department with two instructors, two rooms and three courses.
func schedulingFixture() models.Snapshot {
	return models.Snapshot{
		Courses: []models.Course{
			activeCourse("CSCI101", "Computer Science", 30),
			activeCourse("CSCI201", "Computer Science", 25),
			activeCourse("CSCI401", "Computer Science", 20),
		},
		Instructors: []models.Instructor{
			activeInstructor("i1", "Dr. Sarah Johnson", "Computer Science"),
			activeInstructor("i2", "Dr. Alan Kay", "Computer Science"),
		},
		Rooms: []models.Room{
			availableRoom("C3", 40, "Red", "Green"),
			availableRoom("D4", 60, "Blue"),
		},
		Students: []models.Student{
			{ID: "s1", StudentID: "STU001", Name: "Ada", EnrolledCourses: []string{"CSCI101", "CSCI201"}},
		},
	}
}
