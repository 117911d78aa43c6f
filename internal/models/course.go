package models

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/lib/pq"
)

// CourseStatus marks whether a course is offered this term.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
)

// Course levels used to order scheduling passes.
const (
	CourseLevel100 = 100
	CourseLevel200 = 200
	CourseLevel300 = 300
	CourseLevel400 = 400
)

// Course is an offered course whose exam needs a slot.
type Course struct {
	ID            string         `db:"id" json:"id" yaml:"id"`
	Code          string         `db:"code" json:"code" yaml:"code" validate:"required"`
	Name          string         `db:"name" json:"name" yaml:"name" validate:"required"`
	Department    string         `db:"department" json:"department" yaml:"department" validate:"required"`
	Credits       int            `db:"credits" json:"credits" yaml:"credits" validate:"gte=0"`
	Capacity      int            `db:"capacity" json:"capacity" yaml:"capacity" validate:"gte=0"`
	Enrolled      int            `db:"enrolled" json:"enrolled" yaml:"enrolled" validate:"gte=0"`
	Status        CourseStatus   `db:"status" json:"status" yaml:"status" validate:"omitempty,oneof=active inactive"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites" yaml:"prerequisites"`
	Instructor    *string        `db:"instructor" json:"instructor,omitempty" yaml:"instructor,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at" yaml:"-"`
}

// Level derives the course tier from its code.
func (c Course) Level() int {
	return CourseLevelFromCode(c.Code)
}

// IsActive reports whether the course takes part in scheduling.
func (c Course) IsActive() bool {
	return c.Status == CourseStatusActive
}

// EnrollmentPercentage returns enrolled/capacity rounded to a whole percent.
func (c Course) EnrollmentPercentage() int {
	if c.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(c.Enrolled) / float64(c.Capacity) * 100))
}

// EnrollmentBand buckets the enrollment percentage for display.
func (c Course) EnrollmentBand() string {
	pct := c.EnrollmentPercentage()
	switch {
	case pct >= 90:
		return "Full"
	case pct >= 70:
		return "Almost Full"
	case pct >= 50:
		return "Moderate"
	default:
		return "Available"
	}
}

// CourseLevelFromCode reads the first run of digits in a course code.
// Codes without digits fall into the 100 level; digit runs too long to parse are 400 level.
func CourseLevelFromCode(code string) int {
	start := -1
	end := len(code)
	for i := 0; i < len(code); i++ {
		isDigit := code[i] >= '0' && code[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return CourseLevel100
	}
	number, err := strconv.Atoi(code[start:end])
	if errors.Is(err, strconv.ErrRange) {
		return CourseLevel400
	}
	if err != nil {
		return CourseLevel100
	}
	switch {
	case number >= 400:
		return CourseLevel400
	case number >= 300:
		return CourseLevel300
	case number >= 200:
		return CourseLevel200
	default:
		return CourseLevel100
	}
}
