package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseLevelFromCode(t *testing.T) {
	cases := map[string]int{
		"CSCI101":                CourseLevel100,
		"MATH250":                CourseLevel200,
		"PHYS3":                  CourseLevel100,
		"BIO310L":                CourseLevel300,
		"CS401":                  CourseLevel400,
		"CS9999":                 CourseLevel400,
		"SEMINAR":                CourseLevel100,
		"CS99999999999999999999": CourseLevel400,
	}
	for code, want := range cases {
		assert.Equal(t, want, CourseLevelFromCode(code), code)
	}
}

func TestCourseEnrollmentBand(t *testing.T) {
	assert.Equal(t, "Full", Course{Capacity: 40, Enrolled: 38}.EnrollmentBand())
	assert.Equal(t, "Available", Course{Capacity: 0, Enrolled: 10}.EnrollmentBand())
}
