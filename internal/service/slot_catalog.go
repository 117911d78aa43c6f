package service

import (
	"time"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// Weekday offsets counted from the semester start day.
const (
	weekdayMonday    = 1
	weekdayTuesday   = 2
	weekdayWednesday = 3
	weekdayThursday  = 4
	weekdayFriday    = 5
	weekdaySaturday  = 6
)

// ExamSlot is one bookable time block and the weekdays it is offered on.
type ExamSlot struct {
	Label    string
	Weekdays []int
}

// OfferedOn reports whether the slot runs on the weekday offset.
func (s ExamSlot) OfferedOn(weekday int) bool {
	for _, day := range s.Weekdays {
		if day == weekday {
			return true
		}
	}
	return false
}

// ExamWindow describes when exams of one type may be placed.
type ExamWindow struct {
	Weekdays     []int
	Slots        []ExamSlot
	DefaultWeeks int
}

var (
	midtermDays = []int{weekdayFriday, weekdaySaturday}
	finalDays   = []int{weekdayMonday, weekdayTuesday, weekdayWednesday, weekdayThursday}
)

var examWindows = map[models.ExamType]ExamWindow{
	models.ExamTypeMidterm: {
		Weekdays:     midtermDays,
		DefaultWeeks: 4,
		Slots: []ExamSlot{
			{Label: "08:00 - 10:00", Weekdays: midtermDays},
			{Label: "10:00 - 12:00", Weekdays: midtermDays},
			{Label: "12:00 - 14:00", Weekdays: midtermDays},
		},
	},
	models.ExamTypeFinal: {
		Weekdays:     finalDays,
		DefaultWeeks: 6,
		Slots: []ExamSlot{
			{Label: "08:00 - 10:00", Weekdays: finalDays},
			{Label: "10:00 - 12:00", Weekdays: finalDays},
			{Label: "12:00 - 14:00", Weekdays: finalDays},
			{Label: "14:00 - 16:00", Weekdays: finalDays},
		},
	},
}

// WindowFor returns the exam window of the type, defaulting to the midterm window.
func WindowFor(examType models.ExamType) ExamWindow {
	if window, ok := examWindows[examType]; ok {
		return window
	}
	return examWindows[models.ExamTypeMidterm]
}

// SlotLabels lists the slot labels of an exam type in catalog order.
func SlotLabels(examType models.ExamType) []string {
	window := WindowFor(examType)
	labels := make([]string, 0, len(window.Slots))
	for _, slot := range window.Slots {
		labels = append(labels, slot.Label)
	}
	return labels
}

// ExamDate resolves the calendar day of an attempt as
// semesterStart + ((startWeek + weekOffset - 1) * 7 + weekday) days.
func ExamDate(semesterStart time.Time, startWeek, weekOffset, weekday int) string {
	base := time.Date(semesterStart.Year(), semesterStart.Month(), semesterStart.Day(), 0, 0, 0, 0, time.UTC)
	days := (startWeek+weekOffset-1)*7 + weekday
	return base.AddDate(0, 0, days).Format(models.ExamDateLayout)
}
