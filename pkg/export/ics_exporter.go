package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const calendarProductID = "-//exam-scheduler-api//exam timetable//EN"

// CalendarEvent is one timed entry of a calendar feed.
type CalendarEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders calendar feeds in iCalendar format.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{now: func() time.Time { return time.Now().UTC() }}
}

// ContentType returns the calendar MIME type.
func (e *ICSExporter) ContentType() string { return "text/calendar" }

// Render serialises the events into a published calendar named name.
func (e *ICSExporter) Render(name string, events []CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	stamp := e.now()
	for _, evt := range events {
		if evt.UID == "" {
			return nil, fmt.Errorf("calendar event %q has no uid", evt.Summary)
		}
		if !evt.End.After(evt.Start) {
			return nil, fmt.Errorf("calendar event %s ends before it starts", evt.UID)
		}
		event := cal.AddEvent(evt.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(evt.Start)
		event.SetEndAt(evt.End)
		event.SetSummary(evt.Summary)
		if evt.Location != "" {
			event.SetLocation(evt.Location)
		}
		if evt.Description != "" {
			event.SetDescription(evt.Description)
		}
	}
	return []byte(cal.Serialize()), nil
}

// ParseSlot splits a slot label such as "08:00 - 10:00" on date into start and end times.
func ParseSlot(date, slot string) (time.Time, time.Time, error) {
	parts := strings.Split(slot, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed time slot %q", slot)
	}
	start, err := time.Parse("2006-01-02 15:04", date+" "+strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse slot start: %w", err)
	}
	end, err := time.Parse("2006-01-02 15:04", date+" "+strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse slot end: %w", err)
	}
	return start, end, nil
}
