package models

// ConflictSeverity weights a conflict for presentation.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "high"
	SeverityMedium ConflictSeverity = "medium"
	SeverityLow    ConflictSeverity = "low"
)

// ConflictType tags the rule a conflict violates.
type ConflictType string

const (
	ConflictTypeRoom       ConflictType = "room"
	ConflictTypeCapacity   ConflictType = "capacity"
	ConflictTypeInstructor ConflictType = "instructor"
	ConflictTypeStudent    ConflictType = "student"
)

// Conflict is one detected violation. Pairwise conflicts carry Exam1/Exam2,
// capacity conflicts carry Exam together with the resolved Course and RoomRef.
type Conflict struct {
	Type             ConflictType     `json:"type"`
	ConflictID       string           `json:"conflictId"`
	Severity         ConflictSeverity `json:"severity"`
	Date             string           `json:"date"`
	Time             string           `json:"time"`
	Exam1            *Exam            `json:"exam1,omitempty"`
	Exam2            *Exam            `json:"exam2,omitempty"`
	Exam             *Exam            `json:"exam,omitempty"`
	Course           *Course          `json:"course,omitempty"`
	RoomRef          *Room            `json:"roomRef,omitempty"`
	Room             string           `json:"room,omitempty"`
	SeatColor        string           `json:"seatColor,omitempty"`
	Instructor       string           `json:"instructor,omitempty"`
	StudentID        string           `json:"studentId,omitempty"`
	StudentName      string           `json:"studentName,omitempty"`
	StudentsEnrolled int              `json:"studentsEnrolled,omitempty"`
	RoomCapacity     int              `json:"roomCapacity,omitempty"`
	Overflow         int              `json:"overflow,omitempty"`
}

// ConflictReport groups conflicts by category; capacity conflicts live under Room.
type ConflictReport struct {
	Room       []Conflict `json:"room"`
	Instructor []Conflict `json:"instructor"`
	Student    []Conflict `json:"student"`
}

// Total counts every conflict in the report.
func (r ConflictReport) Total() int {
	return len(r.Room) + len(r.Instructor) + len(r.Student)
}

// CountByType tallies conflicts per type tag.
func (r ConflictReport) CountByType() map[ConflictType]int {
	counts := map[ConflictType]int{
		ConflictTypeRoom:       0,
		ConflictTypeCapacity:   0,
		ConflictTypeInstructor: 0,
		ConflictTypeStudent:    0,
	}
	for _, group := range [][]Conflict{r.Room, r.Instructor, r.Student} {
		for _, c := range group {
			counts[c.Type]++
		}
	}
	return counts
}
