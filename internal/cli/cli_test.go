package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

const snapshotYAML = `courses:
  - {id: c1, code: CSCI401, name: Compilers, department: Computer Science, enrolled: 30, capacity: 35, status: active}
instructors:
  - {id: i1, employee_id: PROF001, full_name: Dr. Sarah Johnson, department: Computer Science, status: active, max_load: 4}
rooms:
  - {id: r1, name: C3, building: Science, capacity: 40, status: available, seat_colors: [Red, Green]}
students:
  - {id: s1, student_id: STU001, name: Ada, enrolled_courses: [CSCI401]}
exams: []
`

const conflictingYAML = `courses: []
instructors: []
rooms:
  - {id: r1, name: C3, building: Science, capacity: 40, status: available, seat_colors: [Red]}
students: []
exams:
  - {id: e1, course_code: CSCI101, room: C3, seat_color: Red, date: "2024-10-14", time: "09:00 - 11:00", exam_type: midterm}
  - {id: e2, course_code: CSCI201, room: C3, seat_color: Red, date: "2024-10-14", time: "09:00 - 11:00", exam_type: midterm}
`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConflictsCommandReportsRoomClash(t *testing.T) {
	path := writeSnapshot(t, conflictingYAML)

	out, err := execute(t, "conflicts", "--snapshot", path)
	require.NoError(t, err)

	var report models.ConflictReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Room, 1)
	assert.Equal(t, models.ConflictTypeRoom, report.Room[0].Type)
}

func TestConflictsCommandYAMLOutput(t *testing.T) {
	path := writeSnapshot(t, conflictingYAML)

	out, err := execute(t, "conflicts", "--snapshot", path, "--output", "yaml")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "room")
}

func TestScheduleCommandPreviewLeavesSnapshotUntouched(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	out, err := execute(t, "schedule", "--snapshot", path, "--type", "midterm", "--semester-start", "2024-09-02")
	require.NoError(t, err)

	var result dto.ScheduleRunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Persisted)
	require.Len(t, result.NewExams, 1)
	assert.Equal(t, "CSCI401", result.NewExams[0].CourseCode)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, snapshotYAML, string(raw))
}

func TestScheduleCommandWritePersistsExams(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	_, err := execute(t, "schedule", "--snapshot", path, "--type", "midterm", "--semester-start", "2024-09-02", "--write")
	require.NoError(t, err)

	file, err := loadSnapshotFile(path)
	require.NoError(t, err)
	require.Len(t, file.snap.Exams, 1)
	assert.Equal(t, "CSCI401", file.snap.Exams[0].CourseCode)
	require.Len(t, file.snap.Instructors, 1)
	assert.Equal(t, 1, file.snap.Instructors[0].CurrentLoad)
}

func TestScheduleCommandRejectsBadDate(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	_, err := execute(t, "schedule", "--snapshot", path, "--semester-start", "02/09/2024")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "--user", "s1", "--role", "student")
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.NotEmpty(t, payload["token"])
	assert.Equal(t, "STUDENT", payload["role"])
}

func TestTokenCommandUnknownRole(t *testing.T) {
	_, err := execute(t, "token", "--role", "dean")
	assert.Error(t, err)
}

func TestMissingSnapshot(t *testing.T) {
	_, err := execute(t, "conflicts", "--snapshot", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
