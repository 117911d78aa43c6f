package cli

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
)

// snapshotFile holds the five collections read from a YAML or JSON document.
type snapshotFile struct {
	path string
	snap models.Snapshot
}

func loadSnapshotFile(path string) (*snapshotFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap models.Snapshot
	// JSON is a subset of YAML 1.2, so one decoder covers both.
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snapshotFile{path: path, snap: snap}, nil
}

func (f *snapshotFile) save() error {
	raw, err := yaml.Marshal(f.snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// stores exposes the in-memory collections through the service store contracts.
func (f *snapshotFile) stores() service.Stores {
	return service.Stores{
		Courses:     &fileCollection[models.Course]{items: &f.snap.Courses},
		Instructors: &fileCollection[models.Instructor]{items: &f.snap.Instructors},
		Rooms:       &fileCollection[models.Room]{items: &f.snap.Rooms},
		Students:    &fileCollection[models.Student]{items: &f.snap.Students},
		Exams:       &fileCollection[models.Exam]{items: &f.snap.Exams},
	}
}

type fileCollection[T any] struct {
	items *[]T
}

func (c *fileCollection[T]) ListAll(ctx context.Context) ([]T, error) {
	out := make([]T, len(*c.items))
	copy(out, *c.items)
	return out, nil
}

func (c *fileCollection[T]) ReplaceAll(ctx context.Context, items []T) error {
	*c.items = append([]T(nil), items...)
	return nil
}
