package jobregistry

import (
	"testing"
	"time"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

const (
	testUUIDOne = "0f9b7a4e-3f7c-4be2-9d3a-9a51b1c2d301"
	testUUIDTwo = "2b6e8d1c-5a09-47f3-8c44-1e2f3a4b5c02"
)

func TestStore_WriteGetRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	rec := &Record{
		JobUUID:      testUUIDOne,
		Name:         "truss-demo",
		AppID:        "opensees-express",
		AppVersion:   "3.5.0",
		InputURI:     "hpcs://hpcs.storage.default/alice/truss",
		ManifestPath: "/tmp/job.yaml",
		LastStatus:   gridapi.StatusQueued,
		SubmittedAt:  now,
	}

	if err := s.Write(rec); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := s.Get(testUUIDOne)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.JobUUID != rec.JobUUID {
		t.Fatalf("job_uuid mismatch: got=%q want=%q", got.JobUUID, rec.JobUUID)
	}
	if got.LastStatus != gridapi.StatusQueued {
		t.Fatalf("last_status mismatch: got=%q want=%q", got.LastStatus, gridapi.StatusQueued)
	}
	if got.AppID != "opensees-express" {
		t.Fatalf("app_id not persisted")
	}
}

func TestStore_RejectsMalformedUUID(t *testing.T) {
	s := NewStore(t.TempDir())
	err := s.Write(&Record{JobUUID: "not-a-uuid", AppID: "x", SubmittedAt: time.Now()})
	if err == nil {
		t.Fatalf("expected error for malformed uuid")
	}
}

func TestStore_ListSortsNewestFirst(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	t1 := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 9, 13, 0, 0, 0, time.UTC)

	if err := s.Write(&Record{JobUUID: testUUIDOne, AppID: "a", SubmittedAt: t1}); err != nil {
		t.Fatalf("Write first: %v", err)
	}
	if err := s.Write(&Record{JobUUID: testUUIDTwo, AppID: "b", SubmittedAt: t2}); err != nil {
		t.Fatalf("Write second: %v", err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected job count: %d", len(got))
	}
	if got[0].JobUUID != testUUIDTwo {
		t.Fatalf("expected newest first, got[0]=%q", got[0].JobUUID)
	}
}

func TestStore_ResolvePrefix(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Write(&Record{JobUUID: testUUIDOne, AppID: "a", SubmittedAt: time.Now()}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	full, err := s.Resolve("0f9b7a4e")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if full != testUUIDOne {
		t.Fatalf("Resolve() = %q, want %q", full, testUUIDOne)
	}

	if _, err := s.Resolve("ffff"); err == nil {
		t.Fatalf("expected error for unknown prefix")
	}
}
