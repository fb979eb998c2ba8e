package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryRegistry_CopiesOnReadAndWrite(t *testing.T) {
	reg := NewMemoryRegistry()

	job := Job{ID: "a", Status: StatusPending, Messages: []string{"one"}}
	reg.Put(job)
	job.Messages[0] = "mutated"

	got, ok := reg.Get("a")
	if !ok {
		t.Fatal("Get(a) not found")
	}
	if got.Messages[0] != "one" {
		t.Errorf("stored message = %q, want one (Put must copy)", got.Messages[0])
	}

	got.Messages[0] = "mutated again"
	again, _ := reg.Get("a")
	if again.Messages[0] != "one" {
		t.Errorf("stored message = %q, want one (Get must copy)", again.Messages[0])
	}
}

func TestMemoryRegistry_Update(t *testing.T) {
	reg := NewMemoryRegistry()
	reg.Put(Job{ID: "a", Status: StatusInProgress})

	got, err := reg.Update("a", func(j *Job) { j.CurrentStage = "normalize" })
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	if got.CurrentStage != "normalize" {
		t.Errorf("CurrentStage = %q, want normalize", got.CurrentStage)
	}

	if _, err := reg.Update("missing", func(*Job) {}); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestMemoryRegistry_CompareAndSwapStatus(t *testing.T) {
	reg := NewMemoryRegistry()
	reg.Put(Job{ID: "a", Status: StatusPending})

	if _, ok := reg.CompareAndSwapStatus("a", StatusInProgress, StatusCompleted, nil); ok {
		t.Error("swap from wrong status succeeded")
	}

	got, ok := reg.CompareAndSwapStatus("a", StatusPending, StatusInProgress, func(j *Job) {
		j.Message = "started"
	})
	if !ok {
		t.Fatal("swap from pending failed")
	}
	if got.Status != StatusInProgress || got.Message != "started" {
		t.Errorf("job = %+v, want in-progress with message", got)
	}

	if _, ok := reg.CompareAndSwapStatus("missing", StatusPending, StatusFailed, nil); ok {
		t.Error("swap of missing job succeeded")
	}
}

func TestMemoryRegistry_ListNewestFirst(t *testing.T) {
	reg := NewMemoryRegistry()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	reg.Put(Job{ID: "old", CreatedAt: base})
	reg.Put(Job{ID: "new", CreatedAt: base.Add(time.Hour)})
	reg.Put(Job{ID: "mid", CreatedAt: base.Add(time.Minute)})

	var ids []string
	for _, j := range reg.List() {
		ids = append(ids, j.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old"}, ids); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}
}

func TestPurgeFinished(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Now()
	old := now.Add(-2 * time.Hour)
	recent := now.Add(-time.Minute)

	reg.Put(Job{ID: "done-old", Status: StatusCompleted, FinishedAt: &old})
	reg.Put(Job{ID: "done-recent", Status: StatusFailed, FinishedAt: &recent})
	reg.Put(Job{ID: "running", Status: StatusInProgress})

	if n := purgeFinished(reg, now.Add(-time.Hour)); n != 1 {
		t.Errorf("purgeFinished removed %d, want 1", n)
	}
	if _, ok := reg.Get("done-old"); ok {
		t.Error("done-old still present")
	}
	for _, id := range []string{"done-recent", "running"} {
		if _, ok := reg.Get(id); !ok {
			t.Errorf("%s was purged", id)
		}
	}
}
