package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRecordAndSnapshot(t *testing.T) {
	c := NewCollector()

	c.Record(OpChat, 100*time.Millisecond, false)
	c.Record(OpChat, 300*time.Millisecond, true)

	snap := c.Snapshot()
	if snap.Chat == nil {
		t.Fatal("expected chat snapshot")
	}
	if snap.Chat.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.Chat.Count)
	}
	if snap.Chat.Failures != 1 {
		t.Errorf("Failures = %d, want 1", snap.Chat.Failures)
	}
	if snap.Chat.MinTimeMs != 100 {
		t.Errorf("MinTimeMs = %d, want 100", snap.Chat.MinTimeMs)
	}
	if snap.Chat.MaxTimeMs != 300 {
		t.Errorf("MaxTimeMs = %d, want 300", snap.Chat.MaxTimeMs)
	}
	if snap.Chat.AvgTimeMs != 200 {
		t.Errorf("AvgTimeMs = %v, want 200", snap.Chat.AvgTimeMs)
	}
}

func TestSnapshotOmitsUnusedOps(t *testing.T) {
	c := NewCollector()
	c.Record(OpHealth, time.Millisecond, false)

	snap := c.Snapshot()
	if snap.Chat != nil || snap.Upload != nil {
		t.Error("unused operations should be nil in the snapshot")
	}
	if snap.Health == nil {
		t.Error("recorded operation missing from snapshot")
	}
}

func TestTimePropagatesError(t *testing.T) {
	c := NewCollector()
	want := errors.New("boom")

	err := c.Time(OpUpload, func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Time returned %v, want %v", err, want)
	}

	snap := c.Snapshot()
	if snap.Upload == nil || snap.Upload.Failures != 1 {
		t.Error("failed call not recorded as failure")
	}
}

func TestConcurrentRecords(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Record(OpChat, time.Millisecond, j%10 == 0)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Chat.Count != 1000 {
		t.Errorf("Count = %d, want 1000", snap.Chat.Count)
	}
	if snap.Chat.Failures != 100 {
		t.Errorf("Failures = %d, want 100", snap.Chat.Failures)
	}
}
