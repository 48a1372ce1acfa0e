package memory

import (
	"fmt"
	"sync"
	"testing"
)

func TestAppendAndSnapshot(t *testing.T) {
	s := NewStore()
	s.Append("simulation_results", map[string]any{"traffic": -20})

	snap := s.Snapshot()
	list, ok := snap["simulation_results"]
	if !ok || len(list) != 1 {
		t.Fatalf("snapshot = %v, want one simulation entry", snap)
	}
	if list[0].Timestamp.IsZero() {
		t.Error("entry timestamp not stamped")
	}
	if list[0].Result["traffic"] != -20 {
		t.Errorf("result = %v, want traffic=-20", list[0].Result)
	}
}

func TestCapEvictsOldestFirst(t *testing.T) {
	s := NewStore()
	const n = 25
	for i := 0; i < n; i++ {
		s.Append("report_results", map[string]any{"seq": i})
	}

	list := s.Snapshot()["report_results"]
	if len(list) != MaxEntriesPerKey {
		t.Fatalf("kept %d entries, want %d", len(list), MaxEntriesPerKey)
	}
	// The survivors are the last 10 appends, in append order.
	for i, e := range list {
		want := n - MaxEntriesPerKey + i
		if e.Result["seq"] != want {
			t.Errorf("entry %d seq = %v, want %d", i, e.Result["seq"], want)
		}
	}
}

func TestCapIsPerKey(t *testing.T) {
	s := NewStore()
	for i := 0; i < 15; i++ {
		s.Append("debate_results", map[string]any{"i": i})
	}
	s.Append("news_results", map[string]any{"i": 0})

	snap := s.Snapshot()
	if len(snap["debate_results"]) != MaxEntriesPerKey {
		t.Errorf("debate history = %d, want %d", len(snap["debate_results"]), MaxEntriesPerKey)
	}
	if len(snap["news_results"]) != 1 {
		t.Errorf("news history = %d, want 1", len(snap["news_results"]))
	}
}

func TestClearLeavesSnapshotsIntact(t *testing.T) {
	s := NewStore()
	s.Append("planning_results", map[string]any{"plan": "a"})

	before := s.Snapshot()
	s.Clear()

	if got := s.Snapshot(); len(got) != 0 {
		t.Errorf("post-clear snapshot = %v, want empty", got)
	}
	if len(before["planning_results"]) != 1 {
		t.Error("snapshot taken before clear lost its captured context")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Append("report_results", map[string]any{"v": 1})

	snap := s.Snapshot()
	snap["report_results"] = nil
	delete(snap, "report_results")

	if len(s.Snapshot()["report_results"]) != 1 {
		t.Error("mutating a snapshot affected the store")
	}
}

func TestSizeAndKeys(t *testing.T) {
	s := NewStore()
	if s.Size() <= 0 {
		t.Error("empty store should still serialize to a positive size")
	}
	s.Append("report_results", map[string]any{"v": "x"})
	if s.Keys() != 1 {
		t.Errorf("Keys() = %d, want 1", s.Keys())
	}
	if s.Size() < 10 {
		t.Errorf("Size() = %d, suspiciously small", s.Size())
	}
}

func TestConcurrentAppendAndRead(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("cat%d_results", n%4)
			for j := 0; j < 50; j++ {
				s.Append(key, map[string]any{"j": j})
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	for key, list := range s.Snapshot() {
		if len(list) > MaxEntriesPerKey {
			t.Errorf("key %s holds %d entries, cap is %d", key, len(list), MaxEntriesPerKey)
		}
	}
}
