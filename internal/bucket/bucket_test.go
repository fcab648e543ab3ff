package bucket

import "testing"

type fakeEntry struct {
	path string
	size int64
}

func TestBySizeDropsSingletons(t *testing.T) {
	in := make(chan fakeEntry, 4)
	in <- fakeEntry{"a", 5}
	in <- fakeEntry{"b", 5}
	in <- fakeEntry{"c", 3}
	close(in)

	got := BySize(in, func(e fakeEntry) int64 { return e.size })
	if len(got) != 1 {
		t.Fatalf("expected exactly one surviving size bucket, got %d", len(got))
	}
	members, ok := got[5]
	if !ok || len(members) != 2 {
		t.Fatalf("expected size-5 bucket with 2 members, got %v", got)
	}
}

func TestByKeyDropsSingletons(t *testing.T) {
	in := []fakeEntry{
		{"a", 1}, {"b", 1}, {"c", 2},
	}
	got := ByKey(in, func(e fakeEntry) int64 { return e.size })
	if len(got) != 1 {
		t.Fatalf("expected exactly one surviving key bucket, got %d", len(got))
	}
	if len(got[1]) != 2 {
		t.Fatalf("expected 2 members for key 1, got %v", got[1])
	}
}

func TestBySizeEmptyStream(t *testing.T) {
	in := make(chan fakeEntry)
	close(in)
	got := BySize(in, func(e fakeEntry) int64 { return e.size })
	if len(got) != 0 {
		t.Fatalf("expected no buckets, got %v", got)
	}
}
