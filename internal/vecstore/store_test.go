package vecstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/mentorgraph/mentorgraph/internal/models"
)

func mentorMeta(userID string) Metadata {
	return Metadata{UserID: userID, UserType: models.UserTypeMentor, Kind: KindProfileSnapshot}
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := New(3)

	for want := int64(0); want < 5; want++ {
		id, err := s.Append([]float32{1, 2, 3}, mentorMeta("u1"))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if id != want {
			t.Errorf("Append() id = %d, want %d", id, want)
		}
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestAppendDimensionMismatch(t *testing.T) {
	s := New(3)

	_, err := s.Append([]float32{1, 2}, mentorMeta("u1"))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Append() error = %v, want ErrDimensionMismatch", err)
	}
	if s.Len() != 0 {
		t.Error("failed append must not grow the log")
	}
}

func TestReconstructRoundTrip(t *testing.T) {
	s := New(4)
	v := []float32{0.1, -0.2, 0.3, 0.9}

	id, err := s.Append(v, Metadata{UserID: "u1", UserType: models.UserTypeMentee, Kind: KindSessionSnapshot})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Mutating the caller's slice must not affect the stored copy.
	v[0] = 99

	got, err := s.Reconstruct(id)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	want := []float32{0.1, -0.2, 0.3, 0.9}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-7 {
			t.Errorf("Reconstruct()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := s.Reconstruct(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reconstruct(99) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Reconstruct(-1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reconstruct(-1) error = %v, want ErrNotFound", err)
	}
}

func TestLatestSnapshotReturnsNewest(t *testing.T) {
	s := New(2)

	// Three profile updates for the same user; interleave another user and a
	// session snapshot to make sure neither wins.
	if _, err := s.Append([]float32{1, 0}, mentorMeta("u1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{9, 9}, mentorMeta("u2")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{2, 0}, mentorMeta("u1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{7, 7}, Metadata{UserID: "u1", UserType: models.UserTypeMentor, Kind: KindSessionSnapshot}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{3, 0}, mentorMeta("u1")); err != nil {
		t.Fatal(err)
	}

	got, err := s.LatestSnapshot("u1")
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(got, []float32{3, 0}) {
		t.Errorf("LatestSnapshot() = %v, want [3 0]", got)
	}

	// The side map and the definitional backward scan must agree.
	scanID, ok := s.latestByScan("u1")
	if !ok {
		t.Fatal("latestByScan() found nothing")
	}
	if scanID != s.latest["u1"] {
		t.Errorf("side map id = %d, scan id = %d", s.latest["u1"], scanID)
	}

	if _, err := s.LatestSnapshot("stranger"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LatestSnapshot(stranger) error = %v, want ErrNoSnapshot", err)
	}
}

func TestSearch(t *testing.T) {
	s := New(2)
	if _, err := s.Append([]float32{0, 0}, mentorMeta("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{1, 0}, mentorMeta("b")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{3, 4}, mentorMeta("c")); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	if hits[0].Meta.UserID != "a" || hits[1].Meta.UserID != "b" {
		t.Errorf("Search() order = %s,%s, want a,b", hits[0].Meta.UserID, hits[1].Meta.UserID)
	}
	if hits[0].Score != 1.0 {
		t.Errorf("exact match score = %v, want 1.0", hits[0].Score)
	}
	if want := 1.0 / 2.0; math.Abs(hits[1].Score-want) > 1e-9 {
		t.Errorf("distance-1 score = %v, want %v", hits[1].Score, want)
	}

	// Scores are monotonically decreasing and within (0, 1].
	prev := 1.1
	all, _ := s.Search([]float32{0, 0}, 10)
	for _, h := range all {
		if h.Score <= 0 || h.Score > 1 {
			t.Errorf("score %v outside (0,1]", h.Score)
		}
		if h.Score > prev {
			t.Errorf("scores not descending: %v after %v", h.Score, prev)
		}
		prev = h.Score
	}
}

func TestSearchTieBreaksByEntryID(t *testing.T) {
	s := New(2)
	// Two identical vectors: distance ties, lower id wins.
	if _, err := s.Append([]float32{1, 1}, mentorMeta("first")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append([]float32{1, 1}, mentorMeta("second")); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search([]float32{1, 1}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if hits[0].EntryID != 0 || hits[1].EntryID != 1 {
		t.Errorf("tie order = %d,%d, want 0,1", hits[0].EntryID, hits[1].EntryID)
	}
}

func TestSearchEmptyStoreAndEdgeCases(t *testing.T) {
	s := New(2)

	hits, err := s.Search([]float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() on empty store error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search() on empty store returned %d hits", len(hits))
	}

	if _, err := s.Search([]float32{0}, 5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search() with bad query dim error = %v, want ErrDimensionMismatch", err)
	}

	if _, err := s.Append([]float32{1, 2}, mentorMeta("a")); err != nil {
		t.Fatal(err)
	}
	hits, err = s.Search([]float32{1, 2}, 0)
	if err != nil || len(hits) != 0 {
		t.Errorf("Search() with k=0 = %v hits, err %v; want empty, nil", len(hits), err)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	s := New(2)
	for i := 0; i < 4; i++ {
		if _, err := s.Append([]float32{float32(i), 1}, mentorMeta(fmt.Sprintf("u%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	first, err := s.Search([]float32{0.5, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Search([]float32{0.5, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive identical searches differ:\n%+v\n%+v", first, second)
	}
	if s.Len() != 4 {
		t.Errorf("Search() mutated the store: Len() = %d", s.Len())
	}
}

func TestRecordProfile(t *testing.T) {
	s := New(2)
	embedCalls := 0
	embed := func(ctx context.Context, text string) ([]float32, error) {
		embedCalls++
		return []float32{1, 2}, nil
	}

	// Empty context: no append, no embed call.
	if err := s.RecordProfile(context.Background(), "u1", models.UserTypeMentee, "", embed); err != nil {
		t.Fatalf("RecordProfile() with empty context error = %v", err)
	}
	if embedCalls != 0 || s.Len() != 0 {
		t.Errorf("empty context must be a no-op: calls=%d len=%d", embedCalls, s.Len())
	}

	if err := s.RecordProfile(context.Background(), "u1", models.UserTypeMentee, "Goal: Improve Skills", embed); err != nil {
		t.Fatalf("RecordProfile() error = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	vec, err := s.LatestSnapshot("u1")
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(vec, []float32{1, 2}) {
		t.Errorf("LatestSnapshot() = %v, want [1 2]", vec)
	}

	// Embed failure surfaces and leaves no partial state.
	boom := errors.New("encoder down")
	err = s.RecordProfile(context.Background(), "u1", models.UserTypeMentee, "Goal: X", func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("RecordProfile() error = %v, want wrapped encoder error", err)
	}
	if s.Len() != 1 {
		t.Errorf("failed embed must not append: Len() = %d", s.Len())
	}

	// Wrong-dimension embed output is a dimension mismatch.
	err = s.RecordProfile(context.Background(), "u1", models.UserTypeMentee, "Goal: X", func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 2, 3}, nil
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("RecordProfile() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestConcurrentAppendsDoNotCollide(t *testing.T) {
	s := New(1)
	const n = 200

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.Append([]float32{float32(i)}, mentorMeta(fmt.Sprintf("u%d", i%5)))
			if err != nil {
				t.Error(err)
				return
			}
			ids <- id
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate entry id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
}
