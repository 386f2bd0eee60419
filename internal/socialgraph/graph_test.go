package socialgraph

import (
	"testing"

	"example.com/twitterfeed/internal/store"
)

func TestFolloweesOfUnknownUser(t *testing.T) {
	g := New(store.NewMock())

	followees, err := g.FolloweesOf("no-such-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(followees) != 0 {
		t.Fatalf("expected empty followee set, got %v", followees)
	}
}

func TestFolloweesOf(t *testing.T) {
	mock := store.NewMock()
	g := New(mock)

	mock.CreateFollow("a", "b")
	mock.CreateFollow("a", "c")
	mock.CreateFollow("b", "c")

	followees, err := g.FolloweesOf("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(followees) != 2 {
		t.Fatalf("expected 2 followees, got %v", followees)
	}
}

func TestFolloweesOfDeduplicates(t *testing.T) {
	mock := store.NewMock()
	g := New(mock)

	// Parallel edges for the same pair
	mock.CreateFollow("a", "b")
	mock.CreateFollow("a", "b")
	mock.CreateFollow("a", "c")

	followees, err := g.FolloweesOf("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(followees) != 2 {
		t.Fatalf("expected 2 distinct followees, got %v", followees)
	}
	seen := map[string]bool{}
	for _, id := range followees {
		if seen[id] {
			t.Fatalf("duplicate followee %q in %v", id, followees)
		}
		seen[id] = true
	}
}

func TestFollowersOfDeduplicates(t *testing.T) {
	mock := store.NewMock()
	g := New(mock)

	// Parallel edges for the same pair
	mock.CreateFollow("a", "c")
	mock.CreateFollow("a", "c")
	mock.CreateFollow("b", "c")

	followers, err := g.FollowersOf("c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(followers) != 2 {
		t.Fatalf("expected 2 distinct followers, got %v", followers)
	}
	seen := map[string]bool{}
	for _, id := range followers {
		if seen[id] {
			t.Fatalf("duplicate follower %q in %v", id, followers)
		}
		seen[id] = true
	}
}

func TestGraphPropagatesStoreErrors(t *testing.T) {
	g := New(&store.MockStoreFail{})

	if _, err := g.FolloweesOf("a"); err == nil {
		t.Fatalf("expected error from failing store")
	}
	if _, err := g.FollowersOf("a"); err == nil {
		t.Fatalf("expected error from failing store")
	}
}
