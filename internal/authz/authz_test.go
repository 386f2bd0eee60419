package authz

import (
	"testing"
	"time"

	"example.com/twitterfeed/internal/models"
	"example.com/twitterfeed/internal/socialgraph"
	"example.com/twitterfeed/internal/store"
)

func setup(t *testing.T) (*store.MockStore, *Authorizer) {
	t.Helper()
	mock := store.NewMock()
	return mock, New(mock, socialgraph.New(mock))
}

func addTweet(t *testing.T, mock *store.MockStore, id, authorID string) {
	t.Helper()
	err := mock.InsertTweet(models.Tweet{
		ID:       id,
		AuthorID: authorID,
		Body:     "hello",
		Created:  time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertTweet failed: %v", err)
	}
}

func TestAuthorAlwaysAllowed(t *testing.T) {
	mock, a := setup(t)
	addTweet(t, mock, "t1", "bob")

	// No follow edges at all
	allowed, err := a.CanAccess("bob", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("author must always see their own tweet")
	}
}

func TestFollowerAllowed(t *testing.T) {
	mock, a := setup(t)
	addTweet(t, mock, "t1", "bob")
	mock.CreateFollow("alice", "bob")

	allowed, err := a.CanAccess("alice", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("follower must see followee's tweet")
	}
}

func TestNonFollowerDenied(t *testing.T) {
	mock, a := setup(t)
	addTweet(t, mock, "t1", "bob")
	// carol follows nobody; bob follows carol, which must not help carol
	mock.CreateFollow("bob", "carol")

	allowed, err := a.CanAccess("carol", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("non-follower must not see the tweet")
	}
}

func TestUnknownTweetDeniedWithoutError(t *testing.T) {
	_, a := setup(t)

	allowed, err := a.CanAccess("alice", "no-such-tweet")
	if err != nil {
		t.Fatalf("unknown tweet must not be an error, got %v", err)
	}
	if allowed {
		t.Fatalf("unknown tweet must be denied")
	}
}

func TestAccessReflectsCurrentEdges(t *testing.T) {
	mock, a := setup(t)
	addTweet(t, mock, "t1", "bob")

	allowed, _ := a.CanAccess("alice", "t1")
	if allowed {
		t.Fatalf("expected denial before the follow edge exists")
	}

	mock.CreateFollow("alice", "bob")

	allowed, _ = a.CanAccess("alice", "t1")
	if !allowed {
		t.Fatalf("expected access after the follow edge is added")
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	failing := &store.MockStoreFail{}
	a := New(failing, socialgraph.New(failing))

	if _, err := a.CanAccess("alice", "t1"); err == nil {
		t.Fatalf("store failure must surface as an error, not a deny")
	}
}
