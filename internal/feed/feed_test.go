package feed

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"example.com/twitterfeed/internal/models"
	"example.com/twitterfeed/internal/socialgraph"
	"example.com/twitterfeed/internal/store"
)

func setup(t *testing.T) (*store.MockStore, *Composer) {
	t.Helper()
	mock := store.NewMock()
	return mock, New(mock, socialgraph.New(mock))
}

func indexTweet(t *testing.T, mock *store.MockStore, id, authorID, username, body string, created time.Time) {
	t.Helper()
	tweet := models.Tweet{
		ID:             id,
		AuthorID:       authorID,
		AuthorUsername: username,
		Body:           body,
		Created:        created,
	}
	if err := mock.InsertTweet(tweet); err != nil {
		t.Fatalf("InsertTweet failed: %v", err)
	}
	if err := mock.IndexTweetByAuthor(tweet); err != nil {
		t.Fatalf("IndexTweetByAuthor failed: %v", err)
	}
}

func TestEmptyFollowSetYieldsEmptyFeed(t *testing.T) {
	mock, c := setup(t)

	// Tweets exist, but the viewer follows nobody: the feed must be
	// empty, never a fallback to all tweets.
	indexTweet(t, mock, "t1", "bob", "bob", "hi", time.Now())

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty feed, got %v", items)
	}
}

func TestFeedOrderedNewestFirst(t *testing.T) {
	mock, c := setup(t)
	mock.CreateFollow("alice", "bob")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	indexTweet(t, mock, "t1", "bob", "bob", "first", base)
	indexTweet(t, mock, "t2", "bob", "bob", "second", base.Add(time.Minute))

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Tweet != "second" || items[1].Tweet != "first" {
		t.Fatalf("wrong order: %+v", items)
	}
	if items[0].Username != "bob" {
		t.Fatalf("wrong username: %+v", items[0])
	}
	if items[0].DateTime != "2024-05-01 12:01:00" {
		t.Fatalf("wrong dateTime: %q", items[0].DateTime)
	}
}

func TestFeedTieBreakIsDeterministic(t *testing.T) {
	mock, c := setup(t)
	mock.CreateFollow("alice", "bob")
	mock.CreateFollow("alice", "carol")

	same := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	indexTweet(t, mock, "t-02", "bob", "bob", "from bob", same)
	indexTweet(t, mock, "t-09", "carol", "carol", "from carol", same)

	first, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Equal timestamps: higher tweet id wins
	if first[0].Tweet != "from carol" || first[1].Tweet != "from bob" {
		t.Fatalf("wrong tie-break order: %+v", first)
	}

	for i := 0; i < 5; i++ {
		again, err := c.Compose("alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("feed not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestFeedBoundedToPageSize(t *testing.T) {
	mock, c := setup(t)
	mock.CreateFollow("alice", "bob")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < PageSize+3; i++ {
		id := fmt.Sprintf("t-%02d", i)
		indexTweet(t, mock, id, "bob", "bob", fmt.Sprintf("tweet %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != PageSize {
		t.Fatalf("expected %d items, got %d", PageSize, len(items))
	}
	// Newest tweet leads the page
	if items[0].Tweet != fmt.Sprintf("tweet %d", PageSize+2) {
		t.Fatalf("expected newest tweet first, got %+v", items[0])
	}
}

func TestDuplicateFollowDoesNotDuplicateTweets(t *testing.T) {
	mock, c := setup(t)
	// Following the same author twice leaves parallel edges in the store
	mock.CreateFollow("alice", "bob")
	mock.CreateFollow("alice", "bob")

	indexTweet(t, mock, "t1", "bob", "bob", "only once please", time.Now())

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
}

func TestFeedExcludesNonFollowees(t *testing.T) {
	mock, c := setup(t)
	mock.CreateFollow("alice", "bob")

	now := time.Now()
	indexTweet(t, mock, "t1", "bob", "bob", "from bob", now)
	indexTweet(t, mock, "t2", "mallory", "mallory", "from mallory", now.Add(time.Minute))

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range items {
		if item.Username == "mallory" {
			t.Fatalf("feed leaked a non-followee tweet: %+v", items)
		}
	}
	if len(items) != 1 {
		t.Fatalf("expected only bob's tweet, got %+v", items)
	}
}

func TestOwnTweetsExcludedWithoutSelfFollow(t *testing.T) {
	mock, c := setup(t)
	mock.CreateFollow("alice", "bob")

	now := time.Now()
	indexTweet(t, mock, "t1", "bob", "bob", "from bob", now)
	indexTweet(t, mock, "t2", "alice", "alice", "from alice", now.Add(time.Minute))

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Username != "bob" {
		t.Fatalf("following feed must exclude the viewer's own tweets: %+v", items)
	}
}

func TestSelfFollowIncludesOwnTweets(t *testing.T) {
	mock, c := setup(t)
	mock.CreateFollow("alice", "alice")

	indexTweet(t, mock, "t1", "alice", "alice", "note to self", time.Now())

	items, err := c.Compose("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Username != "alice" {
		t.Fatalf("self-follow must surface own tweets: %+v", items)
	}
}

func TestFeedSurfacesStoreErrors(t *testing.T) {
	failing := &store.MockStoreFail{}
	c := New(failing, socialgraph.New(failing))

	if _, err := c.Compose("alice"); err == nil {
		t.Fatalf("store failure must surface, not become an empty feed")
	}
}
