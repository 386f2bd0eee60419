package store

import (
	"errors"
	"fmt"
	"sort"

	"example.com/twitterfeed/internal/models"
)

var mockUserCounter int

// MockStore simulates Cassandra operations for testing.
type MockStore struct {
	Users       map[string]models.User // keyed by user_id
	FollowEdges []models.Follow        // parallel edges allowed on purpose
	Tweets      map[string]models.Tweet
	AuthorIndex map[string][]models.Tweet // author_id -> projection rows
	Likes       map[string][]models.Like
	Replies     map[string][]models.Reply
	ShouldFail  bool // flag to simulate failures
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{
		Users:       make(map[string]models.User),
		Tweets:      make(map[string]models.Tweet),
		AuthorIndex: make(map[string][]models.Tweet),
		Likes:       make(map[string][]models.Like),
		Replies:     make(map[string][]models.Reply),
	}
}

func (m *MockStore) Close() {}

// CreateUser simulates creating a new user
func (m *MockStore) CreateUser(username, passwordHash, name, gender string) (string, error) {
	if m.ShouldFail {
		return "", errors.New("mock: create user failed")
	}
	for _, u := range m.Users {
		if u.Username == username {
			return "", ErrAlreadyExists
		}
	}
	mockUserCounter++
	id := fmt.Sprintf("user_%d", mockUserCounter)
	m.Users[id] = models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
		Gender:       gender,
	}
	return id, nil
}

func (m *MockStore) GetUserByUsername(username string) (*models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get user by username failed")
	}
	for _, u := range m.Users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetUserByID(userID string) (*models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get user by id failed")
	}
	u, ok := m.Users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// CreateFollow simulates creating a follow edge. Duplicate calls append
// parallel edges so dedup behavior can be exercised.
func (m *MockStore) CreateFollow(followerID, followeeID string) error {
	if m.ShouldFail {
		return errors.New("mock: follow failed")
	}
	m.FollowEdges = append(m.FollowEdges, models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	})
	return nil
}

func (m *MockStore) ListFolloweeIDs(userID string) ([]string, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: list followees failed")
	}
	var res []string
	for _, e := range m.FollowEdges {
		if e.FollowerID == userID {
			res = append(res, e.FolloweeID)
		}
	}
	return res, nil
}

func (m *MockStore) ListFollowerIDs(userID string) ([]string, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: list followers failed")
	}
	var res []string
	for _, e := range m.FollowEdges {
		if e.FolloweeID == userID {
			res = append(res, e.FollowerID)
		}
	}
	return res, nil
}

func (m *MockStore) GetTweetByID(tweetID string) (*models.Tweet, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get tweet failed")
	}
	t, ok := m.Tweets[tweetID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MockStore) InsertTweet(t models.Tweet) error {
	if m.ShouldFail {
		return errors.New("mock: insert tweet failed")
	}
	m.Tweets[t.ID] = t
	return nil
}

func (m *MockStore) IndexTweetByAuthor(t models.Tweet) error {
	if m.ShouldFail {
		return errors.New("mock: index tweet failed")
	}
	m.AuthorIndex[t.AuthorID] = append(m.AuthorIndex[t.AuthorID], t)
	// Keep projection rows newest-first like the Cassandra clustering order.
	sort.Slice(m.AuthorIndex[t.AuthorID], func(i, j int) bool {
		a, b := m.AuthorIndex[t.AuthorID][i], m.AuthorIndex[t.AuthorID][j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return a.ID > b.ID
	})
	return nil
}

func (m *MockStore) DeleteTweet(t models.Tweet) error {
	if m.ShouldFail {
		return errors.New("mock: delete tweet failed")
	}
	delete(m.Tweets, t.ID)
	delete(m.Likes, t.ID)
	delete(m.Replies, t.ID)
	return nil
}

func (m *MockStore) RemoveTweetFromIndex(t models.Tweet) error {
	if m.ShouldFail {
		return errors.New("mock: remove from index failed")
	}
	rows := m.AuthorIndex[t.AuthorID]
	for i, row := range rows {
		if row.ID == t.ID {
			m.AuthorIndex[t.AuthorID] = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockStore) ListTweetsByAuthors(authorIDs []string, perAuthorLimit int) ([]models.Tweet, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: list tweets by authors failed")
	}
	var res []models.Tweet
	for _, authorID := range authorIDs {
		rows := m.AuthorIndex[authorID]
		if len(rows) > perAuthorLimit {
			rows = rows[:perAuthorLimit]
		}
		res = append(res, rows...)
	}
	return res, nil
}

func (m *MockStore) ListAuthorTweets(authorID string) ([]models.Tweet, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: list author tweets failed")
	}
	return m.AuthorIndex[authorID], nil
}

func (m *MockStore) InsertLike(l models.Like) error {
	if m.ShouldFail {
		return errors.New("mock: insert like failed")
	}
	m.Likes[l.TweetID] = append(m.Likes[l.TweetID], l)
	return nil
}

func (m *MockStore) InsertReply(r models.Reply) error {
	if m.ShouldFail {
		return errors.New("mock: insert reply failed")
	}
	m.Replies[r.TweetID] = append(m.Replies[r.TweetID], r)
	return nil
}

func (m *MockStore) CountLikes(tweetID string) (int, error) {
	if m.ShouldFail {
		return 0, errors.New("mock: count likes failed")
	}
	return len(m.Likes[tweetID]), nil
}

func (m *MockStore) CountReplies(tweetID string) (int, error) {
	if m.ShouldFail {
		return 0, errors.New("mock: count replies failed")
	}
	return len(m.Replies[tweetID]), nil
}

func (m *MockStore) ListLikers(tweetID string) ([]string, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: list likers failed")
	}
	var res []string
	for _, l := range m.Likes[tweetID] {
		res = append(res, l.Username)
	}
	return res, nil
}

func (m *MockStore) ListReplies(tweetID string) ([]models.Reply, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: list replies failed")
	}
	return m.Replies[tweetID], nil
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Close() {}

func (m *MockStoreFail) CreateUser(username, passwordHash, name, gender string) (string, error) {
	return "", errors.New("mock store create user failed")
}

func (m *MockStoreFail) GetUserByUsername(username string) (*models.User, error) {
	return nil, errors.New("mock store get user by username failed")
}

func (m *MockStoreFail) GetUserByID(userID string) (*models.User, error) {
	return nil, errors.New("mock store get user by id failed")
}

func (m *MockStoreFail) CreateFollow(followerID, followeeID string) error {
	return errors.New("mock store create follow failed")
}

func (m *MockStoreFail) ListFolloweeIDs(userID string) ([]string, error) {
	return nil, errors.New("mock store list followees failed")
}

func (m *MockStoreFail) ListFollowerIDs(userID string) ([]string, error) {
	return nil, errors.New("mock store list followers failed")
}

func (m *MockStoreFail) GetTweetByID(tweetID string) (*models.Tweet, error) {
	return nil, errors.New("mock store get tweet failed")
}

func (m *MockStoreFail) InsertTweet(t models.Tweet) error {
	return errors.New("mock store insert tweet failed")
}

func (m *MockStoreFail) IndexTweetByAuthor(t models.Tweet) error {
	return errors.New("mock store index tweet failed")
}

func (m *MockStoreFail) DeleteTweet(t models.Tweet) error {
	return errors.New("mock store delete tweet failed")
}

func (m *MockStoreFail) RemoveTweetFromIndex(t models.Tweet) error {
	return errors.New("mock store remove from index failed")
}

func (m *MockStoreFail) ListTweetsByAuthors(authorIDs []string, perAuthorLimit int) ([]models.Tweet, error) {
	return nil, errors.New("mock store list tweets by authors failed")
}

func (m *MockStoreFail) ListAuthorTweets(authorID string) ([]models.Tweet, error) {
	return nil, errors.New("mock store list author tweets failed")
}

func (m *MockStoreFail) InsertLike(l models.Like) error {
	return errors.New("mock store insert like failed")
}

func (m *MockStoreFail) InsertReply(r models.Reply) error {
	return errors.New("mock store insert reply failed")
}

func (m *MockStoreFail) CountLikes(tweetID string) (int, error) {
	return 0, errors.New("mock store count likes failed")
}

func (m *MockStoreFail) CountReplies(tweetID string) (int, error) {
	return 0, errors.New("mock store count replies failed")
}

func (m *MockStoreFail) ListLikers(tweetID string) ([]string, error) {
	return nil, errors.New("mock store list likers failed")
}

func (m *MockStoreFail) ListReplies(tweetID string) ([]models.Reply, error) {
	return nil, errors.New("mock store list replies failed")
}
