package store

import (
	"time"

	"example.com/twitterfeed/internal/models"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// --- User operations ---

// GetUserByUsername returns the user row for a username, or ErrNotFound.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	err := s.Session.Query(
		`SELECT user_id, username, password_hash, name, gender
		 FROM users_by_username WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Gender)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		logg.Error("store", "Failed to query user by username", err)
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(userID string) (*models.User, error) {
	var u models.User
	err := s.Session.Query(
		`SELECT user_id, username, password_hash, name, gender
		 FROM users WHERE user_id = ?`,
		userID,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Gender)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		logg.Error("store", "Failed to query user by id", err)
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. The users_by_username insert uses CAS so
// two concurrent registrations of one username cannot both succeed; the
// losing request gets ErrAlreadyExists and nothing is written.
func (s *Store) CreateUser(username, passwordHash, name, gender string) (string, error) {
	id := uuid.NewString()

	result := make(map[string]interface{})
	applied, err := s.Session.Query(`
		INSERT INTO users_by_username (username, user_id, password_hash, name, gender)
		VALUES (?, ?, ?, ?, ?) IF NOT EXISTS`,
		username, id, passwordHash, name, gender,
	).MapScanCAS(result)
	if err != nil {
		logg.Error("store", "Failed to create username entry", err)
		return "", err
	}

	if !applied {
		// Another request already claimed the username.
		return "", ErrAlreadyExists
	}

	err = s.Session.Query(`
		INSERT INTO users (user_id, username, password_hash, name, gender)
		VALUES (?, ?, ?, ?, ?)`,
		id, username, passwordHash, name, gender,
	).Exec()
	if err != nil {
		logg.Error("store", "Failed to create user in main table", err)
		return "", err
	}

	logg.Info("store", "User created successfully")
	return id, nil
}

// --- Follow operations ---

func (s *Store) CreateFollow(followerID, followeeID string) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`INSERT INTO follows (user_id, followee_id) VALUES (?, ?)`, followerID, followeeID)
	batch.Query(`INSERT INTO followers_by_followee (followee_id, follower_id) VALUES (?, ?)`, followeeID, followerID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to create follow edge", err)
		return err
	}

	logg.Info("store", "Follow edge created")
	return nil
}

// ListFolloweeIDs returns the ids a user follows. Unknown users yield an
// empty result, not an error.
func (s *Store) ListFolloweeIDs(userID string) ([]string, error) {
	iter := s.Session.Query(
		`SELECT followee_id FROM follows WHERE user_id = ?`,
		userID,
	).Iter()

	var id string
	var res []string
	for iter.Scan(&id) {
		res = append(res, id)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to list followees", err)
		return nil, err
	}
	return res, nil
}

// ListFollowerIDs returns the raw follower edge list; multiplicity is
// possible and the social graph layer deduplicates.
func (s *Store) ListFollowerIDs(userID string) ([]string, error) {
	iter := s.Session.Query(
		`SELECT follower_id FROM followers_by_followee WHERE followee_id = ?`,
		userID,
	).Iter()

	var id string
	var res []string
	for iter.Scan(&id) {
		res = append(res, id)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to list followers", err)
		return nil, err
	}
	return res, nil
}

// --- Tweet operations ---

func (s *Store) GetTweetByID(tweetID string) (*models.Tweet, error) {
	var t models.Tweet
	err := s.Session.Query(
		`SELECT tweet_id, author_id, author_username, body, created_at
		 FROM tweets WHERE tweet_id = ?`,
		tweetID,
	).Scan(&t.ID, &t.AuthorID, &t.AuthorUsername, &t.Body, &t.Created)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		logg.Error("store", "Failed to query tweet by id", err)
		return nil, err
	}
	return &t, nil
}

func (s *Store) InsertTweet(t models.Tweet) error {
	if err := s.Session.Query(`
		INSERT INTO tweets (tweet_id, author_id, author_username, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.AuthorID, t.AuthorUsername, t.Body, t.Created,
	).Exec(); err != nil {
		logg.Error("store", "Failed to insert tweet", err)
		return err
	}

	logg.Info("store", "Tweet inserted")
	return nil
}

// IndexTweetByAuthor writes the per-author projection row the feed
// composer reads. Applied by the worker from tweet_created events.
func (s *Store) IndexTweetByAuthor(t models.Tweet) error {
	if err := s.Session.Query(`
		INSERT INTO tweets_by_author (author_id, created_at, tweet_id, author_username, body)
		VALUES (?, ?, ?, ?, ?)`,
		t.AuthorID, t.Created, t.ID, t.AuthorUsername, t.Body,
	).Exec(); err != nil {
		logg.Error("store", "Failed to index tweet by author", err)
		return err
	}

	logg.Info("store", "Tweet indexed by author")
	return nil
}

// DeleteTweet removes the canonical tweet row and its engagement rows.
func (s *Store) DeleteTweet(t models.Tweet) error {
	batch := s.Session.NewBatch(gocql.LoggedBatch)
	batch.Query(`DELETE FROM tweets WHERE tweet_id = ?`, t.ID)
	batch.Query(`DELETE FROM likes_by_tweet WHERE tweet_id = ?`, t.ID)
	batch.Query(`DELETE FROM replies_by_tweet WHERE tweet_id = ?`, t.ID)

	if err := s.Session.ExecuteBatch(batch); err != nil {
		logg.Error("store", "Failed to delete tweet", err)
		return err
	}

	logg.Info("store", "Tweet deleted")
	return nil
}

// RemoveTweetFromIndex drops the projection row. Applied by the worker
// from tweet_deleted events; needs the full clustering key.
func (s *Store) RemoveTweetFromIndex(t models.Tweet) error {
	if err := s.Session.Query(`
		DELETE FROM tweets_by_author
		WHERE author_id = ? AND created_at = ? AND tweet_id = ?`,
		t.AuthorID, t.Created, t.ID,
	).Exec(); err != nil {
		logg.Error("store", "Failed to remove tweet from author index", err)
		return err
	}
	return nil
}

// ListTweetsByAuthors reads up to perAuthorLimit newest tweets for each
// author. Callers must not pass an empty author set; the feed composer
// short-circuits before reaching the store.
func (s *Store) ListTweetsByAuthors(authorIDs []string, perAuthorLimit int) ([]models.Tweet, error) {
	var res []models.Tweet

	for _, authorID := range authorIDs {
		iter := s.Session.Query(`
			SELECT tweet_id, author_id, author_username, body, created_at
			FROM tweets_by_author WHERE author_id = ? LIMIT ?`,
			authorID, perAuthorLimit,
		).Iter()

		var id, aid, username, body string
		var created time.Time
		for iter.Scan(&id, &aid, &username, &body, &created) {
			res = append(res, models.Tweet{
				ID:             id,
				AuthorID:       aid,
				AuthorUsername: username,
				Body:           body,
				Created:        created,
			})
		}

		if err := iter.Close(); err != nil {
			logg.Error("store", "Failed to list tweets for author", err)
			return nil, err
		}
	}

	return res, nil
}

// ListAuthorTweets returns all of one author's tweets, newest first.
func (s *Store) ListAuthorTweets(authorID string) ([]models.Tweet, error) {
	iter := s.Session.Query(`
		SELECT tweet_id, author_id, author_username, body, created_at
		FROM tweets_by_author WHERE author_id = ?`,
		authorID,
	).Iter()

	var res []models.Tweet
	var id, aid, username, body string
	var created time.Time
	for iter.Scan(&id, &aid, &username, &body, &created) {
		res = append(res, models.Tweet{
			ID:             id,
			AuthorID:       aid,
			AuthorUsername: username,
			Body:           body,
			Created:        created,
		})
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to list author tweets", err)
		return nil, err
	}
	return res, nil
}

// --- Engagement operations ---

func (s *Store) InsertLike(l models.Like) error {
	if err := s.Session.Query(`
		INSERT INTO likes_by_tweet (tweet_id, user_id, username)
		VALUES (?, ?, ?)`,
		l.TweetID, l.UserID, l.Username,
	).Exec(); err != nil {
		logg.Error("store", "Failed to insert like", err)
		return err
	}
	return nil
}

func (s *Store) InsertReply(r models.Reply) error {
	if err := s.Session.Query(`
		INSERT INTO replies_by_tweet (tweet_id, reply_id, user_id, name, body)
		VALUES (?, ?, ?, ?, ?)`,
		r.TweetID, r.ID, r.UserID, r.Name, r.Body,
	).Exec(); err != nil {
		logg.Error("store", "Failed to insert reply", err)
		return err
	}
	return nil
}

func (s *Store) CountLikes(tweetID string) (int, error) {
	var n int
	err := s.Session.Query(
		`SELECT COUNT(*) FROM likes_by_tweet WHERE tweet_id = ?`,
		tweetID,
	).Scan(&n)
	if err != nil {
		logg.Error("store", "Failed to count likes", err)
		return 0, err
	}
	return n, nil
}

func (s *Store) CountReplies(tweetID string) (int, error) {
	var n int
	err := s.Session.Query(
		`SELECT COUNT(*) FROM replies_by_tweet WHERE tweet_id = ?`,
		tweetID,
	).Scan(&n)
	if err != nil {
		logg.Error("store", "Failed to count replies", err)
		return 0, err
	}
	return n, nil
}

func (s *Store) ListLikers(tweetID string) ([]string, error) {
	iter := s.Session.Query(
		`SELECT username FROM likes_by_tweet WHERE tweet_id = ?`,
		tweetID,
	).Iter()

	var username string
	var res []string
	for iter.Scan(&username) {
		res = append(res, username)
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to list likers", err)
		return nil, err
	}
	return res, nil
}

func (s *Store) ListReplies(tweetID string) ([]models.Reply, error) {
	iter := s.Session.Query(`
		SELECT reply_id, tweet_id, user_id, name, body
		FROM replies_by_tweet WHERE tweet_id = ?`,
		tweetID,
	).Iter()

	var res []models.Reply
	var id, tid, uid, name, body string
	for iter.Scan(&id, &tid, &uid, &name, &body) {
		res = append(res, models.Reply{
			ID:      id,
			TweetID: tid,
			UserID:  uid,
			Name:    name,
			Body:    body,
		})
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to list replies", err)
		return nil, err
	}
	return res, nil
}
