package models

import "time"

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
}

type Tweet struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Body           string    `json:"body"`
	Created        time.Time `json:"created"`
}

type Follow struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

type Like struct {
	TweetID  string `json:"tweet_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Reply struct {
	ID      string `json:"id"`
	TweetID string `json:"tweet_id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Body    string `json:"reply"`
}

// FeedItem is the wire shape of a single feed entry.
type FeedItem struct {
	Username string `json:"username"`
	Tweet    string `json:"tweet"`
	DateTime string `json:"dateTime"`
}

// WireTime is the response timestamp layout: UTC, sortable, locale-free.
const WireTime = "2006-01-02 15:04:05"

// Event types carried on the broker.
const (
	EventTweetCreated = "tweet_created"
	EventTweetDeleted = "tweet_deleted"
)

// TweetEvent is the broker payload for tweet lifecycle changes.
type TweetEvent struct {
	Type  string `json:"type"`
	Tweet Tweet  `json:"tweet"`
}
