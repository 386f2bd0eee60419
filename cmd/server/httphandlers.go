package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"example.com/twitterfeed/internal/auth"
	"example.com/twitterfeed/internal/models"
	"example.com/twitterfeed/internal/store"
	"github.com/gocql/gocql"
	"github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"
)

// --- HTTP Handlers ---

// registerHandler handles POST /register.
// Expects JSON body: {"username", "password", "name", "gender"}
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Gender   string `json:"gender"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/register", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body.Username) == 0 || len(body.Username) > 50 {
		logg.Info("http/register", "Invalid username length")
		http.Error(w, "username must be 1-50 characters", http.StatusBadRequest)
		return
	}

	_, err := s.store.GetUserByUsername(body.Username)
	if err == nil {
		logg.Info("http/register", "Username already taken")
		http.Error(w, "User already exists", http.StatusBadRequest)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		logg.Error("http/register", "Failed to query existing username", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if len(body.Password) < 6 {
		logg.Info("http/register", "Password too short")
		http.Error(w, "Password is too short", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		logg.Error("http/register", "Failed to hash password", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if _, err := s.store.CreateUser(body.Username, string(hash), body.Name, body.Gender); err != nil {
		// A concurrent registration can win the username between the
		// precheck above and this insert.
		if errors.Is(err, store.ErrAlreadyExists) {
			logg.Info("http/register", "Username claimed concurrently")
			http.Error(w, "User already exists", http.StatusBadRequest)
			return
		}
		logg.Error("http/register", "Failed to create user", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/register", "User created successfully")
	w.Write([]byte("User created successfully"))
}

// loginHandler handles POST /login.
// Expects JSON body: {"username", "password"}
// Returns JSON response: {"jwtToken": <token>}
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/login", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := s.store.GetUserByUsername(body.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Invalid user", http.StatusBadRequest)
			return
		}
		logg.Error("http/login", "Failed to query user", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		http.Error(w, "Invalid password", http.StatusBadRequest)
		return
	}

	token, err := s.auth.Issue(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		logg.Error("http/login", "Failed to issue token", err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	logg.Info("http/login", "User logged in")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"jwtToken": token})
}

// feedHandler handles GET /user/tweets/feed.
// Returns an ordered array of at most feed.PageSize entries.
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}

	items, err := s.feed.Compose(viewer.UserID)
	if err != nil {
		logg.Error("http/feed", "Failed to compose feed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/feed", "Feed composed for viewer")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// followingHandler handles GET /user/following.
// Returns JSON array: [{"name": ...}]
func (s *Server) followingHandler(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}

	followees, err := s.graph.FolloweesOf(viewer.UserID)
	if err != nil {
		logg.Error("http/following", "Failed to list followees", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	names, err := s.resolveNames(followees)
	if err != nil {
		logg.Error("http/following", "Failed to resolve followee names", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names)
}

// followersHandler handles GET /user/followers.
// Returns JSON array: [{"name": ...}], one entry per distinct follower.
func (s *Server) followersHandler(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}

	followers, err := s.graph.FollowersOf(viewer.UserID)
	if err != nil {
		logg.Error("http/followers", "Failed to list followers", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	names, err := s.resolveNames(followers)
	if err != nil {
		logg.Error("http/followers", "Failed to resolve follower names", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names)
}

type nameEntry struct {
	Name string `json:"name"`
}

func (s *Server) resolveNames(userIDs []string) ([]nameEntry, error) {
	res := make([]nameEntry, 0, len(userIDs))
	for _, id := range userIDs {
		u, err := s.store.GetUserByID(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		res = append(res, nameEntry{Name: u.Name})
	}
	return res, nil
}

// userTweetsHandler handles GET /user/tweets.
// Returns the viewer's own tweets with like and reply counts.
func (s *Server) userTweetsHandler(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}

	tweets, err := s.store.ListAuthorTweets(viewer.UserID)
	if err != nil {
		logg.Error("http/user-tweets", "Failed to list viewer tweets", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type entry struct {
		Tweet    string `json:"tweet"`
		Likes    int    `json:"likes"`
		Replies  int    `json:"replies"`
		DateTime string `json:"dateTime"`
	}
	res := make([]entry, 0, len(tweets))
	for _, t := range tweets {
		likes, err := s.store.CountLikes(t.ID)
		if err != nil {
			logg.Error("http/user-tweets", "Failed to count likes", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		replies, err := s.store.CountReplies(t.ID)
		if err != nil {
			logg.Error("http/user-tweets", "Failed to count replies", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		res = append(res, entry{
			Tweet:    t.Body,
			Likes:    likes,
			Replies:  replies,
			DateTime: t.Created.UTC().Format(models.WireTime),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// createTweetHandler handles POST /user/tweets. The canonical row is
// written synchronously; the author-index projection is updated by the
// worker from the published event.
// Expects JSON body: {"tweet": "body text"}
func (s *Server) createTweetHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Tweet string `json:"tweet"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/tweets", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}

	if len(body.Tweet) == 0 || len(body.Tweet) > 280 {
		logg.Info("http/tweets", "Tweet body length invalid")
		http.Error(w, "tweet must be 1-280 characters", http.StatusBadRequest)
		return
	}

	tweet := models.Tweet{
		ID:             gocql.TimeUUID().String(),
		AuthorID:       viewer.UserID,
		AuthorUsername: viewer.Username,
		Body:           body.Tweet,
		Created:        time.Now().UTC(),
	}

	if err := s.store.InsertTweet(tweet); err != nil {
		logg.Error("http/tweets", "Failed to insert tweet", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.publishTweetEvent(models.EventTweetCreated, tweet); err != nil {
		logg.Error("http/tweets", "Failed to publish tweet event", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/tweets", "Tweet created")
	w.Write([]byte("Created a Tweet"))
}

// deleteTweetHandler handles DELETE /tweets/{tweetId}. Author-only: a
// non-author or an unknown id gets the same uniform denial and the row
// is untouched.
func (s *Server) deleteTweetHandler(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}
	tweetID := r.PathValue("tweetId")

	tweet, err := s.store.GetTweetByID(tweetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Invalid Request", http.StatusUnauthorized)
			return
		}
		logg.Error("http/tweets", "Failed to load tweet for delete", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if tweet.AuthorID != viewer.UserID {
		logg.Info("http/tweets", "Delete denied for non-author")
		http.Error(w, "Invalid Request", http.StatusUnauthorized)
		return
	}

	if err := s.store.DeleteTweet(*tweet); err != nil {
		logg.Error("http/tweets", "Failed to delete tweet", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.publishTweetEvent(models.EventTweetDeleted, *tweet); err != nil {
		logg.Error("http/tweets", "Failed to publish delete event", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/tweets", "Tweet removed")
	w.Write([]byte("Tweet Removed"))
}

// getTweetHandler handles GET /tweets/{tweetId}.
// Returns JSON: {"tweet", "likes", "replies", "dateTime"}
func (s *Server) getTweetHandler(w http.ResponseWriter, r *http.Request) {
	_, tweetID, ok := s.authorizeTweet(w, r)
	if !ok {
		return
	}

	tweet, err := s.store.GetTweetByID(tweetID)
	if err != nil {
		// The tweet can be deleted between the predicate and this read;
		// a vanished row gets the same denial as one never seen.
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Invalid Request", http.StatusUnauthorized)
			return
		}
		logg.Error("http/tweets", "Failed to load tweet", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	likes, err := s.store.CountLikes(tweetID)
	if err != nil {
		logg.Error("http/tweets", "Failed to count likes", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	replies, err := s.store.CountReplies(tweetID)
	if err != nil {
		logg.Error("http/tweets", "Failed to count replies", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"tweet":    tweet.Body,
		"likes":    likes,
		"replies":  replies,
		"dateTime": tweet.Created.UTC().Format(models.WireTime),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// getLikesHandler handles GET /tweets/{tweetId}/likes.
// Returns JSON: {"likes": [username, ...]}
func (s *Server) getLikesHandler(w http.ResponseWriter, r *http.Request) {
	_, tweetID, ok := s.authorizeTweet(w, r)
	if !ok {
		return
	}

	likers, err := s.store.ListLikers(tweetID)
	if err != nil {
		logg.Error("http/likes", "Failed to list likers", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if likers == nil {
		likers = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"likes": likers})
}

// likeTweetHandler handles POST /tweets/{tweetId}/likes. Liking requires
// the same visibility as reading the tweet.
func (s *Server) likeTweetHandler(w http.ResponseWriter, r *http.Request) {
	viewer, tweetID, ok := s.authorizeTweet(w, r)
	if !ok {
		return
	}

	like := models.Like{
		TweetID:  tweetID,
		UserID:   viewer.UserID,
		Username: viewer.Username,
	}
	if err := s.store.InsertLike(like); err != nil {
		logg.Error("http/likes", "Failed to insert like", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// getRepliesHandler handles GET /tweets/{tweetId}/replies.
// Returns JSON: {"replies": [{"name", "reply"}, ...]}
func (s *Server) getRepliesHandler(w http.ResponseWriter, r *http.Request) {
	_, tweetID, ok := s.authorizeTweet(w, r)
	if !ok {
		return
	}

	replies, err := s.store.ListReplies(tweetID)
	if err != nil {
		logg.Error("http/replies", "Failed to list replies", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type entry struct {
		Name  string `json:"name"`
		Reply string `json:"reply"`
	}
	res := make([]entry, 0, len(replies))
	for _, rep := range replies {
		res = append(res, entry{Name: rep.Name, Reply: rep.Body})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"replies": res})
}

// replyTweetHandler handles POST /tweets/{tweetId}/replies.
// Expects JSON body: {"reply": "text"}
func (s *Server) replyTweetHandler(w http.ResponseWriter, r *http.Request) {
	viewer, tweetID, ok := s.authorizeTweet(w, r)
	if !ok {
		return
	}

	type req struct {
		Reply string `json:"reply"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/replies", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body.Reply) == 0 || len(body.Reply) > 280 {
		http.Error(w, "reply must be 1-280 characters", http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUserByID(viewer.UserID)
	if err != nil {
		logg.Error("http/replies", "Failed to load replier", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	reply := models.Reply{
		ID:      gocql.TimeUUID().String(),
		TweetID: tweetID,
		UserID:  viewer.UserID,
		Name:    user.Name,
		Body:    body.Reply,
	}
	if err := s.store.InsertReply(reply); err != nil {
		logg.Error("http/replies", "Failed to insert reply", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// --- Helpers ---

// authorizeTweet runs the visibility predicate for the tweet in the
// path. Denied and nonexistent ids produce the same 401 response so the
// caller cannot probe for existence. Store failures are 500s, never a
// silent deny.
func (s *Server) authorizeTweet(w http.ResponseWriter, r *http.Request) (auth.Identity, string, bool) {
	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return auth.Identity{}, "", false
	}
	tweetID := r.PathValue("tweetId")

	allowed, err := s.authz.CanAccess(viewer.UserID, tweetID)
	if err != nil {
		logg.Error("http/tweets", "Authorization check failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return auth.Identity{}, "", false
	}
	if !allowed {
		logg.Info("http/tweets", "Tweet access denied")
		http.Error(w, "Invalid Request", http.StatusUnauthorized)
		return auth.Identity{}, "", false
	}

	return viewer, tweetID, true
}

// followHandler handles POST /user/follow.
// Expects JSON body: {"followee_id": "<user id>"}
func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		FolloweeID string `json:"followee_id"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/follow", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	viewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
		return
	}

	if body.FolloweeID == "" {
		http.Error(w, "followee_id is required", http.StatusBadRequest)
		return
	}

	if err := s.store.CreateFollow(viewer.UserID, body.FolloweeID); err != nil {
		logg.Error("http/follow", "Failed to create follow edge", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/follow", "Follow edge created")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) publishTweetEvent(eventType string, tweet models.Tweet) error {
	ev := models.TweetEvent{Type: eventType, Tweet: tweet}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.kafkaWriter.WriteMessages(kafka.Message{
		Key:   []byte(eventType),
		Value: data,
	})
}
