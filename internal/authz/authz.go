package authz

import (
	"errors"

	"example.com/twitterfeed/internal/socialgraph"
	"example.com/twitterfeed/internal/store"
)

// Authorizer decides whether a viewer may read a tweet and its
// engagement data. It is a stateless predicate re-evaluated per request;
// results are never cached because follow edges change between requests.
type Authorizer struct {
	store store.StoreInterface
	graph *socialgraph.Graph
}

func New(st store.StoreInterface, graph *socialgraph.Graph) *Authorizer {
	return &Authorizer{store: st, graph: graph}
}

// CanAccess is true iff the viewer authored the tweet or follows its
// author. A tweet id that does not exist yields false, not an error, so
// callers cannot distinguish absence from denial. Store failures are
// returned as errors, never folded into a deny.
func (a *Authorizer) CanAccess(viewerID, tweetID string) (bool, error) {
	tweet, err := a.store.GetTweetByID(tweetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if a.isAuthor(viewerID, tweet.AuthorID) {
		return true, nil
	}
	return a.followsAuthor(viewerID, tweet.AuthorID)
}

// isAuthor is the self-authorship half of the predicate.
func (a *Authorizer) isAuthor(viewerID, authorID string) bool {
	return viewerID == authorID
}

// followsAuthor is the graph-membership half of the predicate.
func (a *Authorizer) followsAuthor(viewerID, authorID string) (bool, error) {
	followers, err := a.graph.FollowersOf(authorID)
	if err != nil {
		return false, err
	}
	for _, id := range followers {
		if id == viewerID {
			return true, nil
		}
	}
	return false, nil
}
