package socialgraph

import (
	"example.com/twitterfeed/internal/store"
)

// Graph answers follow-relationship queries over the store. Queries are
// total over the id space: an unknown user has empty followee and
// follower sets, never an error.
type Graph struct {
	store store.StoreInterface
}

func New(st store.StoreInterface) *Graph {
	return &Graph{store: st}
}

// FolloweesOf returns the ids the user follows, deduplicated. Parallel
// edges for one pair must not make a followee's tweets appear twice in
// the feed.
func (g *Graph) FolloweesOf(userID string) ([]string, error) {
	raw, err := g.store.ListFolloweeIDs(userID)
	if err != nil {
		return nil, err
	}
	return dedup(raw), nil
}

// FollowersOf returns the ids following the user, deduplicated. The
// underlying edge listing can carry parallel edges for one pair, and
// downstream membership checks and counts must not see a follower twice.
func (g *Graph) FollowersOf(userID string) ([]string, error) {
	raw, err := g.store.ListFollowerIDs(userID)
	if err != nil {
		return nil, err
	}
	return dedup(raw), nil
}

// dedup removes repeated ids while keeping first-seen order.
func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var res []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
