package feed

import (
	"sort"

	"example.com/twitterfeed/internal/models"
	"example.com/twitterfeed/internal/socialgraph"
	"example.com/twitterfeed/internal/store"
)

// PageSize is the hard feed page bound. It is not client-tunable; it
// caps both response size and per-author query cost.
const PageSize = 4

// Composer builds a viewer's feed from the tweets of their followees.
// Following-feed semantics: the viewer's own tweets appear only if the
// viewer follows themselves.
type Composer struct {
	store store.StoreInterface
	graph *socialgraph.Graph
}

func New(st store.StoreInterface, graph *socialgraph.Graph) *Composer {
	return &Composer{store: st, graph: graph}
}

// Compose returns at most PageSize tweets authored by the viewer's
// followees, newest first. An empty followee set short-circuits to an
// empty page before any tweet query runs; it must never degenerate into
// an unfiltered scan.
func (c *Composer) Compose(viewerID string) ([]models.FeedItem, error) {
	followees, err := c.graph.FolloweesOf(viewerID)
	if err != nil {
		return nil, err
	}
	if len(followees) == 0 {
		return []models.FeedItem{}, nil
	}

	tweets, err := c.store.ListTweetsByAuthors(followees, PageSize)
	if err != nil {
		return nil, err
	}

	// Global order: created_at descending, tweet_id descending on ties.
	// The id tie-break carries no meaning beyond making equal-timestamp
	// ordering deterministic.
	sort.Slice(tweets, func(i, j int) bool {
		if !tweets[i].Created.Equal(tweets[j].Created) {
			return tweets[i].Created.After(tweets[j].Created)
		}
		return tweets[i].ID > tweets[j].ID
	})

	if len(tweets) > PageSize {
		tweets = tweets[:PageSize]
	}

	items := make([]models.FeedItem, 0, len(tweets))
	for _, t := range tweets {
		items = append(items, models.FeedItem{
			Username: t.AuthorUsername,
			Tweet:    t.Body,
			DateTime: t.Created.UTC().Format(models.WireTime),
		})
	}
	return items, nil
}
