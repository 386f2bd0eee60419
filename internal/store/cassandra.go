package store

import (
	"errors"
	"fmt"
	"path/filepath"

	config "example.com/twitterfeed/internal/init"
	"example.com/twitterfeed/internal/logger"
	"example.com/twitterfeed/internal/models"
	"github.com/gocql/gocql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/cassandra"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var logg = logger.New()

// ErrNotFound is returned for lookups of rows that do not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a unique insert loses to an existing
// row, e.g. a registration racing on a username.
var ErrAlreadyExists = errors.New("already exists")

// --- Interfaces ---

type SessionInterface interface {
	Query(stmt string, values ...interface{}) *gocql.Query
	NewBatch(batchType gocql.BatchType) *gocql.Batch
	ExecuteBatch(batch *gocql.Batch) error
	Close()
}

// StoreInterface is the persistence collaborator for the access-control
// and feed-composition core plus the surrounding CRUD handlers.
type StoreInterface interface {
	// Users
	CreateUser(username, passwordHash, name, gender string) (string, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(userID string) (*models.User, error)

	// Follow edges
	CreateFollow(followerID, followeeID string) error
	ListFolloweeIDs(userID string) ([]string, error)
	ListFollowerIDs(userID string) ([]string, error)

	// Tweets
	GetTweetByID(tweetID string) (*models.Tweet, error)
	InsertTweet(t models.Tweet) error
	IndexTweetByAuthor(t models.Tweet) error
	DeleteTweet(t models.Tweet) error
	RemoveTweetFromIndex(t models.Tweet) error
	ListTweetsByAuthors(authorIDs []string, perAuthorLimit int) ([]models.Tweet, error)
	ListAuthorTweets(authorID string) ([]models.Tweet, error)

	// Engagement
	InsertLike(l models.Like) error
	InsertReply(r models.Reply) error
	CountLikes(tweetID string) (int, error)
	CountReplies(tweetID string) (int, error)
	ListLikers(tweetID string) ([]string, error)
	ListReplies(tweetID string) ([]models.Reply, error)

	Close()
}

// --- Store Implementation ---

type Store struct {
	Session SessionInterface
}

// New initializes Cassandra connection using config package.
func New() (StoreInterface, error) {
	cfg := config.Get()

	if err := ensureKeyspace(cfg); err != nil {
		return nil, fmt.Errorf("failed to ensure keyspace: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cluster := gocql.NewCluster(cfg.CassandraHost)
	cluster.Keyspace = cfg.CassandraKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.CassandraTimeout
	cluster.ConnectTimeout = cfg.CassandraTimeout

	if cfg.CassandraUsername != "" && cfg.CassandraPassword != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.CassandraUsername,
			Password: cfg.CassandraPassword,
		}
	}

	if cfg.CassandraDC != "" {
		cluster.HostFilter = gocql.DataCentreHostFilter(cfg.CassandraDC)
	}

	sess, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Cassandra session: %w", err)
	}

	logg.Info("store", "Connected to Cassandra keyspace")
	return &Store{Session: sess}, nil
}

// --- Ensure keyspace exists before migrations ---

func ensureKeyspace(cfg *config.Config) error {
	cluster := gocql.NewCluster(cfg.CassandraHost)
	cluster.Keyspace = "system"
	sess, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("failed to connect to Cassandra system keyspace: %w", err)
	}
	defer sess.Close()

	query := fmt.Sprintf(`
        CREATE KEYSPACE IF NOT EXISTS %s
        WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1};
    `, cfg.CassandraKeyspace)

	if err := sess.Query(query).Exec(); err != nil {
		return fmt.Errorf("failed to create keyspace: %w", err)
	}

	logg.Info("store", "Ensured Cassandra keyspace exists")
	return nil
}

// --- Migration runner ---

func runMigrations(cfg *config.Config) error {
	migrationsPath := filepath.Join("./migrations/cassandra")
	sourceURL := fmt.Sprintf("file://%s", migrationsPath)
	dbURL := fmt.Sprintf(
		"cassandra://%s/%s?x-migrations-table=schema_migrations&x-multi-statement=true",
		cfg.CassandraHost, cfg.CassandraKeyspace,
	)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if err == migrate.ErrNoChange {
		logg.Info("store", "No new migrations to apply")
	} else {
		logg.Info("store", "Migrations applied successfully")
	}
	return nil
}

// Close gracefully closes Cassandra session.
func (s *Store) Close() {
	if s.Session != nil {
		s.Session.Close()
		logg.Info("store", "Cassandra session closed")
	}
}
