package server

import (
	"context"
	"net/http"
	"time"

	"example.com/twitterfeed/internal/auth"
	"example.com/twitterfeed/internal/authz"
	appkafka "example.com/twitterfeed/internal/broker"
	"example.com/twitterfeed/internal/feed"
	config "example.com/twitterfeed/internal/init"
	"example.com/twitterfeed/internal/logger"
	"example.com/twitterfeed/internal/socialgraph"
	"example.com/twitterfeed/internal/store"
)

type Server struct {
	store       store.StoreInterface
	kafkaWriter appkafka.KafkaWriter
	auth        *auth.Authenticator
	graph       *socialgraph.Graph
	authz       *authz.Authorizer
	feed        *feed.Composer
}

var logg = logger.New()

// newServer wires the access-control and feed components over one store.
func newServer(st store.StoreInterface, writer appkafka.KafkaWriter, authn *auth.Authenticator) *Server {
	graph := socialgraph.New(st)
	return &Server{
		store:       st,
		kafkaWriter: writer,
		auth:        authn,
		graph:       graph,
		authz:       authz.New(st, graph),
		feed:        feed.New(st, graph),
	}
}

// routes registers the HTTP surface. Every protected route goes through
// the session middleware before any other component runs.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public endpoints
	mux.Handle("POST /register", http.HandlerFunc(s.registerHandler))
	mux.Handle("POST /login", http.HandlerFunc(s.loginHandler))

	// Viewer-scoped endpoints
	mux.Handle("GET /user/tweets/feed", s.auth.Middleware(http.HandlerFunc(s.feedHandler)))
	mux.Handle("GET /user/following", s.auth.Middleware(http.HandlerFunc(s.followingHandler)))
	mux.Handle("GET /user/followers", s.auth.Middleware(http.HandlerFunc(s.followersHandler)))
	mux.Handle("GET /user/tweets", s.auth.Middleware(http.HandlerFunc(s.userTweetsHandler)))
	mux.Handle("POST /user/tweets", s.auth.Middleware(http.HandlerFunc(s.createTweetHandler)))
	mux.Handle("POST /user/follow", s.auth.Middleware(http.HandlerFunc(s.followHandler)))

	// Tweet-scoped endpoints (authorization predicate inside)
	mux.Handle("GET /tweets/{tweetId}", s.auth.Middleware(http.HandlerFunc(s.getTweetHandler)))
	mux.Handle("DELETE /tweets/{tweetId}", s.auth.Middleware(http.HandlerFunc(s.deleteTweetHandler)))
	mux.Handle("GET /tweets/{tweetId}/likes", s.auth.Middleware(http.HandlerFunc(s.getLikesHandler)))
	mux.Handle("POST /tweets/{tweetId}/likes", s.auth.Middleware(http.HandlerFunc(s.likeTweetHandler)))
	mux.Handle("GET /tweets/{tweetId}/replies", s.auth.Middleware(http.HandlerFunc(s.getRepliesHandler)))
	mux.Handle("POST /tweets/{tweetId}/replies", s.auth.Middleware(http.HandlerFunc(s.replyTweetHandler)))

	return mux
}

// Run starts the HTTPS server with JWT-protected routes and graceful shutdown.
func Run(ctx context.Context, st store.StoreInterface, writer appkafka.KafkaWriter, authn *auth.Authenticator, cfg *config.Config) {
	s := newServer(st, writer, authn)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 10 * time.Second,
	}

	// --- Start server in a goroutine ---
	go func() {
		logg.Info("server", "Starting HTTPS server on "+cfg.ServerAddr)
		if err := srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}
