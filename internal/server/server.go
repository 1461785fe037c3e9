package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-cafe/remotehq/internal/config"
	"github.com/golang-cafe/remotehq/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
)

const (
	CacheKeyCompanies = "companies"
	CacheKeyStats     = "stats"

	sessionName      = "____rhq"
	sessionUserIDKey = "user_id"
	cacheLifeWindow  = time.Minute
	shutdownTimeout  = 10 * time.Second
)

type Server struct {
	cfg          config.Config
	Conn         *sql.DB
	router       *mux.Router
	SessionStore *sessions.CookieStore
	bigCache     *bigcache.BigCache
	log          zerolog.Logger
}

func NewServer(
	cfg config.Config,
	conn *sql.DB,
	r *mux.Router,
	sessionStore *sessions.CookieStore,
	log zerolog.Logger,
) Server {
	raven.SetDSN(cfg.SentryDSN)

	bigCache, err := bigcache.NewBigCache(cacheConfig())
	svr := Server{
		cfg:          cfg,
		Conn:         conn,
		router:       r,
		SessionStore: sessionStore,
		bigCache:     bigCache,
		log:          log,
	}
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
	}

	return svr
}

// cacheConfig keeps read-heavy query responses for a minute. The cache only
// ever holds a handful of keys.
func cacheConfig() bigcache.Config {
	cfg := bigcache.DefaultConfig(cacheLifeWindow)
	cfg.Shards = 8
	cfg.MaxEntriesInWindow = 64
	cfg.MaxEntrySize = 16 * 1024
	cfg.HardMaxCacheSize = 16
	return cfg
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) Logger() zerolog.Logger {
	return s.log
}

func (s Server) Handler() http.Handler {
	return middleware.HTTPSMiddleware(
		middleware.LoggingMiddleware(middleware.HeadersMiddleware(s.router, s.cfg.Env), s.log),
		s.cfg.Env,
	)
}

func (s Server) XML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	w.Write(data)
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"message": msg}.
func (s Server) JSONError(w http.ResponseWriter, status int, msg string) {
	s.JSON(w, status, map[string]string{"message": msg})
}

func (s Server) Log(err error, msg string) {
	if s.cfg.SentryDSN != "" {
		raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	}
	s.log.Error().Err(err).Msg(msg)
}

// UserID returns the user_id carried by the session cookie, or the empty
// string for anonymous requests.
func (s Server) UserID(r *http.Request) string {
	if s.SessionStore == nil {
		return ""
	}
	sess, err := s.SessionStore.Get(r, sessionName)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[sessionUserIDKey].(string)
	return id
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.log.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s Server) CacheGet(key string) ([]byte, bool) {
	if s.bigCache == nil {
		return []byte{}, false
	}
	out, err := s.bigCache.Get(key)
	if err != nil {
		return []byte{}, false
	}
	return out, true
}

func (s Server) CacheSet(key string, val []byte) error {
	if s.bigCache == nil {
		return nil
	}
	return s.bigCache.Set(key, val)
}

func (s Server) CacheDelete(key string) error {
	if s.bigCache == nil {
		return nil
	}
	err := s.bigCache.Delete(key)
	if err == bigcache.ErrEntryNotFound {
		return nil
	}
	return err
}
