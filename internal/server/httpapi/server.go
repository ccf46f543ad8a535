package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/perfumekeeper/internal/logging"
)

const ServiceName = "perfumekeeper"

// Version is overridden at build time with -ldflags "-X ...httpapi.Version=".
var Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

const apiPrefix = "/api/v1"

type Server struct {
	address        string
	logger         logging.Logger
	users          UserService
	perfumes       PerfumeService
	metrics        *Metrics
	allowedOrigins []string
}

func NewServer(address string, l logging.Logger, us UserService, ps PerfumeService, allowedOrigins []string) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		users:          us,
		perfumes:       ps,
		metrics:        NewMetrics(),
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the full middleware stack around the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{ErrorCode: CodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{ErrorCode: CodeMethodNotAllowed, Message: "method not allowed"})
	})

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// Keep every route on the root router; mux subrouters report a method
	// mismatch as 404.
	r.HandleFunc(apiPrefix+"/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/auth/login", s.login).Methods(http.MethodPost)

	authed := RequireUser(s.users, s.logger)
	for _, p := range []string{apiPrefix + "/perfumes", apiPrefix + "/perfumes/"} {
		r.Handle(p, authed(http.HandlerFunc(s.listPerfumes))).Methods(http.MethodGet)
		r.Handle(p, authed(http.HandlerFunc(s.createPerfume))).Methods(http.MethodPost)
	}
	r.Handle(apiPrefix+"/perfumes/{id}", authed(http.HandlerFunc(s.updatePerfume))).Methods(http.MethodPut)
	r.Handle(apiPrefix+"/perfumes/{id}", authed(http.HandlerFunc(s.deletePerfume))).Methods(http.MethodDelete)

	return Chain(
		RequestID,
		AccessLog(s.logger),
		Recovery(s.logger),
		CORS(s.allowedOrigins),
	)(r)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
