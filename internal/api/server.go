package api

import (
	"context"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/vault"
	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/framework"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

// Backend is the vault surface served over http.
type Backend interface {
	Status() (*vault.Status, error)
	Queue() ([]*framework.QueueEntry, error)
	QueueOf(owner ethcommon.Address) ([]*framework.QueueEntry, error)
	Claims() ([]*base.Claim, error)
	ClaimsOf(owner ethcommon.Address) ([]*base.Claim, error)
	BalanceOf(owner ethcommon.Address) (*big.Int, error)
	Position(id uint64) (*base.Claim, error)
	CheckInvariants() (*framework.InvariantReport, error)
	Tick(caller ethcommon.Address) (*framework.TickResult, error)
	ProcessQueue(caller ethcommon.Address, maxEntries uint64) (*framework.ProcessResult, error)
}

type Server struct {
	config  repo.API
	monitor repo.Monitor
	backend Backend

	// permissionless maintenance calls are sent from the keeper account
	caller     ethcommon.Address
	maxEntries uint64

	limiter *JRateLimiter
	server  *http.Server
	logger  logrus.FieldLogger
}

func New(rep *repo.Repo, backend Backend) (*Server, error) {
	s := &Server{
		config:     rep.Config.API,
		monitor:    rep.Config.Monitor,
		backend:    backend,
		caller:     ethcommon.HexToAddress(rep.GenesisConfig.Owner),
		maxEntries: rep.Config.Keeper.MaxQueueEntries,
		logger:     loggers.Logger(loggers.API),
	}
	if s.config.Limiter.Enable {
		limiter, err := NewJRateLimiterWithQuantum(s.config.Limiter.Interval.ToDuration(), s.config.Limiter.Capacity, s.config.Limiter.Quantum)
		if err != nil {
			return nil, errors.Wrap(err, "create rate limiter")
		}
		s.limiter = limiter
	}
	return s, nil
}

// Handler builds the routed handler with cors and rate limiting applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.instrument("status", s.handleStatus)).Methods(http.MethodGet)
	v1.HandleFunc("/queue", s.instrument("queue", s.handleQueue)).Methods(http.MethodGet)
	v1.HandleFunc("/queue/{owner}", s.instrument("queue_of", s.handleQueueOf)).Methods(http.MethodGet)
	v1.HandleFunc("/claims", s.instrument("claims", s.handleClaims)).Methods(http.MethodGet)
	v1.HandleFunc("/claims/{owner}", s.instrument("claims_of", s.handleClaimsOf)).Methods(http.MethodGet)
	v1.HandleFunc("/balances/{owner}", s.instrument("balance_of", s.handleBalanceOf)).Methods(http.MethodGet)
	v1.HandleFunc("/positions/{id:[0-9]+}", s.instrument("position", s.handlePosition)).Methods(http.MethodGet)
	v1.HandleFunc("/invariants", s.instrument("invariants", s.handleInvariants)).Methods(http.MethodGet)
	v1.HandleFunc("/tick", s.instrument("tick", s.handleTick)).Methods(http.MethodPost)
	v1.HandleFunc("/process-queue", s.instrument("process_queue", s.handleProcessQueue)).Methods(http.MethodPost)
	if s.monitor.Enable {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	var handler http.Handler = router
	if s.limiter != nil {
		handler = s.limiter.middleware(handler)
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(handler)
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return errors.Wrap(err, "listen api port")
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithField("err", err).Error("Api service stopped unexpectedly")
		}
	}()
	s.logger.WithFields(logrus.Fields{
		"port":    s.config.Port,
		"limiter": s.limiter != nil,
	}).Info("Api service started")
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown api service")
	}
	s.logger.Info("Api service stopped")
	return nil
}
