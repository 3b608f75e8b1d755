package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/axiomesh/axiom-vault/internal/vault/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		handler(rec, r)
		requestCounter.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.logger.WithFields(logrus.Fields{
			"route": route,
			"code":  rec.code,
		}).Debug("Serve api request")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, &errorResponse{Error: err.Error()})
}

// errorCode maps vault errors onto http status codes.
func errorCode(err error) int {
	switch {
	case common.IsInconsistency(err):
		return http.StatusInternalServerError
	case errors.Is(err, common.ErrVaultHalted):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, common.ErrPositionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeError(w, errorCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func ownerVar(r *http.Request) (ethcommon.Address, error) {
	raw := mux.Vars(r)["owner"]
	if !ethcommon.IsHexAddress(raw) {
		return ethcommon.Address{}, errors.Errorf("invalid address %q", raw)
	}
	return ethcommon.HexToAddress(raw), nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status, err := s.backend.Status()
	s.respond(w, status, err)
}

func (s *Server) handleQueue(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.backend.Queue()
	s.respond(w, entries, err)
}

func (s *Server) handleQueueOf(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.backend.QueueOf(owner)
	s.respond(w, entries, err)
}

func (s *Server) handleClaims(w http.ResponseWriter, _ *http.Request) {
	claims, err := s.backend.Claims()
	s.respond(w, claims, err)
}

func (s *Server) handleClaimsOf(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	claims, err := s.backend.ClaimsOf(owner)
	s.respond(w, claims, err)
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	shares, err := s.backend.BalanceOf(owner)
	s.respond(w, map[string]any{"owner": owner, "shares": shares}, err)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	id, err := cast.ToUint64E(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	position, err := s.backend.Position(id)
	s.respond(w, position, err)
}

func (s *Server) handleInvariants(w http.ResponseWriter, _ *http.Request) {
	report, err := s.backend.CheckInvariants()
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	code := http.StatusOK
	if !report.OK() {
		code = http.StatusConflict
	}
	writeJSON(w, code, report)
}

func (s *Server) handleTick(w http.ResponseWriter, _ *http.Request) {
	result, err := s.backend.Tick(s.caller)
	s.respond(w, result, err)
}

func (s *Server) handleProcessQueue(w http.ResponseWriter, r *http.Request) {
	maxEntries := s.maxEntries
	if raw := r.URL.Query().Get("max"); raw != "" {
		v, err := cast.ToUint64E(raw)
		if err != nil || v == 0 {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid max entries %q", raw))
			return
		}
		maxEntries = v
	}
	result, err := s.backend.ProcessQueue(s.caller, maxEntries)
	s.respond(w, result, err)
}
