package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	voterregistry "agora/contexts/governance/voter-registry"
	registryerrors "agora/contexts/governance/voter-registry/domain/errors"
	registryhttp "agora/contexts/governance/voter-registry/transport/http"
	votingengine "agora/contexts/governance/voting-engine"
	governanceerrors "agora/contexts/governance/voting-engine/domain/errors"
	governancehttp "agora/contexts/governance/voting-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "agora/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	registry voterregistry.Module
	voting   votingengine.Module
}

func New(
	registry voterregistry.Module,
	voting votingengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		registry: registry,
		voting:   voting,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/governance/v1/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("GET /api/governance/v1/voters/{account}", s.handleGetVoter)

	s.mux.HandleFunc("POST /api/governance/v1/proposals", s.handlePropose)
	s.mux.HandleFunc("GET /api/governance/v1/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /api/governance/v1/proposals/{proposal_id}/votes", s.handleVote)
	s.mux.HandleFunc("POST /api/governance/v1/proposals/{proposal_id}/close", s.handleClose)
	s.mux.HandleFunc("POST /api/governance/v1/proposals/{proposal_id}/claim", s.handleClaim)
	s.mux.HandleFunc("GET /api/governance/v1/accounts/{account}/votes", s.handleAccountVotes)
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	actor := callerAccount(r)
	if actor == "" {
		writeRegistryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req registryhttp.RegisterVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.RegisterVoterHandler(r.Context(), actor, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.GetVoterHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	proposer := callerAccount(r)
	if proposer == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req governancehttp.ProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.ProposeHandler(r.Context(), proposer, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.ListProposalsHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	voter := callerAccount(r)
	if voter == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	var req governancehttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.VoteHandler(r.Context(), voter, proposalID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.CloseHandler(r.Context(), caller, proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	claimer := callerAccount(r)
	if claimer == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.ClaimHandler(r.Context(), claimer, proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccountVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.AccountVotesHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func callerAccount(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func parseProposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an unsigned integer")
		return 0, false
	}
	return proposalID, true
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrProposalNotFound):
		writeGovernanceError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrNotRegistered):
		writeGovernanceError(w, http.StatusForbidden, "not_registered", err.Error())
	case errors.Is(err, governanceerrors.ErrVoteAlreadyEnded):
		writeGovernanceError(w, http.StatusConflict, "vote_already_ended", err.Error())
	case errors.Is(err, governanceerrors.ErrVotingPeriodNotOver):
		writeGovernanceError(w, http.StatusConflict, "voting_period_not_over", err.Error())
	case errors.Is(err, governanceerrors.ErrInsufficientFunds):
		writeGovernanceError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, governanceerrors.ErrTooManyVotes):
		writeGovernanceError(w, http.StatusConflict, "too_many_votes", err.Error())
	case errors.Is(err, governanceerrors.ErrNoVotes):
		writeGovernanceError(w, http.StatusNotFound, "no_votes", err.Error())
	case errors.Is(err, governanceerrors.ErrOverflow),
		errors.Is(err, governanceerrors.ErrUnderflow):
		writeGovernanceError(w, http.StatusUnprocessableEntity, "arithmetic_bounds", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidVoteInput):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrNotAuthorized):
		writeRegistryError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyRegistered):
		writeRegistryError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidAccount):
		writeRegistryError(w, http.StatusBadRequest, "invalid_account", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
