package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	packethttp "redpacket/contexts/finance-core/packet-service/transport/http"
)

// handleCreatePacket godoc
// @Summary Create a red packet
// @Description Escrows total_amount from the caller into a new packet vault.
// @Tags packets
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Creator principal"
// @Param request body packethttp.CreatePacketRequest true "Packet parameters"
// @Success 201 {object} packethttp.PacketResponse
// @Failure 400 {object} packethttp.ErrorResponse
// @Failure 409 {object} packethttp.ErrorResponse
// @Failure 422 {object} packethttp.ErrorResponse
// @Router /v1/packets [post]
func (s *Server) handleCreatePacket(w http.ResponseWriter, r *http.Request) {
	creator, ok := requirePacketUser(w, r)
	if !ok {
		return
	}

	var req packethttp.CreatePacketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePacketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.packets.Handler.CreatePacketHandler(r.Context(), creator, req)
	if err != nil {
		writePacketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleListPackets godoc
// @Summary List packets by creator
// @Tags packets
// @Produce json
// @Param creator query string true "Creator principal"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} packethttp.ListPacketsResponse
// @Failure 400 {object} packethttp.ErrorResponse
// @Router /v1/packets [get]
func (s *Server) handleListPackets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"))
	if err != nil {
		writePacketError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"))
	if err != nil {
		writePacketError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
		return
	}

	resp, err := s.packets.Handler.ListPacketsHandler(r.Context(), packethttp.ListPacketsRequest{
		Creator: query.Get("creator"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writePacketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetPacket godoc
// @Summary Get a packet
// @Tags packets
// @Produce json
// @Param packet_id path string true "Hex packet id"
// @Success 200 {object} packethttp.PacketResponse
// @Failure 404 {object} packethttp.ErrorResponse
// @Router /v1/packets/{packet_id} [get]
func (s *Server) handleGetPacket(w http.ResponseWriter, r *http.Request) {
	resp, err := s.packets.Handler.GetPacketHandler(r.Context(), r.PathValue("packet_id"))
	if err != nil {
		writePacketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListPacketClaims godoc
// @Summary List the claims of a packet
// @Tags packets
// @Produce json
// @Param packet_id path string true "Hex packet id"
// @Success 200 {object} packethttp.ListClaimsResponse
// @Failure 404 {object} packethttp.ErrorResponse
// @Router /v1/packets/{packet_id}/claims [get]
func (s *Server) handleListPacketClaims(w http.ResponseWriter, r *http.Request) {
	resp, err := s.packets.Handler.ListClaimsHandler(r.Context(), r.PathValue("packet_id"))
	if err != nil {
		writePacketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClaimPacket godoc
// @Summary Claim one share of a packet
// @Description The issuer signature must cover packet id bytes followed by the claimant bytes.
// @Tags packets
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Claimant principal"
// @Param packet_id path string true "Hex packet id"
// @Param request body packethttp.ClaimPacketRequest true "Issuer proof"
// @Success 200 {object} packethttp.ClaimPacketResponse
// @Failure 403 {object} packethttp.ErrorResponse
// @Failure 409 {object} packethttp.ErrorResponse
// @Failure 410 {object} packethttp.ErrorResponse
// @Failure 429 {object} packethttp.ErrorResponse
// @Router /v1/packets/{packet_id}/claim [post]
func (s *Server) handleClaimPacket(w http.ResponseWriter, r *http.Request) {
	claimant, ok := requirePacketUser(w, r)
	if !ok {
		return
	}
	if !s.allowClaim(w, r, claimant) {
		return
	}

	var req packethttp.ClaimPacketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePacketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.packets.Handler.ClaimPacketHandler(r.Context(), claimant, r.PathValue("packet_id"), req)
	if err != nil {
		writePacketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReclaimPacket godoc
// @Summary Reclaim the remainder of an expired packet
// @Tags packets
// @Produce json
// @Param X-User-Id header string true "Creator principal"
// @Param packet_id path string true "Hex packet id"
// @Success 200 {object} packethttp.ReclaimPacketResponse
// @Failure 403 {object} packethttp.ErrorResponse
// @Failure 409 {object} packethttp.ErrorResponse
// @Router /v1/packets/{packet_id}/reclaim [post]
func (s *Server) handleReclaimPacket(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePacketUser(w, r)
	if !ok {
		return
	}

	resp, err := s.packets.Handler.ReclaimPacketHandler(r.Context(), caller, r.PathValue("packet_id"))
	if err != nil {
		writePacketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) allowClaim(w http.ResponseWriter, r *http.Request, claimant string) bool {
	if s.claimLimiter == nil {
		return true
	}
	_, _, reset, ok, err := s.claimLimiter.Take(r.Context(), "claim:"+claimant)
	if err != nil {
		s.logger.Error("claim rate limiter failed",
			"event", "packet_claim_rate_limit_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writePacketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return false
	}
	if !ok {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatUint(reset, 10))
		writePacketError(w, http.StatusTooManyRequests, "rate_limited", "too many claim attempts")
		return false
	}
	return true
}

func requirePacketUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writePacketError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func parseOptionalInt(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

func writePacketDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrPacketNotFound):
		writePacketError(w, http.StatusNotFound, "packet_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidRequest):
		writePacketError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidTotalNumber),
		errors.Is(err, domainerrors.ErrInvalidTotalAmount),
		errors.Is(err, domainerrors.ErrInvalidExpiryTime),
		errors.Is(err, domainerrors.ErrInvalidCreateTime),
		errors.Is(err, domainerrors.ErrInvalidIssuerKey),
		errors.Is(err, domainerrors.ErrInvalidMetadata),
		errors.Is(err, domainerrors.ErrInvalidAsset):
		writePacketError(w, http.StatusUnprocessableEntity, "invalid_packet", err.Error())
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		writePacketError(w, http.StatusUnprocessableEntity, "insufficient_balance", err.Error())
	case errors.Is(err, domainerrors.ErrPacketExists):
		writePacketError(w, http.StatusConflict, "packet_exists", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidSignature):
		writePacketError(w, http.StatusForbidden, "invalid_signature", err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		writePacketError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyClaimed):
		writePacketError(w, http.StatusConflict, "already_claimed", err.Error())
	case errors.Is(err, domainerrors.ErrFullyClaimed):
		writePacketError(w, http.StatusConflict, "fully_claimed", err.Error())
	case errors.Is(err, domainerrors.ErrClosed):
		writePacketError(w, http.StatusConflict, "packet_closed", err.Error())
	case errors.Is(err, domainerrors.ErrNotExpired):
		writePacketError(w, http.StatusConflict, "not_expired", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyWithdrawn):
		writePacketError(w, http.StatusConflict, "already_withdrawn", err.Error())
	case errors.Is(err, domainerrors.ErrExpired):
		writePacketError(w, http.StatusGone, "packet_expired", err.Error())
	case errors.Is(err, domainerrors.ErrLockNotAcquired):
		writePacketError(w, http.StatusServiceUnavailable, "packet_busy", err.Error())
	default:
		writePacketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePacketError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, packethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
