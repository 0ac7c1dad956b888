package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	marketplaceengine "nftmarket/contexts/market-core/marketplace-engine"
	marketerrors "nftmarket/contexts/market-core/marketplace-engine/domain/errors"
	markethttp "nftmarket/contexts/market-core/marketplace-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "nftmarket/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	market marketplaceengine.Module
}

func New(market marketplaceengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		market: market,
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

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/market/v1/payable-tokens", s.handleAddPayableToken)
	s.mux.HandleFunc("GET /api/market/v1/payable-tokens/{unit}", s.handleCheckPayableToken)
	s.mux.HandleFunc("GET /api/market/v1/fees/platform", s.handleCalculatePlatformFee)
	s.mux.HandleFunc("PUT /api/market/v1/fees/platform", s.handleUpdatePlatformFee)

	s.mux.HandleFunc("POST /api/market/v1/listings", s.handleCreateSale)
	s.mux.HandleFunc("GET /api/market/v1/listings/{asset_contract}/{token_id}", s.handleGetListing)
	s.mux.HandleFunc("DELETE /api/market/v1/listings/{asset_contract}/{token_id}", s.handleCancelListing)
	s.mux.HandleFunc("POST /api/market/v1/listings/{asset_contract}/{token_id}/buy", s.handleBuy)
	s.mux.HandleFunc("POST /api/market/v1/listings/{asset_contract}/{token_id}/offers", s.handleMakeOffer)
	s.mux.HandleFunc("POST /api/market/v1/listings/{asset_contract}/{token_id}/offers/{offerer}/accept", s.handleAcceptOffer)
}

func (s *Server) handleAddPayableToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}

	var req markethttp.AddPayableTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.market.Handler.AddPayableTokenHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckPayableToken(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.CheckPayableTokenHandler(r.Context(), r.PathValue("unit"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCalculatePlatformFee(w http.ResponseWriter, r *http.Request) {
	amount := r.URL.Query().Get("amount")
	if amount == "" {
		writeMarketError(w, http.StatusBadRequest, "missing_amount", "amount query parameter is required")
		return
	}

	resp, err := s.market.Handler.CalculatePlatformFeeHandler(r.Context(), amount)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePlatformFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}

	var req markethttp.UpdatePlatformFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.market.Handler.UpdatePlatformFeeHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}

	var req markethttp.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.market.Handler.CreateSaleHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	assetContract, tokenID, ok := resolveListingPath(w, r)
	if !ok {
		return
	}

	resp, err := s.market.Handler.GetListingHandler(r.Context(), assetContract, tokenID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	assetContract, tokenID, ok := resolveListingPath(w, r)
	if !ok {
		return
	}

	resp, err := s.market.Handler.CancelListingHandler(r.Context(), caller, assetContract, tokenID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	assetContract, tokenID, ok := resolveListingPath(w, r)
	if !ok {
		return
	}

	var req markethttp.BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.market.Handler.BuyHandler(r.Context(), caller, assetContract, tokenID, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMakeOffer(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	assetContract, tokenID, ok := resolveListingPath(w, r)
	if !ok {
		return
	}

	var req markethttp.MakeOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.market.Handler.MakeOfferHandler(r.Context(), caller, assetContract, tokenID, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	assetContract, tokenID, ok := resolveListingPath(w, r)
	if !ok {
		return
	}

	resp, err := s.market.Handler.AcceptOfferHandler(r.Context(), caller, assetContract, tokenID, r.PathValue("offerer"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func resolveCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := r.Header.Get("X-User-Id")
	if caller == "" {
		writeMarketError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return caller, true
}

func resolveListingPath(w http.ResponseWriter, r *http.Request) (string, uint64, bool) {
	assetContract := r.PathValue("asset_contract")
	tokenID, err := strconv.ParseUint(r.PathValue("token_id"), 10, 64)
	if err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_token_id", "token_id must be an unsigned integer")
		return "", 0, false
	}
	return assetContract, tokenID, true
}

func writeMarketDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketerrors.ErrListingNotFound):
		writeMarketError(w, http.StatusNotFound, "listing_not_found", err.Error())
	case errors.Is(err, marketerrors.ErrOfferNotFound):
		writeMarketError(w, http.StatusNotFound, "offer_not_found", err.Error())
	case errors.Is(err, marketerrors.ErrAlreadyListed):
		writeMarketError(w, http.StatusConflict, "already_listed", err.Error())
	case errors.Is(err, marketerrors.ErrPriceMismatch):
		writeMarketError(w, http.StatusConflict, "price_mismatch", err.Error())
	case errors.Is(err, marketerrors.ErrUnauthorized):
		writeMarketError(w, http.StatusForbidden, "not_market_owner", err.Error())
	case errors.Is(err, marketerrors.ErrNotSeller):
		writeMarketError(w, http.StatusForbidden, "not_seller", err.Error())
	case errors.Is(err, marketerrors.ErrNotOwnerOrApproved):
		writeMarketError(w, http.StatusForbidden, "not_owner_or_approved", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidPrice):
		writeMarketError(w, http.StatusBadRequest, "invalid_price", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidAmount):
		writeMarketError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, marketerrors.ErrUnsupportedPaymentUnit):
		writeMarketError(w, http.StatusBadRequest, "unsupported_payment_unit", err.Error())
	case errors.Is(err, marketerrors.ErrInsufficientAuthorization):
		writeMarketError(w, http.StatusPaymentRequired, "insufficient_authorization", err.Error())
	case errors.Is(err, marketerrors.ErrInsufficientBalance):
		writeMarketError(w, http.StatusPaymentRequired, "insufficient_balance", err.Error())
	case errors.Is(err, marketerrors.ErrFeeConfigInvariant):
		writeMarketError(w, http.StatusUnprocessableEntity, "fee_config_invariant", err.Error())
	default:
		writeMarketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMarketError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, markethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
