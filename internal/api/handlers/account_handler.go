package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "propdesk/internal/api/context"
	"propdesk/internal/engine/mailer"
	"propdesk/internal/engine/platformapi"
	"propdesk/internal/pkg/errors"
	"propdesk/internal/platform/auth"
	"propdesk/internal/platform/models"
	"propdesk/internal/platform/repositories"
)

// AccountHandler proxies trading-account operations to the platform API and
// keeps a local snapshot for the dashboard.
type AccountHandler struct {
	accountRepo *repositories.AccountRepository
	userRepo    *repositories.UserRepository
	platform    *platformapi.Client
	dispatcher  *mailer.Dispatcher
}

func NewAccountHandler(accountRepo *repositories.AccountRepository, userRepo *repositories.UserRepository, platform *platformapi.Client, dispatcher *mailer.Dispatcher) *AccountHandler {
	return &AccountHandler{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		platform:    platform,
		dispatcher:  dispatcher,
	}
}

type CreateAccountRequest struct {
	UserID         string  `json:"user_id"`
	Program        string  `json:"program"`
	InitialBalance float64 `json:"initial_balance"`
	Currency       string  `json:"currency"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByID(req.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	platformAccount, err := h.platform.CreateAccount(r.Context(), platformapi.CreateAccountRequest{
		UserEmail:      user.Email,
		Program:        req.Program,
		InitialBalance: req.InitialBalance,
		Currency:       currency,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("platform account creation failed")
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUpstream, "Trading platform rejected account creation", nil)
		return
	}

	now := time.Now().Unix()
	account := &models.TradingAccount{
		ID:                "acct_" + uuid.New().String(),
		UserID:            user.ID,
		AccountNumber:     platformAccount.AccountNumber,
		PlatformAccountID: platformAccount.ID,
		Program:           req.Program,
		Status:            models.AccountStatusActive,
		Balance:           platformAccount.Balance,
		Currency:          currency,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.accountRepo.Create(account); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to save account", nil)
		return
	}

	h.dispatcher.Dispatch(r.Context(), "account-created", user.Email, map[string]interface{}{
		"name":    user.FullName,
		"account": account.AccountNumber,
		"program": account.Program,
		"balance": account.Balance,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var accounts []*models.TradingAccount
	var err error
	if claims.Role == models.RoleAdmin {
		limit := parsePositiveInt(r.URL.Query().Get("limit"), 50)
		offset := parsePositiveInt(r.URL.Query().Get("offset"), 0)
		accounts, err = h.accountRepo.List(limit, offset)
	} else {
		// Traders only see their own accounts.
		accounts, err = h.accountRepo.ListByUser(claims.UserID)
	}
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch accounts", nil)
		return
	}
	if accounts == nil {
		accounts = []*models.TradingAccount{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// Get returns the local snapshot refreshed against the platform when it is
// reachable; a platform outage degrades to the last stored snapshot.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	account, err := h.accountRepo.GetByID(params.ByName("account_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if account == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Account not found", nil)
		return
	}

	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	if claims.Role != models.RoleAdmin && account.UserID != claims.UserID {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not your account", nil)
		return
	}

	if live, err := h.platform.GetAccount(r.Context(), account.PlatformAccountID); err == nil {
		if live.Balance != account.Balance {
			account.Balance = live.Balance
			h.accountRepo.UpdateBalance(account.ID, live.Balance)
		}
	} else {
		log.Warn().Err(err).Str("account_id", account.ID).Msg("platform balance refresh failed, serving snapshot")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

func (h *AccountHandler) Disable(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	account, err := h.accountRepo.GetByID(params.ByName("account_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if account == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Account not found", nil)
		return
	}

	if err := h.platform.DisableAccount(r.Context(), account.PlatformAccountID); err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("platform disable failed")
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUpstream, "Trading platform rejected disable", nil)
		return
	}

	if err := h.accountRepo.UpdateStatus(account.ID, models.AccountStatusDisabled); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update account", nil)
		return
	}

	if user, err := h.userRepo.GetByID(account.UserID); err == nil && user != nil {
		h.dispatcher.Dispatch(r.Context(), "account-disabled", user.Email, map[string]interface{}{
			"name":    user.FullName,
			"account": account.AccountNumber,
		})
	}

	w.WriteHeader(http.StatusOK)
}
