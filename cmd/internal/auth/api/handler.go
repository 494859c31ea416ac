package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"raven/cmd/identity"
	"raven/cmd/security/password"
	"raven/cmd/security/token"

	"github.com/google/uuid"
)

// Handler wires the login and registration endpoints to the identity store
// and the security primitives.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	users  identity.Store
	hasher password.Params

	// dummyHash keeps login latency independent of username existence.
	dummyHash string

	now func() time.Time
}

// NewHandler constructs the auth handler.
func NewHandler(log *slog.Logger, users identity.Store, hasher password.Params, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil {
		return nil, errors.New("authapi: nil user store")
	}

	h := &Handler{
		log:    log,
		cfg:    cfg.withDefaults(),
		users:  users,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}

	dummy, err := hasher.Hash("dummy-password-for-timing-only")
	if err != nil {
		return nil, err
	}
	h.dummyHash = dummy

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/login", h.handleLogin)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		// Empty or oversized passwords are caller input; report them as such.
		WriteEnvelope(w, http.StatusBadRequest, false, "invalid password", nil)
		return
	}

	user, err := h.users.Create(r.Context(), identity.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		APIKey:       uuid.NewString(),
		Now:          h.now(),
	})
	switch {
	case errors.Is(err, identity.ErrInvalidInput):
		WriteEnvelope(w, http.StatusBadRequest, false, "invalid username or email", nil)
		return
	case errors.Is(err, identity.ErrConflict):
		WriteEnvelope(w, http.StatusConflict, false, "username or email already registered", nil)
		return
	case err != nil:
		h.log.Error("auth.register.failed", "err", err)
		WriteEnvelope(w, http.StatusInternalServerError, false, "registration failed", nil)
		return
	}

	h.log.Info("auth.register.ok", "user_id", user.ID)
	WriteEnvelope(w, http.StatusOK, true, "registered", registerData{
		UserID:   user.ID,
		Username: user.Username,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Burn comparable time so unknown usernames are not detectable
			// through response latency, then fail uniformly.
			h.hasher.Verify(req.Password, h.dummyHash)
			h.rejectLogin(w)
			return
		}
		h.log.Error("auth.login.lookup_failed", "err", err)
		WriteEnvelope(w, http.StatusInternalServerError, false, "login failed", nil)
		return
	}

	// Verify before the activity check so inactive accounts cost the same
	// as a wrong password.
	passwordOK := h.hasher.Verify(req.Password, user.PasswordHash)
	if !passwordOK || !user.IsActive {
		h.rejectLogin(w)
		return
	}

	now := h.now()
	claims := token.NewAccessClaims(user.ID, now, h.cfg.TokenTTL)
	tok, err := token.Encode([]byte(h.cfg.Secret), claims)
	if err != nil {
		h.log.Error("auth.login.token_failed", "err", err)
		WriteEnvelope(w, http.StatusInternalServerError, false, "login failed", nil)
		return
	}

	if err := h.users.TouchLastLogin(r.Context(), user.ID, now); err != nil {
		// Bookkeeping only; the login still succeeds.
		h.log.Warn("auth.login.touch_failed", "user_id", user.ID, "err", err)
	}

	exp, _ := claims.ExpiresAt()
	h.log.Info("auth.login.ok", "user_id", user.ID)
	WriteEnvelope(w, http.StatusOK, true, "login successful", loginData{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: tok,
		ExpiresAt:   exp.Format(time.RFC3339),
	})
}

// rejectLogin answers every credential failure identically.
func (h *Handler) rejectLogin(w http.ResponseWriter) {
	WriteEnvelope(w, http.StatusUnauthorized, false, "invalid username or password", nil)
}
