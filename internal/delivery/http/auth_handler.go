package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"tradedesk/internal/auth"
	"tradedesk/internal/delivery/http/dto"
	"tradedesk/internal/domain"
	"tradedesk/internal/middleware"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userRepo       domain.UserRepository
	walletRepo     domain.WalletRepository
	tokens         *auth.TokenService
	initialCapital float64
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo domain.UserRepository, walletRepo domain.WalletRepository, tokens *auth.TokenService, initialCapital float64) *AuthHandler {
	return &AuthHandler{
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		tokens:         tokens,
		initialCapital: initialCapital,
	}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	return h.issueToken(c, user)
}

// Refresh mints a new token for a request bearing an
// expired-but-authentic token. Requests with a broken signature, or
// with a token that is still valid, are rejected; valid tokens use the
// normal path, not refresh.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil || !principal.RefreshOnly {
		return UnauthorizedResponse(c, "Refresh requires an expired but authentic token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The expired token's role claim is not trusted; re-read the user
	// row so the fresh token carries current authority.
	user, err := h.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return UnauthorizedResponse(c, "Unknown user")
	}

	return h.issueToken(c, user)
}

// Logout handles user logout
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie := &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1, // Delete cookie
	}
	c.SetCookie(cookie)

	return SuccessResponse(c, map[string]string{"message": "Logged out"})
}

// Register handles user registration and bootstraps both wallets
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}
	if len(req.Password) < 6 {
		return BadRequestResponse(c, "Password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to hash password", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		return InternalServerErrorResponse(c, "Failed to create user", err)
	}

	for _, walletType := range []string{domain.WalletTypePaper, domain.WalletTypeReal} {
		wallet := &domain.Wallet{
			ID:             uuid.New(),
			UserID:         user.ID,
			WalletType:     walletType,
			InitialCapital: h.initialCapital,
			CurrentCapital: h.initialCapital,
			LastUpdated:    now,
		}
		if err := h.walletRepo.Create(ctx, wallet); err != nil {
			return InternalServerErrorResponse(c, "Failed to create wallet", err)
		}
	}

	return CreatedResponse(c, map[string]string{
		"message":  "User registered successfully",
		"username": user.Username,
	})
}

// GetMe returns current user details
// GET /api/user/me
func (h *AuthHandler) GetMe(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, &dto.UserOutput{
		ID:       user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	})
}

func (h *AuthHandler) issueToken(c echo.Context, user *domain.User) error {
	token, expiresAt, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	cookie := &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	}
	c.SetCookie(cookie)

	return SuccessResponse(c, &dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: &dto.UserOutput{
			ID:       user.ID.String(),
			Username: user.Username,
			Role:     user.Role,
		},
	})
}
