package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
	"github.com/dmitrijs2005/talkscribe/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessionDTO struct {
	User *userDTO `json:"user"`
	tokenPairDTO
}

func toUserDTO(u *models.User) *userDTO {
	return &userDTO{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toTokenPairDTO(p *services.TokenPair) tokenPairDTO {
	return tokenPairDTO{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, pair, err := s.users.Register(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, sessionDTO{User: toUserDTO(user), tokenPairDTO: toTokenPairDTO(pair)})
	case errors.Is(err, common.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Email and password are required")
	case errors.Is(err, common.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "User already exists")
	default:
		s.logger.Error(r.Context(), "register failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Server error", err.Error())
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sessionDTO{User: toUserDTO(user), tokenPairDTO: toTokenPairDTO(pair)})
	case errors.Is(err, common.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Email and password are required")
	case errors.Is(err, common.ErrInvalidCredentials):
		s.authFailure(r.Context(), "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Server error", err.Error())
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toTokenPairDTO(pair))
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		s.authFailure(r.Context(), "invalid_refresh_token")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		s.logger.Error(r.Context(), "refresh failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Server error", err.Error())
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}
	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Server error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	user, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeErrorDetails(w, http.StatusInternalServerError, "Server error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}
