package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/service"
)

type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type profileResponse struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	Username  string                 `json:"username"`
	Watchlist []movieSummaryResponse `json:"watchlist"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	user, err := s.services.Accounts.Register(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, "register", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully.",
		ID:      user.ID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	result, err := s.services.Accounts.Authenticate(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, "login", err)
		return
	}
	s.respondJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful.",
		Token:   result.Token,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.services.Accounts.Profile(r.Context(), mustIdentity(r))
	if err != nil {
		s.respondServiceError(w, r, "profile", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(profile domain.Profile) profileResponse {
	return profileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		Username:  profile.Username,
		Watchlist: toSummaryResponses(profile.Watchlist),
	}
}
