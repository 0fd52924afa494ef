package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"cashy/internal/auth"
	"cashy/internal/core"
	"cashy/internal/storage"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// handleRegister creates the account and logs it in immediately: the
// response carries a fresh token alongside the user, so clients skip the
// extra login round trip.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := validateAccountFields(username, email); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeDomainError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	created, err := s.repo.CreateUser(r.Context(), core.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := s.tokens.Generate(created.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "User registered", authResponse{Token: token, User: viewUser(created)})
}

// handleLogin distinguishes an unknown email (404) from a wrong password
// (400) so clients can offer a signup prompt in the first case.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, r, loginLookupError(err))
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeDomainError(w, r, core.Invalid(core.KindInvalidCredentials, "Invalid credentials"))
		return
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Login successful", authResponse{Token: token, User: viewUser(user)})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.repo.GetUserByID(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Profile", viewUser(user))
}

type profileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := validateAccountFields(username, email); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := s.repo.UpdateUserProfile(r.Context(), userIDFrom(r), username, email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Profile updated", viewUser(updated))
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	user, err := s.repo.GetUserByID(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		writeDomainError(w, r, core.Invalid(core.KindInvalidCredentials, "Current password is incorrect"))
		return
	}
	if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
		writeDomainError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.repo.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Password updated", nil)
}

func validateAccountFields(username, email string) error {
	if username == "" {
		return core.Invalid(core.KindNameRequired, "Username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return core.Invalid(core.KindNameRequired, "A valid email is required")
	}
	return nil
}

// loginLookupError turns a storage miss into the user-not-found kind that
// maps to 404, leaving other errors untouched.
func loginLookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return core.Invalid(core.KindUserNotFound, "User not found")
	}
	return err
}
