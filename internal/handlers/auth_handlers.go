package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"whispr/internal/auth"
	"whispr/internal/middleware"
	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
)

// SendOTPRequest represents a request for a login code
type SendOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest represents a code verification attempt
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ProfileSetupRequest carries the fields a new user must provide
type ProfileSetupRequest struct {
	Username   string `json:"username"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	ProfilePic string `json:"profilePic"`
}

// UsernameCheckRequest asks whether a username is still free
type UsernameCheckRequest struct {
	Username string `json:"username"`
}

// HandleSendOTP emails a 6-digit login code, subject to the per-email
// resend cooldown.
func (s *Server) HandleSendOTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || !strings.Contains(email, "@") {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "A valid email is required", nil))
			return
		}

		if err := s.OTP.Send(r.Context(), email); err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "OTP sent successfully.",
		})
	}
}

// HandleVerifyOTP checks the submitted code. A known email gets the auth
// cookie straight away; an unknown one gets a short-lived temp_email cookie
// and is sent to profile setup.
func (s *Server) HandleVerifyOTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "Email is required", nil))
			return
		}

		if err := s.OTP.Verify(r.Context(), email, req.OTP); err != nil {
			s.respondWithError(w, err)
			return
		}

		user, err := s.Store.GetUserByEmail(r.Context(), email)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrUserNotFound) {
				middleware.SetTempEmailCookie(w, email)
				respondWithJSON(w, http.StatusOK, map[string]interface{}{
					"newUser": true,
					"message": "OTP verified. Complete your profile.",
				})
				return
			}
			s.respondWithError(w, err)
			return
		}

		token, err := middleware.GenerateToken(user.ID, user.Email)
		if err != nil {
			log.Printf("Failed to generate token for %s: %v", user.ID, err)
			s.respondWithError(w, utils.NewAppError(utils.ErrDatabase, "Failed to issue auth token", err))
			return
		}
		middleware.SetAuthCookie(w, token)

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"newUser": false,
			"message": "Logged in successfully.",
		})
	}
}

// HandleProfileSetup creates the user record for a freshly verified email.
// Requires the temp_email cookie set by verify-otp.
func (s *Server) HandleProfileSetup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(middleware.TempEmailCookieName)
		if err != nil || cookie.Value == "" {
			s.respondWithError(w, utils.NewUnauthorizedError("email verification required"))
			return
		}
		email := cookie.Value

		var req ProfileSetupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.ProfilePic == "" || req.Age <= 0 || !models.ValidGender(req.Gender) {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "username, gender, age and profilePic are all required", nil))
			return
		}

		if _, err := s.Store.GetUserByEmail(r.Context(), email); err == nil {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "Email is already registered", nil))
			return
		} else if !utils.IsErrorCode(err, utils.ErrUserNotFound) {
			s.respondWithError(w, err)
			return
		}

		taken, err := s.Store.UsernameExists(r.Context(), req.Username)
		if err != nil {
			s.respondWithError(w, err)
			return
		}
		if taken {
			s.respondWithError(w, utils.NewAppError(utils.ErrDuplicate, "Username is already taken", nil))
			return
		}

		publicID, err := auth.GeneratePublicID(r.Context(), s.Store, req.Username)
		if err != nil {
			s.respondWithError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate public id", err))
			return
		}

		now := time.Now()
		user := &models.User{
			ID:         uuid.New(),
			Email:      email,
			Username:   req.Username,
			PublicID:   publicID,
			Gender:     req.Gender,
			Age:        req.Age,
			ProfilePic: req.ProfilePic,
			Followers:  make([]uuid.UUID, 0),
			Followed:   make([]uuid.UUID, 0),
			Bookmarked: make([]uuid.UUID, 0),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.Store.SaveUser(r.Context(), user); err != nil {
			log.Printf("Failed to create user for %s: %v", email, err)
			s.respondWithError(w, utils.NewAppError(utils.ErrDatabase, "Failed to create user", err))
			return
		}

		token, err := middleware.GenerateToken(user.ID, user.Email)
		if err != nil {
			log.Printf("Failed to generate token for new user %s: %v", user.ID, err)
			s.respondWithError(w, utils.NewAppError(utils.ErrDatabase, "Failed to issue auth token", err))
			return
		}
		middleware.SetAuthCookie(w, token)
		middleware.ClearTempEmailCookie(w)

		log.Printf("Created user %s (%s)", user.ID, user.PublicID)
		respondWithJSON(w, http.StatusCreated, user)
	}
}

// HandleUsernameCheck reports whether a username is still available.
func (s *Server) HandleUsernameCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UsernameCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(req.Username)
		if username == "" {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "Username is required", nil))
			return
		}

		taken, err := s.Store.UsernameExists(r.Context(), username)
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]bool{
			"available": !taken,
		})
	}
}

// HandleLogout clears the auth cookie.
func (s *Server) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.ClearAuthCookie(w)
		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Logged out.",
		})
	}
}

// HandleLoggedIn reports whether the request carries a valid auth cookie.
func (s *Server) HandleLoggedIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(middleware.AuthCookieName)
		if err != nil {
			respondWithJSON(w, http.StatusOK, map[string]bool{"loggedIn": false})
			return
		}

		_, err = middleware.ValidateToken(cookie.Value)
		respondWithJSON(w, http.StatusOK, map[string]bool{"loggedIn": err == nil})
	}
}
