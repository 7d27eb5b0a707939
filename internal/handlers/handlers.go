package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"whispr/internal/auth"
	"whispr/internal/database"
	"whispr/internal/engine"
	"whispr/internal/middleware"
	"whispr/internal/search"
	"whispr/internal/utils"
	"whispr/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/mux"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Store          database.Store
	OTP            *auth.OTPService
	Cache          *auth.ProfileCache
	Search         *search.Service
	Hub            *websocket.Hub
	Metrics        *utils.MetricsCollector
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	context *actor.RootContext,
	eng *engine.Engine,
	store database.Store,
	otp *auth.OTPService,
	cache *auth.ProfileCache,
	searchSvc *search.Service,
	hub *websocket.Hub,
	metrics *utils.MetricsCollector,
) *Server {
	return &Server{
		System:         system,
		Context:        context,
		Engine:         eng,
		Store:          store,
		OTP:            otp,
		Cache:          cache,
		Search:         searchSvc,
		Hub:            hub,
		Metrics:        metrics,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// RegisterRoutes attaches every endpoint to the router. The /api/users/call
// routes must register before the /api/users/{username} catch-all.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", s.HandleHealth()).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.HandleWebSocket()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/send-otp", s.HandleSendOTP()).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-otp", s.HandleVerifyOTP()).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile-setup", s.HandleProfileSetup()).Methods(http.MethodPost)
	api.HandleFunc("/auth/username-check", s.HandleUsernameCheck()).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.HandleLogout()).Methods(http.MethodGet)
	api.HandleFunc("/auth/logged-in", s.HandleLoggedIn()).Methods(http.MethodGet)

	api.HandleFunc("/users/call/myself", middleware.ApplyJWTMiddleware(s.HandleMyself())).Methods(http.MethodGet)
	api.HandleFunc("/users/call/following-profiles", middleware.ApplyJWTMiddleware(s.HandleFollowingProfiles())).Methods(http.MethodGet)
	api.HandleFunc("/users/follow", middleware.ApplyJWTMiddleware(s.HandleFollow())).Methods(http.MethodPost)
	api.HandleFunc("/users/unfollow", middleware.ApplyJWTMiddleware(s.HandleUnfollow())).Methods(http.MethodPost)
	api.HandleFunc("/users/{username}", s.HandleUserProfile()).Methods(http.MethodGet)

	api.HandleFunc("/comments/create", middleware.ApplyJWTMiddleware(s.HandleCreateComment())).Methods(http.MethodPost)
	api.HandleFunc("/comments/like", middleware.ApplyJWTMiddleware(s.HandleLikeComment())).Methods(http.MethodPost)
	api.HandleFunc("/comments/view", middleware.ApplyJWTMiddleware(s.HandleViewComment())).Methods(http.MethodPost)
	api.HandleFunc("/comments/bookmark", middleware.ApplyJWTMiddleware(s.HandleBookmarkComment())).Methods(http.MethodPost)
	api.HandleFunc("/comments", middleware.ApplyJWTMiddleware(s.HandleGetFeed())).Methods(http.MethodGet)

	api.HandleFunc("/discover/people", middleware.ApplyJWTMiddleware(s.HandleDiscoverPeople())).Methods(http.MethodGet)
	api.HandleFunc("/search/search-bar", s.HandleSearchBar()).Methods(http.MethodGet)
}

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondWithError maps an AppError to its HTTP status; anything else is a
// plain 500.
func (s *Server) respondWithError(w http.ResponseWriter, err error) {
	s.Metrics.IncrementErrors()
	if appErr, ok := err.(*utils.AppError); ok {
		respondWithJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
			"error": appErr.Message,
		})
		return
	}
	log.Printf("Unhandled error: %v", err)
	respondWithJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "Internal server error",
	})
}

// request sends a message to an actor and unwraps AppError replies into the
// error return so handlers deal with one failure path.
func (s *Server) request(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewAppError(utils.ErrActorTimeout, "Request timed out", err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}
