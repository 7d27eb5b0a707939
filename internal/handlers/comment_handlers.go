package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"whispr/internal/engine/actors"
	"whispr/internal/middleware"
	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to post a new comment
type CreateCommentRequest struct {
	Text   string   `json:"text"`
	Topics []string `json:"topics"`
	Public *bool    `json:"public"` // defaults to true when omitted
}

// CommentActionRequest identifies a comment for like/view/bookmark actions
type CommentActionRequest struct {
	CommentID string `json:"commentId"`
}

// HandleCreateComment posts a new comment owned by the caller.
func (s *Server) HandleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		var req CreateCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		public := true
		if req.Public != nil {
			public = *req.Public
		}

		result, err := s.request(s.Engine.GetCommentActor(), &actors.CreateCommentMsg{
			Text:   req.Text,
			Topics: req.Topics,
			UserID: userID,
			Public: public,
		})
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, result)
	}
}

// HandleGetFeed serves one page of the comment feed. Filter defaults to ALL,
// page to 1.
func (s *Server) HandleGetFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		filter := r.URL.Query().Get("filter")
		if filter == "" {
			filter = models.FeedFilterAll
		}

		page := 1
		if pageStr := r.URL.Query().Get("page"); pageStr != "" {
			parsed, err := strconv.Atoi(pageStr)
			if err != nil || parsed < 1 {
				s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid page number", err))
				return
			}
			page = parsed
		}

		result, err := s.request(s.Engine.GetCommentActor(), &actors.GetFeedMsg{
			UserID: userID,
			Filter: filter,
			Page:   page,
		})
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"comments": result,
			"page":     page,
			"pageSize": models.FeedPageSize,
		})
	}
}

// HandleLikeComment toggles the caller's like on a comment.
func (s *Server) HandleLikeComment() http.HandlerFunc {
	return s.handleCommentAction(func(commentID, userID uuid.UUID) interface{} {
		return &actors.LikeCommentMsg{CommentID: commentID, UserID: userID}
	})
}

// HandleViewComment records that the caller has seen a comment.
func (s *Server) HandleViewComment() http.HandlerFunc {
	return s.handleCommentAction(func(commentID, userID uuid.UUID) interface{} {
		return &actors.ViewCommentMsg{CommentID: commentID, UserID: userID}
	})
}

// HandleBookmarkComment toggles a comment in the caller's bookmarks.
func (s *Server) HandleBookmarkComment() http.HandlerFunc {
	return s.handleCommentAction(func(commentID, userID uuid.UUID) interface{} {
		return &actors.BookmarkCommentMsg{CommentID: commentID, UserID: userID}
	})
}

func (s *Server) handleCommentAction(buildMsg func(commentID, userID uuid.UUID) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		var req CommentActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		commentID, err := uuid.Parse(req.CommentID)
		if err != nil {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid comment id", err))
			return
		}

		result, err := s.request(s.Engine.GetCommentActor(), buildMsg(commentID, userID))
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}
