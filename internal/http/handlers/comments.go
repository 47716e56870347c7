package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"boardserver/internal/domain"
	"boardserver/internal/middleware"
)

type commentResponse struct {
	ID            string    `json:"id"`
	PostID        string    `json:"post_id"`
	AuthorLoginID string    `json:"author"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:            c.ID,
		PostID:        c.PostID,
		AuthorLoginID: c.AuthorLoginID,
		Content:       c.Content,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toCommentList(comments []domain.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListComments returns a post's comments, oldest first.
func (a *App) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := a.Comments.ListByPostID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCommentList(comments))
}

// CreateComment attaches a comment to a post.
func (a *App) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "content is required")
		return
	}
	accountID := middleware.UserIDFromContext(r.Context())
	created, err := a.Comments.Create(r.Context(), &domain.Comment{
		PostID:   chi.URLParam(r, "postID"),
		AuthorID: accountID,
		Content:  req.Content,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, accountID, http.StatusCreated, map[string]string{"post_id": created.PostID}, map[string]string{"comment_id": created.ID})
	a.json(w, http.StatusCreated, toCommentResponse(created))
}

// UpdateComment edits the caller's own comment.
func (a *App) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "content is required")
		return
	}
	commentID := chi.URLParam(r, "commentID")
	accountID := middleware.UserIDFromContext(r.Context())
	if err := a.Comments.Update(r.Context(), commentID, accountID, req.Content); err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, accountID, http.StatusOK, map[string]string{"comment_id": commentID}, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "comment updated"})
}

// DeleteComment removes the caller's own comment.
func (a *App) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	accountID := middleware.UserIDFromContext(r.Context())
	if err := a.Comments.Delete(r.Context(), commentID, accountID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, accountID, http.StatusOK, map[string]string{"comment_id": commentID}, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
