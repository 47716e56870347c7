package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"boardserver/internal/domain"
	"boardserver/internal/middleware"
	"boardserver/internal/storage"
)

// maxAttachmentBytes caps a single upload at 10 MiB.
const maxAttachmentBytes = 10 << 20

const recentSearchLimit = 5

type postResponse struct {
	ID            string    `json:"id"`
	AuthorLoginID string    `json:"author"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	AttachmentKey string    `json:"attachment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:            p.ID,
		AuthorLoginID: p.AuthorLoginID,
		Title:         p.Title,
		Content:       p.Content,
		AttachmentKey: p.AttachmentKey,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPostList(posts []domain.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		p := posts[i]
		p.Content = ""
		out = append(out, toPostResponse(&p))
	}
	return out
}

// ListPosts returns the board index, newest first, without bodies.
func (a *App) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.Posts.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toPostList(posts))
}

// GetPost returns one post with its body and comments.
func (a *App) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	post, err := a.Posts.GetByID(r.Context(), postID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	comments, err := a.Comments.ListByPostID(r.Context(), postID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"post":     toPostResponse(post),
		"comments": toCommentList(comments),
	})
}

// CreatePost accepts a multipart form with title, content and an optional
// file part. The attachment is stored before the row is written; a failed
// insert leaves an orphaned object behind, which is acceptable.
func (a *App) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}

	var attachmentKey string
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
		if readErr != nil {
			a.fail(w, r, readErr)
			return
		}
		if len(data) > maxAttachmentBytes {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "attachment exceeds 10 MiB")
			return
		}
		key, writeErr := a.Store.Write(r.Context(), storage.AttachmentKey(time.Now(), header.Filename), data)
		if writeErr != nil {
			a.fail(w, r, writeErr)
			return
		}
		attachmentKey = key
	case errors.Is(err, http.ErrMissingFile):
		// no attachment
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "invalid file part")
		return
	}

	created, err := a.Posts.Create(r.Context(), &domain.Post{
		AuthorID:      middleware.UserIDFromContext(r.Context()),
		Title:         title,
		Content:       content,
		AttachmentKey: attachmentKey,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, created.AuthorID, http.StatusCreated, map[string]string{"title": title}, map[string]string{"post_id": created.ID})
	a.json(w, http.StatusCreated, toPostResponse(created))
}

type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePost edits a post. Only the author may edit; a mismatch reads as not
// found so post ownership is not probeable.
func (a *App) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	postID := chi.URLParam(r, "postID")
	accountID := middleware.UserIDFromContext(r.Context())
	if err := a.Posts.Update(r.Context(), postID, accountID, req.Title, req.Content); err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, accountID, http.StatusOK, map[string]string{"post_id": postID}, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "post updated"})
}

// DeletePost removes a post and its stored attachment.
func (a *App) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	accountID := middleware.UserIDFromContext(r.Context())

	post, err := a.Posts.GetByID(r.Context(), postID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Posts.Delete(r.Context(), postID, accountID); err != nil {
		a.fail(w, r, err)
		return
	}
	if post.AttachmentKey != "" {
		if err := a.Store.Delete(r.Context(), post.AttachmentKey); err != nil {
			a.Logger.Warn().Err(err).Str("key", post.AttachmentKey).Msg("attachment cleanup failed")
		}
	}
	a.auditEntry(r, accountID, http.StatusOK, map[string]string{"post_id": postID}, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// SearchPosts finds posts by title substring and remembers the term in the
// caller's recent-search list.
func (a *App) SearchPosts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("title"))
	if term == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title query parameter is required")
		return
	}
	posts, err := a.Posts.SearchByTitle(r.Context(), term)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if a.Searches != nil {
		if err := a.Searches.Add(r.Context(), middleware.UserIDFromContext(r.Context()), term); err != nil {
			a.Logger.Warn().Err(err).Msg("recent search record failed")
		}
	}
	a.json(w, http.StatusOK, toPostList(posts))
}

// RecentSearchTerms lists the caller's latest search terms, newest first.
func (a *App) RecentSearchTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := a.Searches.List(r.Context(), middleware.UserIDFromContext(r.Context()), recentSearchLimit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string][]string{"terms": terms})
}

// DownloadAttachment streams a post's attachment.
func (a *App) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	post, err := a.Posts.GetByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if post.AttachmentKey == "" {
		a.fail(w, r, domain.ErrNotFound)
		return
	}
	data, err := a.Store.Read(r.Context(), post.AttachmentKey)
	if err != nil {
		a.fail(w, r, domain.ErrNotFound)
		return
	}

	name := filepath.Base(post.AttachmentKey)
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
