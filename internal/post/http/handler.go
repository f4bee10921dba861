package http

import (
	"net/http"
	"time"

	commonhttp "github.com/AlibekovAA/bloglist/backend/internal/common/http"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/post/domain"
	"github.com/AlibekovAA/bloglist/backend/internal/post/service"
)

type ownerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type postResponse struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Author string        `json:"author"`
	URL    string        `json:"url"`
	Likes  int           `json:"likes"`
	Owner  ownerResponse `json:"owner"`
}

func newPostResponse(p domain.Post) postResponse {
	return postResponse{
		ID:     string(p.ID),
		Title:  p.Title,
		Author: p.Author,
		URL:    p.URL,
		Likes:  p.Likes,
		Owner: ownerResponse{
			ID:       string(p.Owner.ID),
			Username: p.Owner.Username,
		},
	}
}

type createRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

type updateRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

type Handler struct {
	posts   *service.PostService
	timeout time.Duration
	log     *logger.Logger
}

func NewHandler(posts *service.PostService, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{posts: posts, timeout: timeout, log: log}
}

func (h *Handler) Routes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.timeout)
	mux.HandleFunc("GET /posts", withTimeout(h.list))
	mux.HandleFunc("GET /posts/{id}", withTimeout(h.get))
	mux.HandleFunc("POST /posts", withTimeout(h.create))
	mux.HandleFunc("PUT /posts/{id}", withTimeout(h.update))
	mux.HandleFunc("DELETE /posts/{id}", withTimeout(h.delete))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, newPostResponse(p))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPost(r.Context(), domain.ID(r.PathValue("id")))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, newPostResponse(post))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	token, _ := jwtverify.ExtractTokenFromHeader(r)

	var req createRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, "post_create_invalid_json", err)
		return
	}

	post, err := h.posts.CreatePost(r.Context(), token, service.CreateInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, newPostResponse(post))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, "post_update_invalid_json", err)
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), domain.ID(r.PathValue("id")), service.UpdateInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, newPostResponse(post))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	token, _ := jwtverify.ExtractTokenFromHeader(r)

	if err := h.posts.DeletePost(r.Context(), token, domain.ID(r.PathValue("id"))); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.log.WithFields(r.Context(), logger.Fields{
		"action": action,
	}).Warnf("decode body: %v", err)
	commonhttp.WriteDecodeError(w, r, err)
}
