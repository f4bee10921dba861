package http

import (
	"net/http"
	"time"

	commonhttp "github.com/AlibekovAA/bloglist/backend/internal/common/http"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	"github.com/AlibekovAA/bloglist/backend/internal/user/service"
)

// UserResponse is the public shape of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Posts    []string `json:"posts"`
}

func NewUserResponse(u userdomain.User) UserResponse {
	posts := u.PostIDs
	if posts == nil {
		posts = []string{}
	}
	return UserResponse{
		ID:       string(u.ID),
		Username: u.Username,
		Name:     u.Name,
		Posts:    posts,
	}
}

type Handler struct {
	users     *service.UserService
	validator *jwtverify.Validator
	timeout   time.Duration
	log       *logger.Logger
}

func NewHandler(users *service.UserService, validator *jwtverify.Validator, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{users: users, validator: validator, timeout: timeout, log: log}
}

func (h *Handler) Routes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.timeout)
	mux.HandleFunc("GET /users", withTimeout(h.list))
	mux.Handle("GET /users/me", jwtverify.Middleware(h.validator, h.log)(withTimeout(h.me)))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, NewUserResponse(u))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, jwtverify.ErrMissingToken, h.log)
		return
	}

	user, err := h.users.GetUser(r.Context(), userdomain.ID(claims.UserID))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}
