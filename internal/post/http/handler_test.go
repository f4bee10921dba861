package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	authhttp "github.com/AlibekovAA/bloglist/backend/internal/auth/http"
	authservice "github.com/AlibekovAA/bloglist/backend/internal/auth/service"
	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/bloglist/backend/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/bloglist/backend/internal/common/http"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	posthttp "github.com/AlibekovAA/bloglist/backend/internal/post/http"
	postservice "github.com/AlibekovAA/bloglist/backend/internal/post/service"
	userhttp "github.com/AlibekovAA/bloglist/backend/internal/user/http"
	userservice "github.com/AlibekovAA/bloglist/backend/internal/user/service"
)

type postJSON struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	Owner  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"owner"`
}

type userJSON struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Posts    []string `json:"posts"`
}

type errorJSON struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type BlogAPISuite struct {
	suite.Suite
	handler http.Handler
	token   string
	seeded  []postJSON
}

func TestBlogAPISuite(t *testing.T) {
	suite.Run(t, new(BlogAPISuite))
}

func (s *BlogAPISuite) SetupTest() {
	log := logger.NewDiscard()
	store := &memStore{}
	users := memUsers{s: store}
	posts := memPosts{s: store}
	validator := jwtverify.NewValidator(constants.TestJWTSecret)

	authSvc := authservice.NewAuthService(
		authservice.Deps{
			Repo:        users,
			Hasher:      commoncrypto.NewBcryptHasher(4),
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Clock:       clock.NewRealClock(),
			Log:         log,
		},
		authservice.Config{
			JWTSecret:               constants.TestJWTSecret,
			CircuitBreakerThreshold: constants.TestCircuitBreakerThreshold,
			CircuitBreakerTimeout:   constants.TestCircuitBreakerTimeout,
			CircuitBreakerReset:     constants.TestCircuitBreakerReset,
		},
	)
	postSvc := postservice.NewPostService(
		postservice.Deps{
			Repo:        posts,
			Users:       users,
			Tokens:      validator,
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Clock:       clock.NewRealClock(),
			Log:         log,
		},
		postservice.Config{
			CircuitBreakerThreshold: constants.TestCircuitBreakerThreshold,
			CircuitBreakerTimeout:   constants.TestCircuitBreakerTimeout,
			CircuitBreakerReset:     constants.TestCircuitBreakerReset,
		},
	)

	mux := http.NewServeMux()
	authhttp.NewHandler(authSvc, 5*time.Second, log).Routes(mux)
	userhttp.NewHandler(userservice.NewUserService(users, log), validator, 5*time.Second, log).Routes(mux)
	posthttp.NewHandler(postSvc, 5*time.Second, log).Routes(mux)
	mux.HandleFunc("/", commonhttp.UnknownEndpoint)
	s.handler = commonhttp.BuildBaseHandler(log, mux)

	rec := s.do(http.MethodPost, "/users", "", map[string]string{"username": "test", "name": "Test User", "password": "sekret"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.token = s.login("test", "sekret")

	s.seeded = nil
	for _, p := range []map[string]any{
		{"title": "HTML is easy", "author": "Pekka", "url": "html://pekanblog.com", "likes": 6},
		{"title": "Browser can execute only Javascript", "author": "Markku", "url": "html://markunblogi.com", "likes": 6},
	} {
		rec := s.do(http.MethodPost, "/posts", s.token, p)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.seeded = append(s.seeded, decode[postJSON](s.T(), rec))
	}
}

func (s *BlogAPISuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *BlogAPISuite) login(username, password string) string {
	rec := s.do(http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Require().NotEmpty(body.Token)
	return body.Token
}

func (s *BlogAPISuite) listPosts() []postJSON {
	rec := s.do(http.MethodGet, "/posts", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	return decode[[]postJSON](s.T(), rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func titles(posts []postJSON) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func (s *BlogAPISuite) TestListReturnsSeededPostsAsJSON() {
	rec := s.do(http.MethodGet, "/posts", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "application/json")

	posts := decode[[]postJSON](s.T(), rec)
	s.Len(posts, 2)
	s.Equal([]string{"HTML is easy", "Browser can execute only Javascript"}, titles(posts))
	for _, p := range posts {
		s.NotEmpty(p.ID)
		s.Equal("test", p.Owner.Username)
	}
}

func (s *BlogAPISuite) TestCreateBindsOwnerAndGrowsList() {
	rec := s.do(http.MethodPost, "/posts", s.token, map[string]any{
		"title":  "Canonical string reduction",
		"author": "Edsger W. Dijkstra",
		"url":    "http://www.cs.utexas.edu/~EWD/transcriptions/EWD08xx/EWD808.html",
		"likes":  12,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	created := decode[postJSON](s.T(), rec)
	s.Equal("test", created.Owner.Username)
	s.Equal(12, created.Likes)

	posts := s.listPosts()
	s.Len(posts, len(s.seeded)+1)
	s.Contains(titles(posts), "Canonical string reduction")

	rec = s.do(http.MethodGet, "/users", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	users := decode[[]userJSON](s.T(), rec)
	s.Require().Len(users, 1)
	s.Contains(users[0].Posts, created.ID)
	s.Equal(users[0].ID, created.Owner.ID)
}

func (s *BlogAPISuite) TestCreateWithoutLikesDefaultsToZero() {
	rec := s.do(http.MethodPost, "/posts", s.token, map[string]any{
		"title":  "First class tests",
		"author": "Robert C. Martin",
		"url":    "http://blog.cleancoder.com/uncle-bob/2017/05/05/TestDefinitions.htmll",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(0, decode[postJSON](s.T(), rec).Likes)
}

func (s *BlogAPISuite) TestCreateWithoutTitleAndURLIsRejected() {
	rec := s.do(http.MethodPost, "/posts", s.token, map[string]any{"author": "Edsger W. Dijkstra", "likes": 1})
	s.Equal(http.StatusBadRequest, rec.Code)

	body := decode[errorJSON](s.T(), rec)
	s.Equal("VALIDATION_FAILED", body.Code)
	s.Contains(body.Details, "title")
	s.Contains(body.Details, "url")

	s.Len(s.listPosts(), len(s.seeded))
}

func (s *BlogAPISuite) TestCreateWithoutTokenIsUnauthorized() {
	rec := s.do(http.MethodPost, "/posts", "", map[string]any{"title": "Type wars", "url": "http://blog.cleancoder.com"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(decode[errorJSON](s.T(), rec).Error, "invalid token")

	s.Len(s.listPosts(), len(s.seeded))
}

func (s *BlogAPISuite) TestCreateWithoutTokenOrBodyIsUnauthorized() {
	rec := s.do(http.MethodPost, "/posts", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code, rec.Body.String())
	s.Contains(decode[errorJSON](s.T(), rec).Error, "invalid token")

	s.Len(s.listPosts(), len(s.seeded))
}

func (s *BlogAPISuite) TestCreateWithTokenAndNoBodyIsValidationError() {
	rec := s.do(http.MethodPost, "/posts", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	s.Equal("VALIDATION_FAILED", decode[errorJSON](s.T(), rec).Code)
}

func (s *BlogAPISuite) TestCreateWithTamperedTokenIsUnauthorized() {
	rec := s.do(http.MethodPost, "/posts", s.token+"x", map[string]any{"title": "Type wars", "url": "http://blog.cleancoder.com"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	body := decode[errorJSON](s.T(), rec)
	s.Equal("invalid token", body.Error)
	s.Equal("INVALID_TOKEN", body.Code)
}

func (s *BlogAPISuite) TestOwnerCanDeletePost() {
	target := s.seeded[0]

	rec := s.do(http.MethodDelete, "/posts/"+target.ID, s.token, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	posts := s.listPosts()
	s.Len(posts, len(s.seeded)-1)
	s.NotContains(titles(posts), target.Title)

	rec = s.do(http.MethodDelete, "/posts/"+target.ID, s.token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *BlogAPISuite) TestNonOwnerCannotDeletePost() {
	rec := s.do(http.MethodPost, "/users", "", map[string]string{"username": "intruder", "password": "salainen"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	other := s.login("intruder", "salainen")

	rec = s.do(http.MethodDelete, "/posts/"+s.seeded[0].ID, other, nil)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Len(s.listPosts(), len(s.seeded))
}

func (s *BlogAPISuite) TestDeleteWithoutTokenIsUnauthorized() {
	rec := s.do(http.MethodDelete, "/posts/"+s.seeded[0].ID, "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Len(s.listPosts(), len(s.seeded))
}

func (s *BlogAPISuite) TestAnyoneCanUpdateLikes() {
	target := s.seeded[1]

	rec := s.do(http.MethodPut, "/posts/"+target.ID, "", map[string]any{
		"title":  target.Title,
		"author": target.Author,
		"url":    target.URL,
		"likes":  target.Likes + 1,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(target.Likes+1, decode[postJSON](s.T(), rec).Likes)

	rec = s.do(http.MethodGet, "/posts/"+target.ID, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(target.Likes+1, decode[postJSON](s.T(), rec).Likes)
}

func (s *BlogAPISuite) TestUpdateWithOutOfRangeLikesIsRejected() {
	target := s.seeded[0]

	for i := 0; i < constants.TestCircuitBreakerThreshold+1; i++ {
		rec := s.do(http.MethodPut, "/posts/"+target.ID, "", map[string]any{"likes": int64(1) << 40})
		s.Require().Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		body := decode[errorJSON](s.T(), rec)
		s.Equal("VALIDATION_FAILED", body.Code)
		s.Contains(body.Details, "likes")
	}

	s.Len(s.listPosts(), len(s.seeded))
	rec := s.do(http.MethodGet, "/posts/"+target.ID, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(target.Likes, decode[postJSON](s.T(), rec).Likes)
}

func (s *BlogAPISuite) TestUpdateWithoutLikesKeepsLikes() {
	target := s.seeded[0]

	rec := s.do(http.MethodPut, "/posts/"+target.ID, "", map[string]any{"author": "Pekka Mikkola"})
	s.Require().Equal(http.StatusOK, rec.Code)
	updated := decode[postJSON](s.T(), rec)
	s.Equal(target.Likes, updated.Likes)
	s.Equal("Pekka Mikkola", updated.Author)
}

func (s *BlogAPISuite) TestGetUnknownPostIsNotFound() {
	for _, id := range []string{"2f6d5c4b-3a29-4817-9f6e-5d4c3b2a1908", "not-a-uuid"} {
		rec := s.do(http.MethodGet, "/posts/"+id, "", nil)
		s.Equal(http.StatusNotFound, rec.Code, id)
		s.Equal("POST_NOT_FOUND", decode[errorJSON](s.T(), rec).Code)
	}
}

func (s *BlogAPISuite) TestCurrentUser() {
	rec := s.do(http.MethodGet, "/users/me", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	me := decode[userJSON](s.T(), rec)
	s.Equal("test", me.Username)
	s.Len(me.Posts, len(s.seeded))

	rec = s.do(http.MethodGet, "/users/me", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *BlogAPISuite) TestUnknownEndpoint() {
	rec := s.do(http.MethodGet, "/nope", "", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	body := decode[errorJSON](s.T(), rec)
	s.Equal("unknown endpoint", body.Error)
	s.Equal("NOT_FOUND", body.Code)
}

func TestErrorResponsesCarryTraceID(t *testing.T) {
	log := logger.NewDiscard()
	mux := http.NewServeMux()
	posthttp.NewHandler(postservice.NewPostService(postservice.Deps{
		Repo:        memPosts{s: &memStore{}},
		Users:       memUsers{s: &memStore{}},
		Tokens:      jwtverify.NewValidator(constants.TestJWTSecret),
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		Log:         log,
	}, postservice.Config{}), time.Second, log).Routes(mux)
	h := commonhttp.BuildBaseHandler(log, mux)

	req := httptest.NewRequest(http.MethodGet, "/posts/not-a-uuid", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-ID"))
	var body struct {
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "trace-123", body.TraceID)
}
