package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store/memory"
)

type envelope struct {
	Status  bool `json:"status"`
	Content *struct {
		Data json.RawMessage `json:"data"`
		Meta json.RawMessage `json:"meta"`
	} `json:"content"`
	Errors []struct {
		Param   string `json:"param"`
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"errors"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Port:          0,
		Store:         config.StoreMemory,
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		SnowflakeNode: 1,
	}
	a := New(cfg, memory.New().Stores(), zap.NewNop().Sugar())
	if err := a.RoleService.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("EnsureDefaults() error = %v", err)
	}
	return &testServer{t: t, handler: a.Routes()}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		s.t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if env.Content == nil {
		t.Fatalf("envelope has no content: %+v", env)
	}
	if err := json.Unmarshal(env.Content.Data, &v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return v
}

type profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// signup creates a user and returns its id and token.
func (s *testServer) signup(name, email string) (string, string) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "Abcdef1!",
	})
	if code != http.StatusCreated {
		s.t.Fatalf("signup %s: status = %d, errors = %+v", email, code, env.Errors)
	}
	var meta struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Content.Meta, &meta); err != nil || meta.AccessToken == "" {
		s.t.Fatalf("signup %s: missing access token (%v)", email, err)
	}
	return decodeData[profile](s.t, env).ID, meta.AccessToken
}

type communityDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Owner string `json:"owner"`
}

func (s *testServer) createCommunity(token, name string) communityDTO {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/v1/community", token, map[string]string{"name": name})
	if code != http.StatusCreated {
		s.t.Fatalf("create community: status = %d, errors = %+v", code, env.Errors)
	}
	return decodeData[communityDTO](s.t, env)
}

type roleRow struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

func (s *testServer) roleID(name string) string {
	s.t.Helper()
	_, env := s.do(http.MethodGet, "/v1/role", "", nil)
	for _, r := range decodeData[[]roleRow](s.t, env) {
		if r.Name == name {
			return r.ID
		}
	}
	s.t.Fatalf("role %q not seeded", name)
	return ""
}

func expectError(t *testing.T, code int, env envelope, wantStatus int, wantCode string) {
	t.Helper()
	if code != wantStatus {
		t.Fatalf("status = %d, expected %d (errors %+v)", code, wantStatus, env.Errors)
	}
	if env.Status || len(env.Errors) == 0 {
		t.Fatalf("expected an error envelope, got %+v", env)
	}
	if env.Errors[0].Code != wantCode {
		t.Errorf("code = %q, expected %q", env.Errors[0].Code, wantCode)
	}
}

func TestSignupAndDuplicate(t *testing.T) {
	s := newTestServer(t)
	id, token := s.signup("A", "a@x.com")
	if id == "" {
		t.Fatal("signup returned no user id")
	}

	code, env := s.do(http.MethodGet, "/v1/auth/me", token, nil)
	if code != http.StatusOK {
		t.Fatalf("me: status = %d", code)
	}
	me := decodeData[profile](t, env)
	if me.ID != id || me.Email != "a@x.com" || me.Name != "A" {
		t.Errorf("me = %+v", me)
	}

	code, env = s.do(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "Abcdef1!",
	})
	expectError(t, code, env, http.StatusBadRequest, "RESOURCE_EXISTS")
	if env.Errors[0].Param != "email" {
		t.Errorf("param = %q, expected email", env.Errors[0].Param)
	}
}

func TestSignupNormalizesEmail(t *testing.T) {
	s := newTestServer(t)
	s.signup("A", "  Mixed@Example.COM ")

	code, _ := s.do(http.MethodPost, "/v1/auth/signin", "", map[string]string{
		"email": "mixed@example.com", "password": "Abcdef1!",
	})
	if code != http.StatusOK {
		t.Fatalf("signin with normalized email: status = %d", code)
	}
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name      string
		body      map[string]string
		wantParam string
	}{
		{"missing email", map[string]string{"password": "Abcdef1!"}, "email"},
		{"bad email", map[string]string{"email": "nope", "password": "Abcdef1!"}, "email"},
		{"weak password", map[string]string{"email": "w@x.com", "password": "abc"}, "password"},
		{"missing password", map[string]string{"email": "w@x.com"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, "/v1/auth/signup", "", tt.body)
			expectError(t, code, env, http.StatusBadRequest, "INVALID_INPUT")
			if env.Errors[0].Param != tt.wantParam {
				t.Errorf("param = %q, expected %q", env.Errors[0].Param, tt.wantParam)
			}
		})
	}
}

func TestSignin(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.signup("B", "b@x.com")

	code, env := s.do(http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "b@x.com", "password": "Abcdef1!"})
	if code != http.StatusOK {
		t.Fatalf("signin: status = %d", code)
	}
	if got := decodeData[profile](t, env).ID; got != id {
		t.Errorf("signin id = %q, expected %q", got, id)
	}

	wrongPw, envWrong := s.do(http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "b@x.com", "password": "Wrong123!"})
	expectError(t, wrongPw, envWrong, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	unknown, envUnknown := s.do(http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "nobody@x.com", "password": "Abcdef1!"})
	expectError(t, unknown, envUnknown, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	if envWrong.Errors[0] != envUnknown.Errors[0] {
		t.Errorf("unknown email and wrong password must look the same: %+v vs %+v", envWrong.Errors[0], envUnknown.Errors[0])
	}

	missing, envMissing := s.do(http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "b@x.com"})
	expectError(t, missing, envMissing, http.StatusBadRequest, "INVALID_INPUT")
}

func TestMe_Anonymous(t *testing.T) {
	s := newTestServer(t)
	for name, token := range map[string]string{"no header": "", "garbage token": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			code, env := s.do(http.MethodGet, "/v1/auth/me", token, nil)
			expectError(t, code, env, http.StatusUnauthorized, "NOT_AUTHENTICATED")
		})
	}
}

func TestCreateCommunity(t *testing.T) {
	s := newTestServer(t)
	ownerID, token := s.signup("Owner", "owner@x.com")

	c := s.createCommunity(token, "Test Group")
	if c.Slug != "test-group" || c.Owner != ownerID {
		t.Fatalf("community = %+v", c)
	}

	code, env := s.do(http.MethodGet, "/v1/community/"+c.ID+"/members", "", nil)
	if code != http.StatusOK {
		t.Fatalf("members: status = %d", code)
	}
	type member struct {
		User struct{ ID string } `json:"user"`
		Role struct{ Name string } `json:"role"`
	}
	members := decodeData[[]member](t, env)
	if len(members) != 1 || members[0].User.ID != ownerID || members[0].Role.Name != "Community Admin" {
		t.Fatalf("members = %+v", members)
	}

	code, env = s.do(http.MethodPost, "/v1/community", token, map[string]string{"name": "test   GROUP"})
	expectError(t, code, env, http.StatusBadRequest, "RESOURCE_EXISTS")

	code, env = s.do(http.MethodPost, "/v1/community", "", map[string]string{"name": "Other"})
	expectError(t, code, env, http.StatusUnauthorized, "NOT_AUTHENTICATED")

	code, env = s.do(http.MethodPost, "/v1/community", token, map[string]string{"name": ""})
	expectError(t, code, env, http.StatusBadRequest, "INVALID_INPUT")

	code, env = s.do(http.MethodGet, "/v1/community/missing/members", "", nil)
	expectError(t, code, env, http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

func TestCommunityLists(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.signup("Owner", "owner@x.com")
	joinerID, joinerToken := s.signup("Joiner", "joiner@x.com")

	c1 := s.createCommunity(ownerToken, "First")
	s.createCommunity(ownerToken, "Second")
	s.createCommunity(joinerToken, "Third")

	code, env := s.do(http.MethodPost, "/v1/member", ownerToken, map[string]string{
		"community": c1.ID, "user": joinerID, "role": s.roleID("Community Member"),
	})
	if code != http.StatusCreated {
		t.Fatalf("add member: status = %d, errors = %+v", code, env.Errors)
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"all", "/v1/community", "", 3},
		{"owned by owner", "/v1/community/me/owner", ownerToken, 2},
		{"owned by joiner", "/v1/community/me/owner", joinerToken, 1},
		{"joined by joiner", "/v1/community/me/member", joinerToken, 2},
		{"joined by owner", "/v1/community/me/member", ownerToken, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodGet, tt.path, tt.token, nil)
			if code != http.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if got := len(decodeData[[]communityDTO](t, env)); got != tt.want {
				t.Errorf("len = %d, expected %d", got, tt.want)
			}
			var meta struct{ Total, Pages, Page int }
			_ = json.Unmarshal(env.Content.Meta, &meta)
			if meta.Total != tt.want || meta.Pages != 1 || meta.Page != 1 {
				t.Errorf("meta = %+v", meta)
			}
		})
	}

	code, env = s.do(http.MethodGet, "/v1/community/me/member", "", nil)
	expectError(t, code, env, http.StatusUnauthorized, "NOT_AUTHENTICATED")
}

func TestAddMember(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.signup("Owner", "owner@x.com")
	adminID, adminToken := s.signup("Admin", "admin@x.com")
	plainID, plainToken := s.signup("Plain", "plain@x.com")
	otherID, _ := s.signup("Other", "other@x.com")
	c := s.createCommunity(ownerToken, "Test Group")
	adminRole := s.roleID("Community Admin")
	memberRole := s.roleID("Community Member")

	add := func(token, user, role string) (int, envelope) {
		return s.do(http.MethodPost, "/v1/member", token, map[string]string{
			"community": c.ID, "user": user, "role": role,
		})
	}

	if code, env := add(ownerToken, adminID, adminRole); code != http.StatusCreated {
		t.Fatalf("owner adds admin: status = %d, errors = %+v", code, env.Errors)
	}
	if code, env := add(adminToken, plainID, memberRole); code != http.StatusCreated {
		t.Fatalf("admin adds member: status = %d, errors = %+v", code, env.Errors)
	}

	tests := []struct {
		name       string
		token      string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{"anonymous", "", map[string]string{"community": c.ID, "user": otherID, "role": memberRole}, 401, "NOT_AUTHENTICATED"},
		{"missing fields", ownerToken, map[string]string{"community": c.ID}, 400, "INVALID_INPUT"},
		{"unknown community", ownerToken, map[string]string{"community": "nope", "user": otherID, "role": memberRole}, 404, "RESOURCE_NOT_FOUND"},
		{"plain member", plainToken, map[string]string{"community": c.ID, "user": otherID, "role": memberRole}, 403, "NOT_AUTHORIZED"},
		{"unknown user", ownerToken, map[string]string{"community": c.ID, "user": "ghost", "role": memberRole}, 404, "RESOURCE_NOT_FOUND"},
		{"unknown role", ownerToken, map[string]string{"community": c.ID, "user": otherID, "role": "ghost"}, 404, "RESOURCE_NOT_FOUND"},
		{"duplicate same role", ownerToken, map[string]string{"community": c.ID, "user": plainID, "role": memberRole}, 400, "RESOURCE_EXISTS"},
		{"duplicate other role", ownerToken, map[string]string{"community": c.ID, "user": plainID, "role": adminRole}, 400, "RESOURCE_EXISTS"},
		// 403 is decided before the user lookup
		{"plain member unknown user", plainToken, map[string]string{"community": c.ID, "user": "ghost", "role": memberRole}, 403, "NOT_AUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, "/v1/member", tt.token, tt.body)
			expectError(t, code, env, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestRemoveMember(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.signup("Owner", "owner@x.com")
	plainID, plainToken := s.signup("Plain", "plain@x.com")
	c := s.createCommunity(ownerToken, "Test Group")

	code, env := s.do(http.MethodPost, "/v1/member", ownerToken, map[string]string{
		"community": c.ID, "user": plainID, "role": s.roleID("Community Member"),
	})
	if code != http.StatusCreated {
		t.Fatalf("add: status = %d", code)
	}
	type member struct{ ID string }
	memberID := decodeData[member](t, env).ID

	code, env = s.do(http.MethodDelete, "/v1/member/"+memberID, "", nil)
	expectError(t, code, env, http.StatusUnauthorized, "NOT_AUTHENTICATED")

	code, env = s.do(http.MethodDelete, "/v1/member/"+memberID, plainToken, nil)
	expectError(t, code, env, http.StatusForbidden, "NOT_AUTHORIZED")

	code, env = s.do(http.MethodDelete, "/v1/member/missing", ownerToken, nil)
	expectError(t, code, env, http.StatusNotFound, "RESOURCE_NOT_FOUND")

	code, env = s.do(http.MethodDelete, "/v1/member/"+memberID, ownerToken, nil)
	if code != http.StatusOK || !env.Status || env.Content != nil {
		t.Fatalf("remove: status = %d, envelope = %+v", code, env)
	}

	code, env = s.do(http.MethodDelete, "/v1/member/"+memberID, ownerToken, nil)
	expectError(t, code, env, http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

func TestRoles(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/v1/role", "", map[string]string{"name": "Moderator"})
	if code != http.StatusCreated {
		t.Fatalf("create role: status = %d", code)
	}
	if r := decodeData[roleRow](t, env); r.Name != "Moderator" || len(r.Scopes) != 0 {
		t.Errorf("role = %+v", r)
	}

	code, env = s.do(http.MethodPost, "/v1/role", "", map[string]string{"name": "Moderator"})
	expectError(t, code, env, http.StatusBadRequest, "RESOURCE_EXISTS")

	code, env = s.do(http.MethodPost, "/v1/role", "", map[string]string{"name": ""})
	expectError(t, code, env, http.StatusBadRequest, "INVALID_INPUT")

	_, env = s.do(http.MethodGet, "/v1/role", "", nil)
	if got := len(decodeData[[]roleRow](t, env)); got != 3 {
		t.Errorf("roles = %d, expected 3", got)
	}
}

func TestUsers(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.signup("A", "a@x.com")

	code, env := s.do(http.MethodPost, "/users", "", map[string]string{"name": "B", "email": "b@x.com", "password": "plain"})
	if code != http.StatusCreated {
		t.Fatalf("create user: status = %d, errors = %+v", code, env.Errors)
	}
	if bytes.Contains(env.Content.Data, []byte("password")) {
		t.Errorf("user payload leaks the credential: %s", env.Content.Data)
	}

	code, env = s.do(http.MethodPost, "/users", "", map[string]string{"email": "c@x.com", "password": "plain"})
	expectError(t, code, env, http.StatusBadRequest, "INVALID_INPUT")

	_, env = s.do(http.MethodGet, "/users", "", nil)
	if got := len(decodeData[[]profile](t, env)); got != 2 {
		t.Errorf("users = %d, expected 2", got)
	}

	code, env = s.do(http.MethodGet, "/users/"+id, "", nil)
	if code != http.StatusOK || decodeData[profile](t, env).ID != id {
		t.Errorf("get user: status = %d", code)
	}

	code, env = s.do(http.MethodGet, "/users/ghost", "", nil)
	expectError(t, code, env, http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

func TestRouteMiss(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/unknown"},
		{http.MethodPut, "/v1/role"},
	} {
		code, env := s.do(tc.method, tc.path, "", nil)
		expectError(t, code, env, http.StatusNotFound, "NOT_FOUND")
	}
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-id" {
		t.Errorf("X-Request-ID = %q, expected client-id", got)
	}
}
