package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"datashare-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testRouter() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/register", testServer.RegisterHandler)
		r.Post("/users/login", testServer.LoginHandler)
		r.Get("/users/{id}", testServer.GetUserHandler)
		r.Post("/files/upload", testServer.UploadFileHandler)
		r.Get("/files/download/{id}", testServer.DownloadFileHandler)
		r.Get("/files/{id}", testServer.GetFileInfoHandler)
		r.Get("/files/user/{userId}", testServer.ListUserFilesHandler)
		r.Delete("/files/{id}", testServer.DeleteFileHandler)
	})
	return r
}

func doJSON(t *testing.T, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)
	return rr
}

func uniqueEmail(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8])
}

func registerTestUser(t *testing.T, email, password, login string) *models.User {
	t.Helper()
	rr := doJSON(t, "POST", "/api/v1/users/register", RegisterRequest{
		Email:    email,
		Password: password,
		Login:    login,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	return &user
}

func TestRegisterHandler_Success(t *testing.T) {
	email := uniqueEmail(t)
	login := "reg" + uuid.NewString()[:5]

	user := registerTestUser(t, email, "Abc12345!", login)

	require.NotZero(t, user.ID)
	require.Equal(t, email, user.Email)
	require.Equal(t, login, *user.Login)
	require.NotEmpty(t, user.PasswordHash, "register echoes the full row, digest included")
	require.NotEqual(t, "Abc12345!", user.PasswordHash)
	require.False(t, user.CreatedAt.IsZero())
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/users/register", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterHandler_ValidationFailure(t *testing.T) {
	rr := doJSON(t, "POST", "/api/v1/users/register", RegisterRequest{
		Email:    "not-an-email",
		Password: "Abc12345!",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "invalid email format", resp.Message)
}

func TestRegisterHandler_EmailConflict(t *testing.T) {
	email := uniqueEmail(t)
	registerTestUser(t, email, "Abc12345!", "dup"+uuid.NewString()[:5])

	// Same email, different login.
	rr := doJSON(t, "POST", "/api/v1/users/register", RegisterRequest{
		Email:    email,
		Password: "X9$aaaaaB",
		Login:    "oth" + uuid.NewString()[:5],
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "this email is already in use", resp.Message)
}

func TestRegisterHandler_LoginConflict(t *testing.T) {
	login := "taken" + uuid.NewString()[:5]
	registerTestUser(t, uniqueEmail(t), "Abc12345!", login)

	rr := doJSON(t, "POST", "/api/v1/users/register", RegisterRequest{
		Email:    uniqueEmail(t),
		Password: "Abc12345!",
		Login:    login,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "this login is already in use", resp.Message)
}

func TestLoginHandler_MissingFields(t *testing.T) {
	rr := doJSON(t, "POST", "/api/v1/users/login", LoginRequest{Email: "", Password: ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "email and password are required", resp.Message)
}

func TestLoginHandler_UnknownEmail(t *testing.T) {
	rr := doJSON(t, "POST", "/api/v1/users/login", LoginRequest{
		Email:    "ghost_" + uniqueEmail(t),
		Password: "Abc12345!",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "email not found", resp.Message)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	email := uniqueEmail(t)
	registerTestUser(t, email, "Abc12345!", "")

	rr := doJSON(t, "POST", "/api/v1/users/login", LoginRequest{
		Email:    email,
		Password: "Wrong999!",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "password incorrect", resp.Message)
}

func TestLoginHandler_Success(t *testing.T) {
	email := uniqueEmail(t)
	created := registerTestUser(t, email, "Abc12345!", "log"+uuid.NewString()[:5])

	rr := doJSON(t, "POST", "/api/v1/users/login", LoginRequest{
		Email:    email,
		Password: "Abc12345!",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, created.ID, resp.UserID)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, 2, strings.Count(resp.Token, "."), "token must be a compact JWS")

	claims, err := testServer.tokens.Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, created.ID, claims.UserID)
	require.Equal(t, email, claims.Email)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "jwt_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the jwt_token cookie")
	require.Equal(t, resp.Token, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.False(t, cookie.Expires.IsZero())
}

func TestGetUserHandler(t *testing.T) {
	email := uniqueEmail(t)
	created := registerTestUser(t, email, "Abc12345!", "")

	rr := doJSON(t, "GET", fmt.Sprintf("/api/v1/users/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	require.Equal(t, email, user.Email)

	rr = doJSON(t, "GET", "/api/v1/users/999999", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
