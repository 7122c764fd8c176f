package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"
	"unicode"

	"datashare-backend/internal/auth"
	"datashare-backend/internal/database"

	"github.com/go-chi/chi/v5"
)

var (
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]{3,}@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	loginRegex = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)
)

type RegisterRequest struct {
	Email     string `json:"email" example:"alice@example.com"`
	Password  string `json:"password" example:"Abc12345!"`
	Login     string `json:"login,omitempty" example:"alice"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Picture   string `json:"picture,omitempty"`
}

// validateRegistration applies the format rules in order; the first
// failure wins. Uniqueness is not checked here, the login lookup and the
// database unique indexes handle that.
func validateRegistration(req *RegisterRequest) error {
	if !emailRegex.MatchString(req.Email) {
		return errors.New("invalid email format")
	}
	if req.Login != "" && !loginRegex.MatchString(req.Login) {
		return errors.New("login must be 3 to 20 alphanumeric characters")
	}
	if req.Password == "" {
		return errors.New("password is required")
	}
	if !passwordStrongEnough(req.Password) {
		return errors.New("password must be at least 8 characters with a lowercase, an uppercase, a digit and a symbol")
	}
	return nil
}

// RE2 has no lookaheads, so the character classes are counted directly.
func passwordStrongEnough(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// @Summary      Register a new user
// @Description  Validates the registration data and creates the user. Email and login must be unique.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Registration data"
// @Success      201  {object}  models.User
// @Failure      400  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /users/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateRegistration(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Login != "" {
		taken, err := s.store.LoginTaken(r.Context(), req.Login)
		if err != nil {
			log.Printf("ERROR: login lookup failed: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		if taken {
			respondError(w, http.StatusBadRequest, database.ErrLoginTaken.Error())
			return
		}
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:        req.Email,
		Login:        optional(req.Login),
		FirstName:    optional(req.FirstName),
		LastName:     optional(req.LastName),
		Picture:      optional(req.Picture),
		PasswordHash: auth.HashPassword(req.Password),
	})
	if err != nil {
		// A concurrent duplicate insert lands here via the unique
		// indexes; the pre-check above cannot catch that race.
		if errors.Is(err, database.ErrEmailTaken) || errors.Is(err, database.ErrLoginTaken) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: failed to create user: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"Abc12345!"`
}

type LoginResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
	Token   string `json:"token"`
}

// @Summary      Log a user in
// @Description  Verifies the credentials, sets the jwt_token cookie and returns the token in the body.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /users/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("ERROR: user lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	// Distinct messages for unknown email and wrong password, both 400.
	// Clients rely on the exact wording.
	if user == nil {
		respondError(w, http.StatusBadRequest, "email not found")
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(w, http.StatusBadRequest, "password incorrect")
		return
	}

	token, err := s.tokens.Issue(user, nil)
	if err != nil {
		log.Printf("ERROR: failed to issue token for user %d: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().AddDate(0, 0, s.tokens.ExpirationDays()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, LoginResponse{
		Message: "email and password verified",
		UserID:  user.ID,
		Token:   token,
	})
}

// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.User
// @Failure      404  {object}  MessageResponse
// @Router       /users/{id} [get]
func (s *Server) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: user lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
