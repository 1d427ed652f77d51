package api

import (
	"errors"
	"net/http"

	"snake-backend/internal/auth"
	"snake-backend/internal/database"
	"snake-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type AccountService struct {
	db      *gorm.DB
	history *database.HistoryStore
	tokens  *auth.TokenManager
}

func NewAccountService(db *gorm.DB, tokens *auth.TokenManager) *AccountService {
	return &AccountService{db: db, history: database.NewHistoryStore(db), tokens: tokens}
}

func (s *AccountService) AddRoutes(r chi.Router) {
	r.Post("/register", RestHandler(s.Register))
	r.Post("/login", RestHandler(s.Login))
	r.Route("/account", func(r chi.Router) {
		r.Use(s.tokens.RequireIdentity)
		r.Get("/predictions", RestHandler(s.RecentPredictions))
		r.Put("/changepassword", RestHandler(s.ChangePassword))
	})
}

func (s *AccountService) Register(r *http.Request) (any, error) {
	req, err := ParseRequest[api.CredentialsRequest](r)
	if err != nil {
		return nil, err
	}

	if req.Email == "" || req.Password == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "Email and password are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	if _, err := database.CreateUser(r.Context(), s.db, req.Email, hash); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, CodedErrorf(http.StatusBadRequest, "Email is already registered")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to register user: %v", err)
	}

	return WithStatus(http.StatusCreated, api.MessageResponse{Message: "User registered successfully"}), nil
}

func (s *AccountService) Login(r *http.Request) (any, error) {
	req, err := ParseRequest[api.CredentialsRequest](r)
	if err != nil {
		return nil, err
	}

	if req.Email == "" || req.Password == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "Email and password are required")
	}

	user, err := database.FindUserByEmail(r.Context(), s.db, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, CodedErrorf(http.StatusUnauthorized, "Invalid credentials")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to load user: %v", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, CodedErrorf(http.StatusUnauthorized, "Invalid credentials")
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	token, err := s.tokens.Issue(user.Id)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.LoginResponse{Token: token, UserId: user.Id}, nil
}

func (s *AccountService) RecentPredictions(r *http.Request) (any, error) {
	userId, _ := auth.IdentityFromContext(r.Context()).UserId()

	records, err := s.history.ListPredictions(r.Context(), userId)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "User not found")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to load predictions: %v", err)
	}

	items := make([]api.PredictionHistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, api.PredictionHistoryItem{
			Snake:     record.Snake,
			Accuracy:  record.Accuracy,
			Timestamp: record.Timestamp.UTC(),
		})
	}

	return api.RecentPredictionsResponse{RecentPredictions: items}, nil
}

func (s *AccountService) ChangePassword(r *http.Request) (any, error) {
	userId, _ := auth.IdentityFromContext(r.Context()).UserId()

	req, err := ParseRequest[api.ChangePasswordRequest](r)
	if err != nil {
		return nil, err
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "Old password and new password are required")
	}

	user, err := s.history.FindUser(r.Context(), userId)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "User not found")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to load user: %v", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.OldPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, CodedErrorf(http.StatusUnauthorized, "Invalid credentials")
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	if err := database.UpdatePasswordHash(r.Context(), s.db, userId, hash); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "User not found")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to update password: %v", err)
	}

	return api.MessageResponse{Message: "Password updated successfully"}, nil
}
