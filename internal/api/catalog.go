package api

import (
	"errors"
	"net/http"
	"strings"

	"snake-backend/internal/database"
	"snake-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) AddRoutes(r chi.Router) {
	r.Post("/addsnake", RestHandler(s.AddSnake))
	r.Put("/updatesnake/{name}", RestHandler(s.UpdateSnake))
	r.Delete("/deletesnake/{name}", RestHandler(s.DeleteSnake))
	r.Get("/searchsnake/{name}", RestHandler(s.SearchSnake))
	r.Get("/snakes", RestHandler(s.ListSnakes))
}

func convertSnake(s database.Snake) api.Snake {
	return api.Snake{
		Id:          s.Id,
		Name:        s.Name,
		Image:       s.Image,
		Description: s.Description,
		Endemism:    s.Endemism,
		WikiLink:    s.WikiLink,
	}
}

func (s *CatalogService) AddSnake(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AddSnakeRequest](r)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "No data provided")
	}

	snake, err := database.CreateSnake(r.Context(), s.db, database.Snake{
		Name:        name,
		Image:       req.Image,
		Description: req.Description,
		Endemism:    req.Endemism,
		WikiLink:    req.WikiLink,
	})
	if err != nil {
		if errors.Is(err, database.ErrSnakeExists) {
			return nil, CodedErrorf(http.StatusConflict, "Snake '%s' already exists", name)
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to add snake: %v", err)
	}

	return api.AddSnakeResponse{Message: "Snake added successfully", Id: snake.Id}, nil
}

func (s *CatalogService) UpdateSnake(r *http.Request) (any, error) {
	name, err := URLParamName(r, "name")
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.UpdateSnakeRequest](r)
	if err != nil {
		return nil, err
	}

	update := database.SnakeUpdate{
		Image:       req.Image,
		Description: req.Description,
		Endemism:    req.Endemism,
		WikiLink:    req.WikiLink,
	}
	if update == (database.SnakeUpdate{}) {
		return nil, CodedErrorf(http.StatusBadRequest, "No data provided")
	}

	if err := database.UpdateSnake(r.Context(), s.db, name, update); err != nil {
		if errors.Is(err, database.ErrSnakeNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "Snake '%s' not found", name)
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to update snake: %v", err)
	}

	return api.MessageResponse{Message: "Snake '" + name + "' updated successfully"}, nil
}

func (s *CatalogService) DeleteSnake(r *http.Request) (any, error) {
	name, err := URLParamName(r, "name")
	if err != nil {
		return nil, err
	}

	if err := database.DeleteSnake(r.Context(), s.db, name); err != nil {
		if errors.Is(err, database.ErrSnakeNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "Snake '%s' not found", name)
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to delete snake: %v", err)
	}

	return api.MessageResponse{Message: "Snake '" + name + "' deleted successfully"}, nil
}

func (s *CatalogService) SearchSnake(r *http.Request) (any, error) {
	name, err := URLParamName(r, "name")
	if err != nil {
		return nil, err
	}

	snake, err := database.FindSnakeByName(r.Context(), s.db, name)
	if err != nil {
		if errors.Is(err, database.ErrSnakeNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "Snake not found.")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to search snake: %v", err)
	}

	return api.SearchSnakeResponse{Snake: convertSnake(snake)}, nil
}

func (s *CatalogService) ListSnakes(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.ListSnakesParams](r)
	if err != nil {
		return nil, err
	}

	if params.Limit < 0 || params.Offset < 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "limit and offset must not be negative")
	}

	snakes, err := database.ListSnakes(r.Context(), s.db, database.SnakeFilter{
		Endemism: params.Endemism,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to list snakes: %v", err)
	}

	results := make([]api.Snake, 0, len(snakes))
	for _, snake := range snakes {
		results = append(results, convertSnake(snake))
	}

	return api.ListSnakesResponse{Snakes: results}, nil
}
