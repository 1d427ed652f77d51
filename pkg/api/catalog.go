package api

import "github.com/google/uuid"

type Snake struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Endemism    string    `json:"endemism"`
	WikiLink    string    `json:"wikiLink"`
}

type AddSnakeRequest struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Endemism    string `json:"endemism"`
	WikiLink    string `json:"wikiLink"`
}

// UpdateSnakeRequest is a partial update; omitted fields are left unchanged.
type UpdateSnakeRequest struct {
	Image       *string `json:"image"`
	Description *string `json:"description"`
	Endemism    *string `json:"endemism"`
	WikiLink    *string `json:"wikiLink"`
}

type AddSnakeResponse struct {
	Message string    `json:"message"`
	Id      uuid.UUID `json:"id"`
}

type SearchSnakeResponse struct {
	Snake Snake `json:"snake"`
}

type ListSnakesParams struct {
	Endemism string `schema:"endemism"`
	Limit    int    `schema:"limit"`
	Offset   int    `schema:"offset"`
}

type ListSnakesResponse struct {
	Snakes []Snake `json:"snakes"`
}
