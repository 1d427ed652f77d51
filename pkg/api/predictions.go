package api

import "time"

type PredictResponse struct {
	Snake    string  `json:"snake"`
	Accuracy float64 `json:"accuracy"`
}

type PredictionHistoryItem struct {
	Snake     string    `json:"snake"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

type RecentPredictionsResponse struct {
	RecentPredictions []PredictionHistoryItem `json:"recent_predictions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
