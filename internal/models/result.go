package models

import "time"

// PredictionResult is returned by a successful prediction.
type PredictionResult struct {
	Input  *PredictionInput  `json:"input"`
	Output *PredictionOutput `json:"output"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
