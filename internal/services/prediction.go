package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"futurisys/attrition-api/internal/metrics"
	"futurisys/attrition-api/internal/ml"
	"futurisys/attrition-api/internal/models"
	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/repositories"
)

// DecisionThreshold turns the positive class probability into the stored label.
const DecisionThreshold = 0.5

var (
	ErrStorage = errors.New("storage error")
	ErrModel   = errors.New("model error")
)

// ConflictError reports a matricule that is already stored.
type ConflictError struct {
	Matricule string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an employee with matricule %q already exists", e.Matricule)
}

func (e *ConflictError) Unwrap() error {
	return repositories.ErrConflict
}

// ApplyThreshold returns 1 when probability reaches DecisionThreshold.
func ApplyThreshold(probability float64) int {
	if probability >= DecisionThreshold {
		return 1
	}
	return 0
}

type PredictionService interface {
	Predict(ctx context.Context, raw map[string]any) (*models.PredictionResult, error)
	List(ctx context.Context, params repositories.ListParams) ([]models.PredictionInput, error)
	Get(ctx context.Context, id uint) (*models.PredictionInput, error)
	Delete(ctx context.Context, id uint) error
	ListOutputs(ctx context.Context, skip, limit int) ([]models.PredictionOutput, error)
}

type predictionService struct {
	inputs     repositories.PredictionInputRepository
	outputs    repositories.PredictionOutputRepository
	classifier ml.Classifier
	metrics    *metrics.Recorder
	logger     *zap.Logger
}

func NewPredictionService(
	inputs repositories.PredictionInputRepository,
	outputs repositories.PredictionOutputRepository,
	classifier ml.Classifier,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) PredictionService {
	return &predictionService{
		inputs:     inputs,
		outputs:    outputs,
		classifier: classifier,
		metrics:    recorder,
		logger:     logger.Named("predictions"),
	}
}

// Predict validates raw, stores it, classifies it and stores the result.
// The input row is committed before inference and is kept if the model or
// the output write fails afterwards.
func (s *predictionService) Predict(ctx context.Context, raw map[string]any) (*models.PredictionResult, error) {
	employee, err := records.Decode(raw)
	if err != nil {
		s.metrics.RecordPrediction(metrics.OutcomeInvalid)
		return nil, err
	}

	if employee.Matricule != "" {
		exists, err := s.inputs.ExistsByMatricule(ctx, employee.Matricule)
		if err != nil {
			s.metrics.RecordPrediction(metrics.OutcomeStorageErr)
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if exists {
			s.metrics.RecordPrediction(metrics.OutcomeConflict)
			return nil, &ConflictError{Matricule: employee.Matricule}
		}
	}

	input := models.NewPredictionInput(employee)
	if err := s.inputs.Create(ctx, input); err != nil {
		// A concurrent request can pass the pre-check; the unique index decides.
		if errors.Is(err, repositories.ErrConflict) {
			s.metrics.RecordPrediction(metrics.OutcomeConflict)
			return nil, &ConflictError{Matricule: employee.Matricule}
		}
		s.metrics.RecordPrediction(metrics.OutcomeStorageErr)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	start := time.Now()
	prediction, err := s.classifier.Predict(ctx, employee.Features())
	s.metrics.ObserveInference(time.Since(start))
	if err == nil && (math.IsNaN(prediction.Probability) || prediction.Probability < 0 || prediction.Probability > 1) {
		err = fmt.Errorf("probability %v outside [0,1]", prediction.Probability)
	}
	if err != nil {
		s.logger.Warn("Inference failed, stored input kept without output",
			zap.Uint("input_id", input.ID), zap.Error(err))
		s.metrics.RecordPrediction(metrics.OutcomeModelErr)
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}

	label := ApplyThreshold(prediction.Probability)
	if label != prediction.Label {
		s.logger.Info("Model label differs from threshold label, keeping threshold label",
			zap.Uint("input_id", input.ID),
			zap.Int("model_label", prediction.Label),
			zap.Int("label", label),
			zap.Float64("probability", prediction.Probability))
	}

	output := &models.PredictionOutput{
		PredictionInputID: input.ID,
		Prediction:        label,
		Probability:       prediction.Probability,
		Threshold:         DecisionThreshold,
	}
	if err := s.outputs.Create(ctx, output); err != nil {
		s.logger.Warn("Output write failed, stored input kept without output",
			zap.Uint("input_id", input.ID), zap.Error(err))
		s.metrics.RecordPrediction(metrics.OutcomeStorageErr)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.metrics.RecordPrediction(metrics.OutcomeSuccess)
	s.logger.Debug("Prediction stored",
		zap.Uint("input_id", input.ID),
		zap.Uint("output_id", output.ID),
		zap.Int("prediction", label))

	return &models.PredictionResult{Input: input, Output: output}, nil
}

func (s *predictionService) List(ctx context.Context, params repositories.ListParams) ([]models.PredictionInput, error) {
	inputs, err := s.inputs.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return inputs, nil
}

func (s *predictionService) Get(ctx context.Context, id uint) (*models.PredictionInput, error) {
	input, err := s.inputs.FindByID(ctx, id)
	if err != nil {
		return nil, storageUnlessNotFound(err)
	}
	return input, nil
}

func (s *predictionService) Delete(ctx context.Context, id uint) error {
	if err := s.inputs.Delete(ctx, id); err != nil {
		return storageUnlessNotFound(err)
	}
	s.logger.Info("Prediction deleted", zap.Uint("input_id", id))
	return nil
}

func (s *predictionService) ListOutputs(ctx context.Context, skip, limit int) ([]models.PredictionOutput, error) {
	outputs, err := s.outputs.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return outputs, nil
}

func storageUnlessNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
