package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"futurisys/attrition-api/internal/models"
)

type PredictionOutputRepository interface {
	Create(ctx context.Context, output *models.PredictionOutput) error
	List(ctx context.Context, skip, limit int) ([]models.PredictionOutput, error)
	FindByInputID(ctx context.Context, inputID uint) (*models.PredictionOutput, error)
}

type predictionOutputRepository struct {
	db *gorm.DB
}

func NewPredictionOutputRepository(db *gorm.DB) PredictionOutputRepository {
	return &predictionOutputRepository{db: db}
}

func (r *predictionOutputRepository) Create(ctx context.Context, output *models.PredictionOutput) error {
	if err := r.db.WithContext(ctx).Create(output).Error; err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("prediction input %d: %w", output.PredictionInputID, ErrNotFound)
		}
		return fmt.Errorf("failed to create prediction output: %w", err)
	}
	return nil
}

func (r *predictionOutputRepository) List(ctx context.Context, skip, limit int) ([]models.PredictionOutput, error) {
	outputs := []models.PredictionOutput{}
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&outputs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prediction outputs: %w", err)
	}
	return outputs, nil
}

func (r *predictionOutputRepository) FindByInputID(ctx context.Context, inputID uint) (*models.PredictionOutput, error) {
	var output models.PredictionOutput
	err := r.db.WithContext(ctx).
		Where("prediction_input_id = ?", inputID).
		First(&output).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prediction output for input %d: %w", inputID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find prediction output: %w", err)
	}
	return &output, nil
}
