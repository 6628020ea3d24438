package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"futurisys/attrition-api/internal/models"
)

type PredictionInputRepository interface {
	Create(ctx context.Context, input *models.PredictionInput) error
	FindByID(ctx context.Context, id uint) (*models.PredictionInput, error)
	List(ctx context.Context, params ListParams) ([]models.PredictionInput, error)
	ExistsByMatricule(ctx context.Context, matricule string) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// ListParams pages through inputs in id order. A non-empty Matricule
// restricts the page to that exact identifier.
type ListParams struct {
	Skip      int
	Limit     int
	Matricule string
}

type predictionInputRepository struct {
	db *gorm.DB
}

func NewPredictionInputRepository(db *gorm.DB) PredictionInputRepository {
	return &predictionInputRepository{db: db}
}

func (r *predictionInputRepository) Create(ctx context.Context, input *models.PredictionInput) error {
	if err := r.db.WithContext(ctx).Create(input).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create prediction input: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create prediction input: %w", err)
	}
	return nil
}

func (r *predictionInputRepository) FindByID(ctx context.Context, id uint) (*models.PredictionInput, error) {
	var input models.PredictionInput
	err := r.db.WithContext(ctx).
		Preload("PredictionOutput").
		Where("id = ?", id).
		First(&input).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prediction input %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find prediction input: %w", err)
	}
	return &input, nil
}

func (r *predictionInputRepository) List(ctx context.Context, params ListParams) ([]models.PredictionInput, error) {
	query := r.db.WithContext(ctx).Preload("PredictionOutput")
	if params.Matricule != "" {
		query = query.Where("matricule = ?", params.Matricule)
	}

	inputs := []models.PredictionInput{}
	err := query.
		Order("id ASC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&inputs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prediction inputs: %w", err)
	}
	return inputs, nil
}

func (r *predictionInputRepository) ExistsByMatricule(ctx context.Context, matricule string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PredictionInput{}).
		Where("matricule = ?", matricule).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check matricule: %w", err)
	}
	return count > 0, nil
}

// Delete removes the input and its output in one transaction. The explicit
// output delete keeps the cascade working on stores without foreign keys.
func (r *predictionInputRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prediction_input_id = ?", id).Delete(&models.PredictionOutput{}).Error; err != nil {
			return fmt.Errorf("failed to delete prediction outputs: %w", err)
		}

		result := tx.Delete(&models.PredictionInput{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete prediction input: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("prediction input %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
