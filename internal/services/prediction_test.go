package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"futurisys/attrition-api/internal/ml"
	"futurisys/attrition-api/internal/models"
	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/repositories"
)

type stubClassifier struct {
	mu          sync.Mutex
	probability float64
	label       int
	err         error
	calls       int
	last        ml.FeatureVector
}

func (s *stubClassifier) Predict(ctx context.Context, features ml.FeatureVector) (ml.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = features
	if s.err != nil {
		return ml.Prediction{}, s.err
	}
	return ml.Prediction{Label: s.label, Probability: s.probability}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	db         *gorm.DB
	classifier *stubClassifier
	service    PredictionService
}

func newFixture(t *testing.T, classifier *stubClassifier) *fixture {
	t.Helper()
	db := newTestDB(t)
	return &fixture{
		db:         db,
		classifier: classifier,
		service: NewPredictionService(
			repositories.NewPredictionInputRepository(db),
			repositories.NewPredictionOutputRepository(db),
			classifier,
			nil,
			zaptest.NewLogger(t),
		),
	}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func sampleInput(matricule string) map[string]any {
	raw := map[string]any{
		"age":                                       41,
		"genre":                                     "F",
		"revenu_mensuel":                            5993,
		"statut_marital":                            "Célibataire",
		"departement":                               "Commercial",
		"poste":                                     "Cadre Commercial",
		"nombre_experiences_precedentes":            8,
		"annee_experience_totale":                   8,
		"annees_dans_l_entreprise":                  6,
		"annees_dans_le_poste_actuel":               4,
		"satisfaction_employee_environnement":       2,
		"niveau_hierarchique_poste":                 2,
		"satisfaction_employee_nature_travail":      4,
		"satisfaction_employee_equipe":              2,
		"satisfaction_employee_equilibre_pro_perso": 4,
		"note_evaluation_actuelle":                  3,
		"heure_supplementaires":                     "Oui",
		"augmentation_salaire_precedente":           0.11,
		"nombre_participation_pee":                  0,
		"nb_formations_suivies":                     0,
		"distance_domicile_travail":                 1,
		"niveau_education":                          2,
		"domaine_etude":                             "Infra & Cloud",
		"frequence_deplacement":                     "Occasionnel",
		"annees_depuis_la_derniere_promotion":       0,
		"annes_sous_responsable_actuel":             5,
		"mobilite_interne_ratio":                    0.666667,
		"ratio_anciennete":                          0.428571,
		"delta_evaluation":                          0,
	}
	if matricule != "" {
		raw["matricule"] = matricule
	}
	return raw
}

func TestPredict_ThresholdIsAuthoritative(t *testing.T) {
	f := newFixture(t, &stubClassifier{probability: 0.7, label: 0})

	result, err := f.service.Predict(context.Background(), sampleInput("M12345"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Output.Prediction)
	assert.Equal(t, 0.7, result.Output.Probability)
	assert.Equal(t, 0.5, result.Output.Threshold)
	assert.Equal(t, result.Input.ID, result.Output.PredictionInputID)
	assert.NotZero(t, result.Input.ID)
	assert.Equal(t, "M12345", *result.Input.Matricule)

	assert.Len(t, f.classifier.last, len(records.FeatureOrder))
	_, hasMatricule := f.classifier.last.Lookup(records.FieldMatricule)
	assert.False(t, hasMatricule)
}

func TestApplyThreshold(t *testing.T) {
	assert.Equal(t, 0, ApplyThreshold(0.4999))
	assert.Equal(t, 1, ApplyThreshold(0.5))
	assert.Equal(t, 1, ApplyThreshold(1))
}

func TestPredict_ValidationPersistsNothing(t *testing.T) {
	f := newFixture(t, &stubClassifier{probability: 0.2})

	raw := sampleInput("M1")
	raw["age"] = 17
	_, err := f.service.Predict(context.Background(), raw)

	var verr *records.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("age", records.KindOutOfBounds))
	assert.Zero(t, f.count(t, &models.PredictionInput{}))
	assert.Zero(t, f.classifier.calls)
}

func TestPredict_DuplicateMatricule(t *testing.T) {
	f := newFixture(t, &stubClassifier{probability: 0.2})
	ctx := context.Background()

	_, err := f.service.Predict(ctx, sampleInput("M1"))
	require.NoError(t, err)

	_, err = f.service.Predict(ctx, sampleInput("M1"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, repositories.ErrConflict)
	assert.Contains(t, err.Error(), `"M1"`)
	assert.Equal(t, int64(1), f.count(t, &models.PredictionInput{}))

	t.Run("records without matricule always succeed", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := f.service.Predict(ctx, sampleInput(""))
			require.NoError(t, err)
		}
		assert.Equal(t, int64(4), f.count(t, &models.PredictionInput{}))
	})
}

func TestPredict_ModelFailureKeepsInput(t *testing.T) {
	f := newFixture(t, &stubClassifier{err: fmt.Errorf("%w: missing column", ml.ErrFeatureMismatch)})

	_, err := f.service.Predict(context.Background(), sampleInput("M9"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModel)
	assert.ErrorIs(t, err, ml.ErrFeatureMismatch)

	assert.Equal(t, int64(1), f.count(t, &models.PredictionInput{}))
	assert.Zero(t, f.count(t, &models.PredictionOutput{}))
}

func TestPredict_InvalidProbabilityIsModelError(t *testing.T) {
	f := newFixture(t, &stubClassifier{probability: 1.5, label: 1})

	_, err := f.service.Predict(context.Background(), sampleInput(""))
	assert.ErrorIs(t, err, ErrModel)
}

func TestPredict_StorageFailure(t *testing.T) {
	f := newFixture(t, &stubClassifier{probability: 0.2})
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.service.Predict(context.Background(), sampleInput(""))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Zero(t, f.classifier.calls)
}

func TestPredictionService_ReadAndDelete(t *testing.T) {
	f := newFixture(t, &stubClassifier{probability: 0.3})
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		result, err := f.service.Predict(ctx, sampleInput(fmt.Sprintf("M%d", i)))
		require.NoError(t, err)
		ids = append(ids, result.Input.ID)
	}

	page, err := f.service.List(ctx, repositories.ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = f.service.List(ctx, repositories.ListParams{Skip: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[2], page[0].ID)
	require.NotNil(t, page[0].PredictionOutput)
	assert.Equal(t, 0, page[0].PredictionOutput.Prediction)

	input, err := f.service.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "M0", *input.Matricule)

	outputs, err := f.service.ListOutputs(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, outputs, 3)

	require.NoError(t, f.service.Delete(ctx, ids[0]))
	assert.ErrorIs(t, f.service.Delete(ctx, ids[0]), repositories.ErrNotFound)

	_, err = f.service.Get(ctx, ids[0])
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.False(t, errors.Is(err, ErrStorage))
	assert.Equal(t, int64(2), f.count(t, &models.PredictionOutput{}))
}
