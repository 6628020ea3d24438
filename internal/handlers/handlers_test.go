package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"futurisys/attrition-api/internal/metrics"
	"futurisys/attrition-api/internal/models"
	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/repositories"
	"futurisys/attrition-api/internal/services"
)

// fakeService keeps predictions in memory and scores every record 0.7.
type fakeService struct {
	mu       sync.Mutex
	inputs   map[uint]*models.PredictionInput
	nextID   uint
	lastList repositories.ListParams
	err      error
	block    bool
}

func newFakeService() *fakeService {
	return &fakeService{inputs: make(map[uint]*models.PredictionInput)}
}

func (f *fakeService) Predict(ctx context.Context, raw map[string]any) (*models.PredictionResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	employee, err := records.Decode(raw)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, in := range f.inputs {
		if in.Matricule != nil && *in.Matricule == employee.Matricule {
			return nil, &services.ConflictError{Matricule: employee.Matricule}
		}
	}
	f.nextID++
	input := models.NewPredictionInput(employee)
	input.ID = f.nextID
	output := &models.PredictionOutput{
		ID:                f.nextID,
		PredictionInputID: input.ID,
		Prediction:        services.ApplyThreshold(0.7),
		Probability:       0.7,
		Threshold:         services.DecisionThreshold,
	}
	input.PredictionOutput = output
	f.inputs[input.ID] = input
	return &models.PredictionResult{Input: input, Output: output}, nil
}

func (f *fakeService) List(_ context.Context, params repositories.ListParams) ([]models.PredictionInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = params
	if f.err != nil {
		return nil, f.err
	}
	out := []models.PredictionInput{}
	for id := uint(1); id <= f.nextID; id++ {
		if in, ok := f.inputs[id]; ok {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (f *fakeService) Get(_ context.Context, id uint) (*models.PredictionInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.inputs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return in, nil
}

func (f *fakeService) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.inputs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.inputs, id)
	return nil
}

func (f *fakeService) ListOutputs(_ context.Context, _, _ int) ([]models.PredictionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PredictionOutput{}
	for id := uint(1); id <= f.nextID; id++ {
		if in, ok := f.inputs[id]; ok {
			out = append(out, *in.PredictionOutput)
		}
	}
	return out, nil
}

type fakeERD struct{}

func (fakeERD) Generate(context.Context) (string, error) {
	return "# Entity relationship diagram\n", nil
}

type testApp struct {
	app     *fiber.App
	service *fakeService
}

func newTestApp(t *testing.T, configure func(r *Routes)) *testApp {
	t.Helper()
	svc := newFakeService()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zaptest.NewLogger(t))})
	routes := Routes{
		Predictions: NewPredictionHandler(svc),
		Meta:        NewMetaHandler("Futurisys Attrition API", "v1.2.0", fakeERD{}),
		UI:          NewUIHandler(svc, "v1.2.0"),
		Metrics:     metrics.NewRecorder(),
		CORSOrigins: "*",
	}
	if configure != nil {
		configure(&routes)
	}
	SetupRoutes(app, routes)
	return &testApp{app: app, service: svc}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body
}

func sampleBody(matricule string) map[string]any {
	body := map[string]any{
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
		body["matricule"] = matricule
	}
	return body
}

func TestCreatePrediction(t *testing.T) {
	a := newTestApp(t, nil)

	resp, data := a.do(t, http.MethodPost, "/v1/predictions", sampleBody("M1"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(data))

	var result models.PredictionResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, uint(1), result.Input.ID)
	require.NotNil(t, result.Input.Matricule)
	assert.Equal(t, "M1", *result.Input.Matricule)
	assert.Equal(t, 1, result.Output.Prediction)
	assert.Equal(t, 0.7, result.Output.Probability)
	assert.Equal(t, result.Input.ID, result.Output.PredictionInputID)
}

func TestCreatePrediction_Rejections(t *testing.T) {
	a := newTestApp(t, nil)

	t.Run("invalid json", func(t *testing.T) {
		resp, data := a.do(t, http.MethodPost, "/v1/predictions", `{"age": `)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		body := decodeError(t, data)
		assert.Contains(t, body.Detail, "invalid JSON body")
		assert.Equal(t, fiber.StatusUnprocessableEntity, body.Code)
	})

	t.Run("array body", func(t *testing.T) {
		resp, _ := a.do(t, http.MethodPost, "/v1/predictions", `[1, 2]`)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("validation errors are enumerated", func(t *testing.T) {
		body := sampleBody("")
		delete(body, "age")
		body["genre"] = "X"
		resp, data := a.do(t, http.MethodPost, "/v1/predictions", body)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

		errBody := decodeError(t, data)
		assert.Equal(t, "validation failed", errBody.Detail)
		require.Len(t, errBody.Errors, 2)
		kinds := map[string]records.ViolationKind{}
		for _, v := range errBody.Errors {
			kinds[v.Field] = v.Kind
		}
		assert.Equal(t, records.KindMissing, kinds["age"])
		assert.Equal(t, records.KindInvalidEnum, kinds["genre"])
	})

	t.Run("duplicate matricule", func(t *testing.T) {
		resp, _ := a.do(t, http.MethodPost, "/v1/predictions", sampleBody("DUP"))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp, data := a.do(t, http.MethodPost, "/v1/predictions", sampleBody("DUP"))
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Contains(t, decodeError(t, data).Detail, `"DUP"`)
	})
}

func TestCreatePrediction_ServerErrorsHideDetails(t *testing.T) {
	a := newTestApp(t, nil)
	a.service.err = errors.Join(services.ErrStorage, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	resp, data := a.do(t, http.MethodPost, "/v1/predictions", sampleBody(""))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "storage is unavailable", body.Detail)
	assert.NotContains(t, string(data), "10.0.0.1")
}

func TestCreatePrediction_Timeout(t *testing.T) {
	a := newTestApp(t, func(r *Routes) { r.RequestTimeout = 20 * time.Millisecond })
	a.service.block = true

	resp, data := a.do(t, http.MethodPost, "/v1/predictions", sampleBody(""))
	assert.Equal(t, fiber.StatusRequestTimeout, resp.StatusCode, string(data))
}

func TestGetAndDeletePrediction(t *testing.T) {
	a := newTestApp(t, nil)
	resp, _ := a.do(t, http.MethodPost, "/v1/predictions", sampleBody("M7"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, data := a.do(t, http.MethodGet, "/v1/predictions/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var input models.PredictionInput
	require.NoError(t, json.Unmarshal(data, &input))
	assert.Equal(t, 41, input.Age)
	require.NotNil(t, input.PredictionOutput)
	assert.Equal(t, 1, input.PredictionOutput.Prediction)

	resp, data = a.do(t, http.MethodGet, "/v1/predictions/99", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "prediction not found", decodeError(t, data).Detail)

	resp, _ = a.do(t, http.MethodGet, "/v1/predictions/abc", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/v1/predictions/1", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/v1/predictions/1", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListPredictions(t *testing.T) {
	a := newTestApp(t, nil)
	for _, m := range []string{"A", "B"} {
		resp, _ := a.do(t, http.MethodPost, "/v1/predictions", sampleBody(m))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	t.Run("defaults", func(t *testing.T) {
		resp, data := a.do(t, http.MethodGet, "/v1/predictions", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var inputs []models.PredictionInput
		require.NoError(t, json.Unmarshal(data, &inputs))
		assert.Len(t, inputs, 2)
		assert.Equal(t, repositories.ListParams{Skip: 0, Limit: 10}, a.service.lastList)
	})

	t.Run("query parameters", func(t *testing.T) {
		resp, _ := a.do(t, http.MethodGet, "/v1/predictions?skip=5&limit=20&matricule=B", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, repositories.ListParams{Skip: 5, Limit: 20, Matricule: "B"}, a.service.lastList)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		for _, query := range []string{"limit=0", "limit=101", "skip=-1", "limit=abc"} {
			resp, data := a.do(t, http.MethodGet, "/v1/predictions?"+query, nil)
			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, query)
			assert.Len(t, decodeError(t, data).Errors, 1, query)
		}
	})

	t.Run("outputs", func(t *testing.T) {
		resp, data := a.do(t, http.MethodGet, "/v1/outputs", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var outputs []models.PredictionOutput
		require.NoError(t, json.Unmarshal(data, &outputs))
		assert.Len(t, outputs, 2)
	})
}

func TestAPIKey(t *testing.T) {
	a := newTestApp(t, func(r *Routes) { r.APIKey = "s3cret" })

	resp, data := a.do(t, http.MethodGet, "/v1/predictions", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing or invalid API key", decodeError(t, data).Detail)

	resp, _ = a.do(t, http.MethodGet, "/v1/outputs", nil, APIKeyHeader, "wrong")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/v1/predictions", sampleBody(""), APIKeyHeader, "s3cret")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/v1/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "health stays public")
}

func TestMetaRoutes(t *testing.T) {
	a := newTestApp(t, nil)

	resp, data := a.do(t, http.MethodGet, "/v1/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var root models.RootResponse
	require.NoError(t, json.Unmarshal(data, &root))
	assert.Equal(t, "Welcome to Futurisys ML API", root.Message)
	assert.Equal(t, "v1.2.0", root.Version)

	resp, data = a.do(t, http.MethodGet, "/v1/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.WithinDuration(t, time.Now(), health.Timestamp, time.Minute)

	resp, data = a.do(t, http.MethodGet, "/v1/erd", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	assert.Contains(t, string(data), "Entity relationship diagram")

	resp, data = a.do(t, http.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "POST /v1/predictions")

	resp, data = a.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "attrition_api_http_requests_total")
}

func TestResponsesCarryRequestID(t *testing.T) {
	a := newTestApp(t, nil)
	resp, _ := a.do(t, http.MethodGet, "/v1/health", nil)
	assert.Len(t, resp.Header.Get(fiber.HeaderXRequestID), 36)
}

func postForm(t *testing.T, a *testApp, values url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ui", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestUI(t *testing.T) {
	a := newTestApp(t, nil)

	t.Run("form", func(t *testing.T) {
		resp, data := a.do(t, http.MethodGet, "/ui", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		page := string(data)
		assert.Contains(t, page, "Futurisys")
		assert.Contains(t, page, "v1.2.0")
		assert.Contains(t, page, `name="poste"`)
		assert.Contains(t, page, "Représentant Commercial")
	})

	t.Run("valid submission", func(t *testing.T) {
		values := url.Values{}
		for k, v := range sampleBody("UI-1") {
			values.Set(k, strings.TrimSpace(jsonScalar(v)))
		}
		resp, page := postForm(t, a, values)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, page)
		assert.Contains(t, page, "0.700")
		assert.Contains(t, page, "Quittera")
		assert.Contains(t, page, `value="UI-1"`)
	})

	t.Run("invalid submission lists violations", func(t *testing.T) {
		resp, page := postForm(t, a, url.Values{"age": {"12"}})
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, page, "field required")
		assert.Contains(t, page, "must be greater than or equal to 18")
	})
}

func TestUI_APIKey(t *testing.T) {
	a := newTestApp(t, func(r *Routes) { r.APIKey = "s3cret" })

	values := url.Values{}
	for k, v := range sampleBody("UI-KEY") {
		values.Set(k, strings.TrimSpace(jsonScalar(v)))
	}

	resp, data := a.do(t, http.MethodGet, "/ui", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `name="api_key"`)

	resp, _ = postForm(t, a, values)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	values.Set(APIKeyFormField, "wrong")
	resp, _ = postForm(t, a, values)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	values.Set(APIKeyFormField, "s3cret")
	resp, page := postForm(t, a, values)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, page)
	assert.Contains(t, page, "0.700")
	assert.NotContains(t, page, "s3cret")
}

func TestUI_NoKeyField(t *testing.T) {
	a := newTestApp(t, nil)
	_, data := a.do(t, http.MethodGet, "/ui", nil)
	assert.NotContains(t, string(data), `name="api_key"`)
}

func jsonScalar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, _ := json.Marshal(v)
	return string(data)
}
