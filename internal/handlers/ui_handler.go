package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/services"
)

//go:embed templates/ui.html
var templateFS embed.FS

var uiTemplate = template.Must(template.ParseFS(templateFS, "templates/ui.html"))

const (
	verdictLeaving = "🚪 Quittera l'entreprise"
	verdictStaying = "🧑‍💼 Restera"
)

type formField struct {
	Name    string
	Label   string
	Kind    string // number, select or text
	Step    string
	Options []string
}

type formGroup struct {
	Title  string
	Fields []formField
}

type uiResult struct {
	Probability string
	Verdict     string
	Leaving     bool
	InputID     uint
}

type uiPage struct {
	Title       string
	Description string
	Groups      []formGroup
	Values      map[string]string
	Result      *uiResult
	Detail      string
	Errors      []records.Violation
	KeyRequired bool
}

// UIHandler serves the HTML form in front of the prediction service.
type UIHandler struct {
	service services.PredictionService
	title   string
	groups  []formGroup
	// keyRequired adds the API key field to the form.
	keyRequired bool
}

func NewUIHandler(service services.PredictionService, version string) *UIHandler {
	return &UIHandler{
		service: service,
		title:   fmt.Sprintf("Futurisys – Prédiction de départ d'un employé (%s)", version),
		groups:  formGroups(),
	}
}

// HandleForm handles GET /ui
func (h *UIHandler) HandleForm(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, h.page(map[string]string{}))
}

// HandleSubmit handles POST /ui
func (h *UIHandler) HandleSubmit(c *fiber.Ctx) error {
	values := make(map[string]string)
	raw := make(map[string]any)
	for _, name := range records.Fields() {
		v := strings.TrimSpace(c.FormValue(name))
		values[name] = v
		if v != "" {
			raw[name] = v
		}
	}

	page := h.page(values)
	result, err := h.service.Predict(c.UserContext(), raw)
	if err != nil {
		resp := errorResponse(err)
		page.Detail = resp.Detail
		page.Errors = resp.Errors
		return h.render(c, resp.Code, page)
	}

	out := result.Output
	page.Result = &uiResult{
		Probability: strconv.FormatFloat(out.Probability, 'f', 3, 64),
		Verdict:     verdictStaying,
		Leaving:     out.Prediction == 1,
		InputID:     result.Input.ID,
	}
	if page.Result.Leaving {
		page.Result.Verdict = verdictLeaving
	}
	return h.render(c, fiber.StatusOK, page)
}

func (h *UIHandler) page(values map[string]string) *uiPage {
	return &uiPage{
		Title:       h.title,
		Description: "Entrez les caractéristiques d'un employé pour estimer la probabilité de départ.",
		Groups:      h.groups,
		Values:      values,
		KeyRequired: h.keyRequired,
	}
}

func (h *UIHandler) render(c *fiber.Ctx, status int, page *uiPage) error {
	var buf bytes.Buffer
	if err := uiTemplate.Execute(&buf, page); err != nil {
		return errors.Join(fiber.ErrInternalServerError, err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func formGroups() []formGroup {
	return []formGroup{
		{
			Title: "Informations personnelles",
			Fields: []formField{
				textField(records.FieldMatricule, "Matricule (optionnel)"),
				numberField(records.FieldAge, "Âge", "1"),
				selectOf(records.FieldGender, "Genre", records.Genders()),
				selectOf(records.FieldMaritalStatus, "Statut marital", records.MaritalStatuses()),
				numberField(records.FieldCommuteDistance, "Distance domicile-travail (km)", "any"),
				intSelectOf(records.FieldEducationLevel, "Niveau d'éducation", records.EducationLevels()),
				selectOf(records.FieldEducationField, "Domaine d'étude", records.EducationFields()),
			},
		},
		{
			Title: "Informations professionnelles",
			Fields: []formField{
				selectOf(records.FieldDepartment, "Département", records.Departments()),
				selectOf(records.FieldRole, "Poste", records.Roles()),
				intSelectOf(records.FieldJobLevel, "Niveau hiérarchique", records.JobLevels()),
				numberField(records.FieldMonthlyIncome, "Revenu mensuel (€)", "any"),
				numberField(records.FieldPreviousCompanies, "Nombre d'expériences précédentes", "1"),
				numberField(records.FieldTotalYearsExperience, "Années d'expérience totale", "1"),
				numberField(records.FieldYearsAtCompany, "Années dans l'entreprise", "1"),
				numberField(records.FieldYearsInCurrentRole, "Années dans le poste actuel", "1"),
				numberField(records.FieldYearsSinceLastPromotion, "Années depuis la dernière promotion", "1"),
				numberField(records.FieldYearsWithCurrentManager, "Années sous le responsable actuel", "1"),
				selectOf(records.FieldOvertime, "Heures supplémentaires", records.YesNoValues()),
				numberField(records.FieldLastSalaryIncrease, "Augmentation de salaire précédente (ratio)", "any"),
				numberField(records.FieldSavingsPlanParticipations, "Participations au PEE", "1"),
				numberField(records.FieldTrainingsAttended, "Formations suivies", "1"),
				selectOf(records.FieldTravelFrequency, "Fréquence de déplacement", records.TravelFrequencies()),
				numberField(records.FieldInternalMobilityRatio, "Ratio de mobilité interne", "any"),
				numberField(records.FieldSeniorityRatio, "Ratio d'ancienneté", "any"),
			},
		},
		{
			Title: "Satisfaction et évaluation",
			Fields: []formField{
				intSelectOf(records.FieldEnvironmentSatisfaction, "Satisfaction environnement", records.Satisfactions()),
				intSelectOf(records.FieldWorkSatisfaction, "Satisfaction nature du travail", records.Satisfactions()),
				intSelectOf(records.FieldTeamSatisfaction, "Satisfaction équipe", records.Satisfactions()),
				intSelectOf(records.FieldWorkLifeBalance, "Équilibre vie pro / perso", records.Satisfactions()),
				intSelectOf(records.FieldPerformanceRating, "Note d'évaluation actuelle", records.Ratings()),
				numberField(records.FieldEvaluationDelta, "Évolution de l'évaluation", "any"),
			},
		},
	}
}

func textField(name, label string) formField {
	return formField{Name: name, Label: label, Kind: "text"}
}

func numberField(name, label, step string) formField {
	return formField{Name: name, Label: label, Kind: "number", Step: step}
}

func selectOf[T ~string](name, label string, values []T) formField {
	options := make([]string, len(values))
	for i, v := range values {
		options[i] = string(v)
	}
	return formField{Name: name, Label: label, Kind: "select", Options: options}
}

func intSelectOf[T ~int](name, label string, values []T) formField {
	options := make([]string, len(values))
	for i, v := range values {
		options[i] = strconv.Itoa(int(v))
	}
	return formField{Name: name, Label: label, Kind: "select", Options: options}
}
