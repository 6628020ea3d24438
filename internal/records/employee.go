package records

import "futurisys/attrition-api/internal/ml"

// Employee is one validated HR record. Bounds are enforced by Decode; a value
// of this type built elsewhere should go through Validate before use.
type Employee struct {
	Matricule string `json:"matricule,omitempty" validate:"omitempty,max=64"`

	Age           int           `json:"age" validate:"gte=18,lte=70"`
	Gender        Gender        `json:"genre"`
	MonthlyIncome float64       `json:"revenu_mensuel" validate:"gte=0,lte=1000000"`
	MaritalStatus MaritalStatus `json:"statut_marital"`
	Department    Department    `json:"departement"`
	Role          Role          `json:"poste"`

	PreviousCompanies    int `json:"nombre_experiences_precedentes" validate:"gte=0,lte=50"`
	TotalYearsExperience int `json:"annee_experience_totale" validate:"gte=0,lte=60"`
	YearsAtCompany       int `json:"annees_dans_l_entreprise" validate:"gte=0,lte=60"`
	YearsInCurrentRole   int `json:"annees_dans_le_poste_actuel" validate:"gte=0,lte=60"`

	EnvironmentSatisfaction Satisfaction `json:"satisfaction_employee_environnement"`
	JobLevel                JobLevel     `json:"niveau_hierarchique_poste"`
	WorkSatisfaction        Satisfaction `json:"satisfaction_employee_nature_travail"`
	TeamSatisfaction        Satisfaction `json:"satisfaction_employee_equipe"`
	WorkLifeBalance         Satisfaction `json:"satisfaction_employee_equilibre_pro_perso"`
	PerformanceRating       Rating       `json:"note_evaluation_actuelle"`

	Overtime                  YesNo   `json:"heure_supplementaires"`
	LastSalaryIncrease        float64 `json:"augmentation_salaire_precedente" validate:"gte=0,lte=1"`
	SavingsPlanParticipations int     `json:"nombre_participation_pee" validate:"gte=0,lte=50"`
	TrainingsAttended         int     `json:"nb_formations_suivies" validate:"gte=0,lte=50"`
	CommuteDistance           float64 `json:"distance_domicile_travail" validate:"gte=0,lte=100"`

	EducationLevel  EducationLevel  `json:"niveau_education"`
	EducationField  EducationField  `json:"domaine_etude"`
	TravelFrequency TravelFrequency `json:"frequence_deplacement"`

	YearsSinceLastPromotion int     `json:"annees_depuis_la_derniere_promotion" validate:"gte=0,lte=60"`
	YearsWithCurrentManager int     `json:"annes_sous_responsable_actuel" validate:"gte=0,lte=60"`
	InternalMobilityRatio   float64 `json:"mobilite_interne_ratio" validate:"gte=0,lte=1"`
	SeniorityRatio          float64 `json:"ratio_anciennete" validate:"gte=0,lte=1"`
	EvaluationDelta         float64 `json:"delta_evaluation" validate:"gte=-5,lte=5"`
}

// Features returns the record as the classifier input, in FeatureOrder.
// Integer enums are passed as numbers, empty strings as missing values.
func (e *Employee) Features() ml.FeatureVector {
	values := map[string]any{
		FieldAge:                       float64(e.Age),
		FieldGender:                    string(e.Gender),
		FieldMonthlyIncome:             e.MonthlyIncome,
		FieldPreviousCompanies:         float64(e.PreviousCompanies),
		FieldTotalYearsExperience:      float64(e.TotalYearsExperience),
		FieldYearsAtCompany:            float64(e.YearsAtCompany),
		FieldYearsInCurrentRole:        float64(e.YearsInCurrentRole),
		FieldEnvironmentSatisfaction:   float64(e.EnvironmentSatisfaction),
		FieldJobLevel:                  float64(e.JobLevel),
		FieldWorkSatisfaction:          float64(e.WorkSatisfaction),
		FieldTeamSatisfaction:          float64(e.TeamSatisfaction),
		FieldWorkLifeBalance:           float64(e.WorkLifeBalance),
		FieldPerformanceRating:         float64(e.PerformanceRating),
		FieldOvertime:                  string(e.Overtime),
		FieldLastSalaryIncrease:        e.LastSalaryIncrease,
		FieldSavingsPlanParticipations: float64(e.SavingsPlanParticipations),
		FieldTrainingsAttended:         float64(e.TrainingsAttended),
		FieldCommuteDistance:           e.CommuteDistance,
		FieldEducationLevel:            float64(e.EducationLevel),
		FieldTravelFrequency:           string(e.TravelFrequency),
		FieldYearsSinceLastPromotion:   float64(e.YearsSinceLastPromotion),
		FieldYearsWithCurrentManager:   float64(e.YearsWithCurrentManager),
		FieldDepartment:                string(e.Department),
		FieldMaritalStatus:             string(e.MaritalStatus),
		FieldRole:                      string(e.Role),
		FieldEducationField:            string(e.EducationField),
		FieldInternalMobilityRatio:     e.InternalMobilityRatio,
		FieldSeniorityRatio:            e.SeniorityRatio,
		FieldEvaluationDelta:           e.EvaluationDelta,
	}

	vector := make(ml.FeatureVector, 0, len(FeatureOrder))
	for _, name := range FeatureOrder {
		value := values[name]
		if s, ok := value.(string); ok && s == "" {
			value = nil
		}
		vector = append(vector, ml.Feature{Name: name, Value: value})
	}
	return vector
}
