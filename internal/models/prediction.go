package models

import (
	"time"

	"futurisys/attrition-api/internal/records"
)

// PredictionInput is a stored employee snapshot. Columns keep the French
// field names used on the wire.
type PredictionInput struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Matricule *string `gorm:"column:matricule;size:64;uniqueIndex" json:"matricule"`

	Age           int     `gorm:"column:age;not null" json:"age"`
	Genre         string  `gorm:"column:genre;size:8;not null" json:"genre"`
	RevenuMensuel float64 `gorm:"column:revenu_mensuel;not null" json:"revenu_mensuel"`
	StatutMarital string  `gorm:"column:statut_marital;size:32;not null" json:"statut_marital"`
	Departement   string  `gorm:"column:departement;size:64;not null" json:"departement"`
	Poste         string  `gorm:"column:poste;size:64;not null" json:"poste"`

	NombreExperiencesPrecedentes int `gorm:"column:nombre_experiences_precedentes;not null" json:"nombre_experiences_precedentes"`
	AnneeExperienceTotale        int `gorm:"column:annee_experience_totale;not null" json:"annee_experience_totale"`
	AnneesDansLEntreprise        int `gorm:"column:annees_dans_l_entreprise;not null" json:"annees_dans_l_entreprise"`
	AnneesDansLePosteActuel      int `gorm:"column:annees_dans_le_poste_actuel;not null" json:"annees_dans_le_poste_actuel"`

	SatisfactionEnvironnement int `gorm:"column:satisfaction_employee_environnement;not null" json:"satisfaction_employee_environnement"`
	NiveauHierarchiquePoste   int `gorm:"column:niveau_hierarchique_poste;not null" json:"niveau_hierarchique_poste"`
	SatisfactionNatureTravail int `gorm:"column:satisfaction_employee_nature_travail;not null" json:"satisfaction_employee_nature_travail"`
	SatisfactionEquipe        int `gorm:"column:satisfaction_employee_equipe;not null" json:"satisfaction_employee_equipe"`
	SatisfactionEquilibre     int `gorm:"column:satisfaction_employee_equilibre_pro_perso;not null" json:"satisfaction_employee_equilibre_pro_perso"`
	NoteEvaluationActuelle    int `gorm:"column:note_evaluation_actuelle;not null" json:"note_evaluation_actuelle"`

	HeureSupplementaires          string  `gorm:"column:heure_supplementaires;size:8;not null" json:"heure_supplementaires"`
	AugmentationSalairePrecedente float64 `gorm:"column:augmentation_salaire_precedente;not null" json:"augmentation_salaire_precedente"`
	NombreParticipationPEE        int     `gorm:"column:nombre_participation_pee;not null" json:"nombre_participation_pee"`
	NbFormationsSuivies           int     `gorm:"column:nb_formations_suivies;not null" json:"nb_formations_suivies"`
	DistanceDomicileTravail       float64 `gorm:"column:distance_domicile_travail;not null" json:"distance_domicile_travail"`

	NiveauEducation      int    `gorm:"column:niveau_education;not null" json:"niveau_education"`
	DomaineEtude         string `gorm:"column:domaine_etude;size:64;not null" json:"domaine_etude"`
	FrequenceDeplacement string `gorm:"column:frequence_deplacement;size:32;not null" json:"frequence_deplacement"`

	AnneesDepuisDernierePromotion int     `gorm:"column:annees_depuis_la_derniere_promotion;not null" json:"annees_depuis_la_derniere_promotion"`
	AnneesSousResponsableActuel   int     `gorm:"column:annes_sous_responsable_actuel;not null" json:"annes_sous_responsable_actuel"`
	MobiliteInterneRatio          float64 `gorm:"column:mobilite_interne_ratio;not null" json:"mobilite_interne_ratio"`
	RatioAnciennete               float64 `gorm:"column:ratio_anciennete;not null" json:"ratio_anciennete"`
	DeltaEvaluation               float64 `gorm:"column:delta_evaluation;not null" json:"delta_evaluation"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	PredictionOutput *PredictionOutput `gorm:"foreignKey:PredictionInputID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"prediction_output,omitempty"`
}

func (PredictionInput) TableName() string {
	return "prediction_inputs"
}

// PredictionOutput is the classification stored for one input. It is never updated.
type PredictionOutput struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PredictionInputID uint      `gorm:"column:prediction_input_id;not null;index" json:"prediction_input_id"`
	Prediction        int       `gorm:"column:prediction;not null" json:"prediction"`
	Probability       float64   `gorm:"column:probability;not null" json:"probability"`
	Threshold         float64   `gorm:"column:threshold;not null" json:"threshold"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PredictionOutput) TableName() string {
	return "prediction_outputs"
}

// All lists the entities managed by migrations, parents first.
func All() []any {
	return []any{&PredictionInput{}, &PredictionOutput{}}
}

// NewPredictionInput maps a validated record onto its row. An empty matricule
// is stored as NULL so it stays outside the uniqueness constraint.
func NewPredictionInput(e *records.Employee) *PredictionInput {
	in := &PredictionInput{
		Age:                           e.Age,
		Genre:                         string(e.Gender),
		RevenuMensuel:                 e.MonthlyIncome,
		StatutMarital:                 string(e.MaritalStatus),
		Departement:                   string(e.Department),
		Poste:                         string(e.Role),
		NombreExperiencesPrecedentes:  e.PreviousCompanies,
		AnneeExperienceTotale:         e.TotalYearsExperience,
		AnneesDansLEntreprise:         e.YearsAtCompany,
		AnneesDansLePosteActuel:       e.YearsInCurrentRole,
		SatisfactionEnvironnement:     int(e.EnvironmentSatisfaction),
		NiveauHierarchiquePoste:       int(e.JobLevel),
		SatisfactionNatureTravail:     int(e.WorkSatisfaction),
		SatisfactionEquipe:            int(e.TeamSatisfaction),
		SatisfactionEquilibre:         int(e.WorkLifeBalance),
		NoteEvaluationActuelle:        int(e.PerformanceRating),
		HeureSupplementaires:          string(e.Overtime),
		AugmentationSalairePrecedente: e.LastSalaryIncrease,
		NombreParticipationPEE:        e.SavingsPlanParticipations,
		NbFormationsSuivies:           e.TrainingsAttended,
		DistanceDomicileTravail:       e.CommuteDistance,
		NiveauEducation:               int(e.EducationLevel),
		DomaineEtude:                  string(e.EducationField),
		FrequenceDeplacement:          string(e.TravelFrequency),
		AnneesDepuisDernierePromotion: e.YearsSinceLastPromotion,
		AnneesSousResponsableActuel:   e.YearsWithCurrentManager,
		MobiliteInterneRatio:          e.InternalMobilityRatio,
		RatioAnciennete:               e.SeniorityRatio,
		DeltaEvaluation:               e.EvaluationDelta,
	}
	if e.Matricule != "" {
		m := e.Matricule
		in.Matricule = &m
	}
	return in
}

// Employee maps the row back to a typed record.
func (p *PredictionInput) Employee() *records.Employee {
	e := &records.Employee{
		Age:                       p.Age,
		Gender:                    records.Gender(p.Genre),
		MonthlyIncome:             p.RevenuMensuel,
		MaritalStatus:             records.MaritalStatus(p.StatutMarital),
		Department:                records.Department(p.Departement),
		Role:                      records.Role(p.Poste),
		PreviousCompanies:         p.NombreExperiencesPrecedentes,
		TotalYearsExperience:      p.AnneeExperienceTotale,
		YearsAtCompany:            p.AnneesDansLEntreprise,
		YearsInCurrentRole:        p.AnneesDansLePosteActuel,
		EnvironmentSatisfaction:   records.Satisfaction(p.SatisfactionEnvironnement),
		JobLevel:                  records.JobLevel(p.NiveauHierarchiquePoste),
		WorkSatisfaction:          records.Satisfaction(p.SatisfactionNatureTravail),
		TeamSatisfaction:          records.Satisfaction(p.SatisfactionEquipe),
		WorkLifeBalance:           records.Satisfaction(p.SatisfactionEquilibre),
		PerformanceRating:         records.Rating(p.NoteEvaluationActuelle),
		Overtime:                  records.YesNo(p.HeureSupplementaires),
		LastSalaryIncrease:        p.AugmentationSalairePrecedente,
		SavingsPlanParticipations: p.NombreParticipationPEE,
		TrainingsAttended:         p.NbFormationsSuivies,
		CommuteDistance:           p.DistanceDomicileTravail,
		EducationLevel:            records.EducationLevel(p.NiveauEducation),
		EducationField:            records.EducationField(p.DomaineEtude),
		TravelFrequency:           records.TravelFrequency(p.FrequenceDeplacement),
		YearsSinceLastPromotion:   p.AnneesDepuisDernierePromotion,
		YearsWithCurrentManager:   p.AnneesSousResponsableActuel,
		InternalMobilityRatio:     p.MobiliteInterneRatio,
		SeniorityRatio:            p.RatioAnciennete,
		EvaluationDelta:           p.DeltaEvaluation,
	}
	if p.Matricule != nil {
		e.Matricule = *p.Matricule
	}
	return e
}
