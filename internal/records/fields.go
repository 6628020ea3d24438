package records

// Wire names of the employee record. They are also the database column names
// and the model's input names.
const (
	FieldMatricule                 = "matricule"
	FieldAge                       = "age"
	FieldGender                    = "genre"
	FieldMonthlyIncome             = "revenu_mensuel"
	FieldMaritalStatus             = "statut_marital"
	FieldDepartment                = "departement"
	FieldRole                      = "poste"
	FieldPreviousCompanies         = "nombre_experiences_precedentes"
	FieldTotalYearsExperience      = "annee_experience_totale"
	FieldYearsAtCompany            = "annees_dans_l_entreprise"
	FieldYearsInCurrentRole        = "annees_dans_le_poste_actuel"
	FieldEnvironmentSatisfaction   = "satisfaction_employee_environnement"
	FieldJobLevel                  = "niveau_hierarchique_poste"
	FieldWorkSatisfaction          = "satisfaction_employee_nature_travail"
	FieldTeamSatisfaction          = "satisfaction_employee_equipe"
	FieldWorkLifeBalance           = "satisfaction_employee_equilibre_pro_perso"
	FieldPerformanceRating         = "note_evaluation_actuelle"
	FieldOvertime                  = "heure_supplementaires"
	FieldLastSalaryIncrease        = "augmentation_salaire_precedente"
	FieldSavingsPlanParticipations = "nombre_participation_pee"
	FieldTrainingsAttended         = "nb_formations_suivies"
	FieldCommuteDistance           = "distance_domicile_travail"
	FieldEducationLevel            = "niveau_education"
	FieldEducationField            = "domaine_etude"
	FieldTravelFrequency           = "frequence_deplacement"
	FieldYearsSinceLastPromotion   = "annees_depuis_la_derniere_promotion"
	FieldYearsWithCurrentManager   = "annes_sous_responsable_actuel"
	FieldInternalMobilityRatio     = "mobilite_interne_ratio"
	FieldSeniorityRatio            = "ratio_anciennete"
	FieldEvaluationDelta           = "delta_evaluation"
)

// FeatureOrder is the exact column order the classifier was trained on.
// The matricule is an identifier, not a feature.
var FeatureOrder = []string{
	FieldAge,
	FieldGender,
	FieldMonthlyIncome,
	FieldPreviousCompanies,
	FieldTotalYearsExperience,
	FieldYearsAtCompany,
	FieldYearsInCurrentRole,
	FieldEnvironmentSatisfaction,
	FieldJobLevel,
	FieldWorkSatisfaction,
	FieldTeamSatisfaction,
	FieldWorkLifeBalance,
	FieldPerformanceRating,
	FieldOvertime,
	FieldLastSalaryIncrease,
	FieldSavingsPlanParticipations,
	FieldTrainingsAttended,
	FieldCommuteDistance,
	FieldEducationLevel,
	FieldTravelFrequency,
	FieldYearsSinceLastPromotion,
	FieldYearsWithCurrentManager,
	FieldDepartment,
	FieldMaritalStatus,
	FieldRole,
	FieldEducationField,
	FieldInternalMobilityRatio,
	FieldSeniorityRatio,
	FieldEvaluationDelta,
}

// Fields returns every accepted input field: the matricule followed by the features.
func Fields() []string {
	return append([]string{FieldMatricule}, FeatureOrder...)
}
