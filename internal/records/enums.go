package records

import "fmt"

type Gender string

const (
	GenderMale   Gender = "H"
	GenderFemale Gender = "F"
)

type MaritalStatus string

const (
	MaritalStatusMarried  MaritalStatus = "Marié(e)"
	MaritalStatusSingle   MaritalStatus = "Célibataire"
	MaritalStatusDivorced MaritalStatus = "Divorcé(e)"
)

type Department string

const (
	DepartmentConsulting     Department = "Consulting"
	DepartmentSales          Department = "Commercial"
	DepartmentHumanResources Department = "Ressources Humaines"
)

type Role string

const (
	RoleSalesExecutive      Role = "Cadre Commercial"
	RoleExecutiveAssistant  Role = "Assistante de Direction"
	RoleConsultant          Role = "Consultant"
	RoleTechLead            Role = "Tech Lead"
	RoleManager             Role = "Manager"
	RoleSeniorManager       Role = "Senior Manager"
	RoleSalesRepresentative Role = "Représentant Commercial"
	RoleTechnicalDirector   Role = "Directeur Technique"
	RoleHumanResources      Role = "Ressources Humaines"
)

type EducationField string

const (
	EducationFieldInfraCloud     EducationField = "Infra & Cloud"
	EducationFieldDigital        EducationField = "Transformation Digitale"
	EducationFieldMarketing      EducationField = "Marketing"
	EducationFieldEntrepreneur   EducationField = "Entrepreunariat"
	EducationFieldOther          EducationField = "Autre"
	EducationFieldHumanResources EducationField = "Ressources Humaines"
)

type TravelFrequency string

const (
	TravelNone       TravelFrequency = "Aucun"
	TravelOccasional TravelFrequency = "Occasionnel"
	TravelFrequent   TravelFrequency = "Frequent"
)

type YesNo string

const (
	Yes YesNo = "Oui"
	No  YesNo = "Non"
)

// Satisfaction is a 0..5 survey answer.
type Satisfaction int

// Rating is a 0..5 performance review score.
type Rating int

// JobLevel is the 1..5 position in the hierarchy.
type JobLevel int

// EducationLevel is a 1..5 education grade.
type EducationLevel int

var (
	genders         = []Gender{GenderMale, GenderFemale}
	maritalStatuses = []MaritalStatus{MaritalStatusMarried, MaritalStatusSingle, MaritalStatusDivorced}
	departments     = []Department{DepartmentConsulting, DepartmentSales, DepartmentHumanResources}
	roles           = []Role{RoleSalesExecutive, RoleExecutiveAssistant, RoleConsultant, RoleTechLead, RoleManager, RoleSeniorManager, RoleSalesRepresentative, RoleTechnicalDirector, RoleHumanResources}
	educationFields = []EducationField{EducationFieldInfraCloud, EducationFieldDigital, EducationFieldMarketing, EducationFieldEntrepreneur, EducationFieldOther, EducationFieldHumanResources}
	travelFreqs     = []TravelFrequency{TravelNone, TravelOccasional, TravelFrequent}
	yesNo           = []YesNo{Yes, No}
	satisfactions   = []Satisfaction{0, 1, 2, 3, 4, 5}
	ratings         = []Rating{0, 1, 2, 3, 4, 5}
	jobLevels       = []JobLevel{1, 2, 3, 4, 5}
	educationLevels = []EducationLevel{1, 2, 3, 4, 5}
)

func Genders() []Gender { return clone(genders) }
func MaritalStatuses() []MaritalStatus { return clone(maritalStatuses) }
func Departments() []Department { return clone(departments) }
func Roles() []Role { return clone(roles) }
func EducationFields() []EducationField { return clone(educationFields) }
func TravelFrequencies() []TravelFrequency { return clone(travelFreqs) }
func YesNoValues() []YesNo { return clone(yesNo) }
func Satisfactions() []Satisfaction { return clone(satisfactions) }
func Ratings() []Rating { return clone(ratings) }
func JobLevels() []JobLevel { return clone(jobLevels) }
func EducationLevels() []EducationLevel { return clone(educationLevels) }

func ParseGender(s string) (Gender, error) { return parseEnum(s, genders) }
func ParseMaritalStatus(s string) (MaritalStatus, error) { return parseEnum(s, maritalStatuses) }
func ParseDepartment(s string) (Department, error) { return parseEnum(s, departments) }
func ParseRole(s string) (Role, error) { return parseEnum(s, roles) }
func ParseEducationField(s string) (EducationField, error) { return parseEnum(s, educationFields) }
func ParseTravelFrequency(s string) (TravelFrequency, error) { return parseEnum(s, travelFreqs) }
func ParseYesNo(s string) (YesNo, error) { return parseEnum(s, yesNo) }

func parseEnum[T ~string](s string, values []T) (T, error) {
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%q is not one of %v", s, values)
}

func parseIntEnum[T ~int](n int, values []T) (T, error) {
	for _, v := range values {
		if int(v) == n {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%d is not one of %v", n, values)
}

func clone[T any](values []T) []T {
	out := make([]T, len(values))
	copy(out, values)
	return out
}
