package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode builds an Employee from a loosely typed payload, usually a JSON object
// decoded with UseNumber. Numbers may arrive as JSON numbers or numeric strings;
// integral floats are accepted for integer fields. Every problem is collected
// and returned together as a *ValidationError.
func Decode(raw map[string]any) (*Employee, error) {
	d := &decoder{raw: raw, failed: make(map[string]bool)}
	e := &Employee{}

	e.Matricule = d.optionalString(FieldMatricule)

	e.Age = d.int(FieldAge)
	e.Gender = enumField(d, FieldGender, genders)
	e.MonthlyIncome = d.float(FieldMonthlyIncome)
	e.MaritalStatus = enumField(d, FieldMaritalStatus, maritalStatuses)
	e.Department = enumField(d, FieldDepartment, departments)
	e.Role = enumField(d, FieldRole, roles)

	e.PreviousCompanies = d.int(FieldPreviousCompanies)
	e.TotalYearsExperience = d.int(FieldTotalYearsExperience)
	e.YearsAtCompany = d.int(FieldYearsAtCompany)
	e.YearsInCurrentRole = d.int(FieldYearsInCurrentRole)

	e.EnvironmentSatisfaction = intEnumField(d, FieldEnvironmentSatisfaction, satisfactions)
	e.JobLevel = intEnumField(d, FieldJobLevel, jobLevels)
	e.WorkSatisfaction = intEnumField(d, FieldWorkSatisfaction, satisfactions)
	e.TeamSatisfaction = intEnumField(d, FieldTeamSatisfaction, satisfactions)
	e.WorkLifeBalance = intEnumField(d, FieldWorkLifeBalance, satisfactions)
	e.PerformanceRating = intEnumField(d, FieldPerformanceRating, ratings)

	e.Overtime = enumField(d, FieldOvertime, yesNo)
	e.LastSalaryIncrease = d.float(FieldLastSalaryIncrease)
	e.SavingsPlanParticipations = d.int(FieldSavingsPlanParticipations)
	e.TrainingsAttended = d.int(FieldTrainingsAttended)
	e.CommuteDistance = d.float(FieldCommuteDistance)

	e.EducationLevel = intEnumField(d, FieldEducationLevel, educationLevels)
	e.EducationField = enumField(d, FieldEducationField, educationFields)
	e.TravelFrequency = enumField(d, FieldTravelFrequency, travelFreqs)

	e.YearsSinceLastPromotion = d.int(FieldYearsSinceLastPromotion)
	e.YearsWithCurrentManager = d.int(FieldYearsWithCurrentManager)
	e.InternalMobilityRatio = d.float(FieldInternalMobilityRatio)
	e.SeniorityRatio = d.float(FieldSeniorityRatio)
	e.EvaluationDelta = d.float(FieldEvaluationDelta)

	d.violations = append(d.violations, e.check(d.failed)...)
	if len(d.violations) > 0 {
		return nil, &ValidationError{Violations: d.violations}
	}
	return e, nil
}

// Validate checks bounds, enum membership and the cross-field rules of an
// already typed record.
func (e *Employee) Validate() error {
	if violations := e.check(nil); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// check runs the bound, enum and cross-field passes. Fields in decoded already
// failed while decoding and are not reported twice; enum membership is then
// guaranteed by the decoder.
func (e *Employee) check(decoded map[string]bool) []Violation {
	var violations []Violation
	invalid := make(map[string]bool, len(decoded))
	for field := range decoded {
		invalid[field] = true
	}

	if err := validate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return append(violations, Violation{Kind: KindTypeMismatch, Message: err.Error()})
		}
		for _, fe := range fieldErrs {
			if invalid[fe.Field()] {
				continue
			}
			invalid[fe.Field()] = true
			violations = append(violations, boundViolation(fe))
		}
	}

	if decoded == nil {
		violations = append(violations, e.checkEnums()...)
	}

	for _, rule := range crossFieldRules {
		if rule.applies(invalid) && rule.broken(e) {
			violations = append(violations, Violation{Field: rule.field, Kind: KindCrossField, Message: rule.message(e)})
		}
	}
	return violations
}

func (e *Employee) checkEnums() []Violation {
	var violations []Violation
	add := func(field string, ok bool, values any) {
		if !ok {
			violations = append(violations, Violation{Field: field, Kind: KindInvalidEnum, Message: enumMessage(values)})
		}
	}
	add(FieldGender, contains(genders, e.Gender), genders)
	add(FieldMaritalStatus, contains(maritalStatuses, e.MaritalStatus), maritalStatuses)
	add(FieldDepartment, contains(departments, e.Department), departments)
	add(FieldRole, contains(roles, e.Role), roles)
	add(FieldEnvironmentSatisfaction, contains(satisfactions, e.EnvironmentSatisfaction), satisfactions)
	add(FieldJobLevel, contains(jobLevels, e.JobLevel), jobLevels)
	add(FieldWorkSatisfaction, contains(satisfactions, e.WorkSatisfaction), satisfactions)
	add(FieldTeamSatisfaction, contains(satisfactions, e.TeamSatisfaction), satisfactions)
	add(FieldWorkLifeBalance, contains(satisfactions, e.WorkLifeBalance), satisfactions)
	add(FieldPerformanceRating, contains(ratings, e.PerformanceRating), ratings)
	add(FieldOvertime, contains(yesNo, e.Overtime), yesNo)
	add(FieldEducationLevel, contains(educationLevels, e.EducationLevel), educationLevels)
	add(FieldEducationField, contains(educationFields, e.EducationField), educationFields)
	add(FieldTravelFrequency, contains(travelFreqs, e.TravelFrequency), travelFreqs)
	return violations
}

func boundViolation(fe validator.FieldError) Violation {
	var msg string
	switch fe.Tag() {
	case "gte":
		msg = "must be greater than or equal to " + fe.Param()
	case "lte":
		msg = "must be less than or equal to " + fe.Param()
	case "max":
		msg = fmt.Sprintf("must be at most %s characters long", fe.Param())
	default:
		msg = fmt.Sprintf("failed the %q rule", fe.Tag())
	}
	return Violation{Field: fe.Field(), Kind: KindOutOfBounds, Message: msg}
}

type crossFieldRule struct {
	field   string
	inputs  []string
	broken  func(e *Employee) bool
	message func(e *Employee) string
}

func (r crossFieldRule) applies(skip map[string]bool) bool {
	for _, f := range r.inputs {
		if skip[f] {
			return false
		}
	}
	return true
}

// Years in role and years at the company are both bounded by the total
// experience. The second rule is also reported on the total itself.
var crossFieldRules = []crossFieldRule{
	{
		field:  FieldYearsInCurrentRole,
		inputs: []string{FieldYearsInCurrentRole, FieldTotalYearsExperience},
		broken: func(e *Employee) bool { return e.YearsInCurrentRole > e.TotalYearsExperience },
		message: func(e *Employee) string {
			return fmt.Sprintf("years in the current role (%d) cannot exceed total years of experience (%d)",
				e.YearsInCurrentRole, e.TotalYearsExperience)
		},
	},
	{
		field:  FieldYearsAtCompany,
		inputs: []string{FieldYearsAtCompany, FieldTotalYearsExperience},
		broken: func(e *Employee) bool { return e.YearsAtCompany > e.TotalYearsExperience },
		message: func(e *Employee) string {
			return fmt.Sprintf("years at the company (%d) cannot exceed total years of experience (%d)",
				e.YearsAtCompany, e.TotalYearsExperience)
		},
	},
	{
		field:  FieldTotalYearsExperience,
		inputs: []string{FieldYearsAtCompany, FieldTotalYearsExperience},
		broken: func(e *Employee) bool { return e.TotalYearsExperience < e.YearsAtCompany },
		message: func(e *Employee) string {
			return fmt.Sprintf("total years of experience (%d) must be at least the years at the company (%d)",
				e.TotalYearsExperience, e.YearsAtCompany)
		},
	},
}

type decoder struct {
	raw        map[string]any
	violations []Violation
	failed     map[string]bool
}

func (d *decoder) fail(field string, kind ViolationKind, msg string) {
	d.failed[field] = true
	d.violations = append(d.violations, Violation{Field: field, Kind: kind, Message: msg})
}

// value returns the raw value of field, recording a missing violation when it
// is absent, null or an empty string.
func (d *decoder) value(field string) (any, bool) {
	v, ok := d.raw[field]
	if !ok || v == nil {
		d.fail(field, KindMissing, "field required")
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		d.fail(field, KindMissing, "field required")
		return nil, false
	}
	return v, true
}

func (d *decoder) float(field string) float64 {
	v, ok := d.value(field)
	if !ok {
		return 0
	}
	f, ok := asFloat(v)
	if !ok {
		d.fail(field, KindTypeMismatch, "must be a number")
		return 0
	}
	return f
}

func (d *decoder) int(field string) int {
	v, ok := d.value(field)
	if !ok {
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		d.fail(field, KindTypeMismatch, "must be an integer")
		return 0
	}
	return n
}

// optionalString reads the matricule: absent, null and blank all mean "none".
func (d *decoder) optionalString(field string) string {
	v, ok := d.raw[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, KindTypeMismatch, "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

func enumField[T ~string](d *decoder, field string, values []T) T {
	var zero T
	v, ok := d.value(field)
	if !ok {
		return zero
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, KindTypeMismatch, "must be a string")
		return zero
	}
	parsed, err := parseEnum(s, values)
	if err != nil {
		d.fail(field, KindInvalidEnum, enumMessage(values))
		return zero
	}
	return parsed
}

func intEnumField[T ~int](d *decoder, field string, values []T) T {
	var zero T
	v, ok := d.value(field)
	if !ok {
		return zero
	}
	n, ok := asInt(v)
	if !ok {
		d.fail(field, KindTypeMismatch, "must be an integer")
		return zero
	}
	parsed, err := parseIntEnum(n, values)
	if err != nil {
		d.fail(field, KindInvalidEnum, enumMessage(values))
		return zero
	}
	return parsed
}

func enumMessage(values any) string {
	rv := reflect.ValueOf(values)
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	return "must be one of: " + strings.Join(parts, ", ")
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
