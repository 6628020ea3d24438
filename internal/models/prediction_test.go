package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futurisys/attrition-api/internal/records"
)

func TestNewPredictionInput_MatriculeIsNullWhenEmpty(t *testing.T) {
	in := NewPredictionInput(&records.Employee{Age: 30})
	assert.Nil(t, in.Matricule)

	in = NewPredictionInput(&records.Employee{Matricule: "M1", Age: 30})
	require.NotNil(t, in.Matricule)
	assert.Equal(t, "M1", *in.Matricule)
}

func TestPredictionInput_EmployeeRoundTrip(t *testing.T) {
	e := &records.Employee{
		Matricule:       "M9",
		Age:             29,
		Gender:          records.GenderMale,
		Role:            records.RoleTechLead,
		JobLevel:        3,
		CommuteDistance: 12.5,
		EvaluationDelta: -1,
	}
	assert.Equal(t, e, NewPredictionInput(e).Employee())
}
