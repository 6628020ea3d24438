package ml

import (
	"context"
	"errors"
)

var (
	// ErrModelUnavailable is returned when no loader could produce a classifier.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrFeatureMismatch is returned when a feature vector does not match the model's inputs.
	ErrFeatureMismatch = errors.New("feature vector does not match model inputs")
)

// Prediction is the raw classifier output for one feature vector.
type Prediction struct {
	// Label is the model's own class decision.
	Label int
	// Probability is the probability of the positive class.
	Probability float64
}

// Classifier is a loaded binary classifier. Implementations are immutable
// after loading and safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, features FeatureVector) (Prediction, error)
}

// Feature is one named model input. Value holds a float64, a string, or nil
// when the value is missing.
type Feature struct {
	Name  string
	Value any
}

// FeatureVector is an ordered list of model inputs.
type FeatureVector []Feature

// Lookup returns the value of the named feature and whether it is present.
func (v FeatureVector) Lookup(name string) (any, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the feature names in order.
func (v FeatureVector) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}
