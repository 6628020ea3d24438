package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	featureKindNumeric     = "numeric"
	featureKindCategorical = "categorical"

	leafFeature = -1
)

// ForestModel is a random forest exported from a fitted preprocessing +
// classifier pipeline. Numeric inputs are imputed, categorical inputs are
// one-hot encoded with unknown categories ignored, and every tree votes with
// the class distribution of the leaf it reaches.
type ForestModel struct {
	Name     string        `json:"name"`
	Version  string        `json:"version"`
	Classes  []int         `json:"classes"`
	Features []FeatureSpec `json:"features"`
	Trees    []Tree        `json:"trees"`

	offsets []int
	width   int
}

// FeatureSpec describes how one named input is encoded into model columns.
type FeatureSpec struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Impute     float64  `json:"impute,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Tree is a binary decision tree stored as a flat node array; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split (Feature >= 0) or a leaf (Feature == -1). A sample goes
// left when its column value is <= Threshold.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      int       `json:"left,omitempty"`
	Right     int       `json:"right,omitempty"`
	Value     []float64 `json:"value,omitempty"`
}

// ReadForest decodes and validates a forest artifact.
func ReadForest(r io.Reader) (*ForestModel, error) {
	var model ForestModel
	if err := json.NewDecoder(r).Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode forest model: %w", err)
	}
	if err := model.init(); err != nil {
		return nil, err
	}
	return &model, nil
}

func (m *ForestModel) init() error {
	if len(m.Classes) != 2 {
		return fmt.Errorf("invalid forest model: expected 2 classes, got %d", len(m.Classes))
	}
	if len(m.Features) == 0 {
		return fmt.Errorf("invalid forest model: no features")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("invalid forest model: no trees")
	}

	m.offsets = make([]int, len(m.Features))
	width := 0
	seen := make(map[string]bool, len(m.Features))
	for i, spec := range m.Features {
		if seen[spec.Name] {
			return fmt.Errorf("invalid forest model: duplicate feature %q", spec.Name)
		}
		seen[spec.Name] = true
		m.offsets[i] = width
		switch spec.Kind {
		case featureKindNumeric:
			width++
		case featureKindCategorical:
			if len(spec.Categories) == 0 {
				return fmt.Errorf("invalid forest model: categorical feature %q has no categories", spec.Name)
			}
			width += len(spec.Categories)
		default:
			return fmt.Errorf("invalid forest model: feature %q has unknown kind %q", spec.Name, spec.Kind)
		}
	}
	m.width = width

	for t, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("invalid forest model: tree %d is empty", t)
		}
		for n, node := range tree.Nodes {
			if node.Feature == leafFeature {
				if len(node.Value) != len(m.Classes) {
					return fmt.Errorf("invalid forest model: tree %d leaf %d has %d values", t, n, len(node.Value))
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= width {
				return fmt.Errorf("invalid forest model: tree %d node %d splits on column %d of %d", t, n, node.Feature, width)
			}
			// children always come after their parent, which also rules out cycles
			if node.Left <= n || node.Left >= len(tree.Nodes) || node.Right <= n || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("invalid forest model: tree %d node %d has invalid children", t, n)
			}
		}
	}

	return nil
}

// Predict implements Classifier.
func (m *ForestModel) Predict(ctx context.Context, features FeatureVector) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	row, err := m.encode(features)
	if err != nil {
		return Prediction{}, err
	}

	votes := make([]float64, len(m.Classes))
	for _, tree := range m.Trees {
		leaf := tree.leaf(row)
		total := 0.0
		for _, v := range leaf {
			total += v
		}
		if total <= 0 {
			continue
		}
		for i, v := range leaf {
			votes[i] += v / total
		}
	}
	for i := range votes {
		votes[i] /= float64(len(m.Trees))
	}

	best := 0
	for i := range votes {
		if votes[i] > votes[best] {
			best = i
		}
	}

	return Prediction{
		Label:       m.Classes[best],
		Probability: votes[m.positiveIndex()],
	}, nil
}

// FeatureNames returns the model inputs in artifact order.
func (m *ForestModel) FeatureNames() []string {
	names := make([]string, len(m.Features))
	for i, spec := range m.Features {
		names[i] = spec.Name
	}
	return names
}

func (m *ForestModel) positiveIndex() int {
	for i, c := range m.Classes {
		if c == 1 {
			return i
		}
	}
	return len(m.Classes) - 1
}

func (m *ForestModel) encode(features FeatureVector) ([]float64, error) {
	row := make([]float64, m.width)
	for i, spec := range m.Features {
		value, ok := features.Lookup(spec.Name)
		if !ok {
			return nil, fmt.Errorf("%w: missing feature %q", ErrFeatureMismatch, spec.Name)
		}
		offset := m.offsets[i]

		switch spec.Kind {
		case featureKindNumeric:
			x, err := numericValue(value, spec.Impute)
			if err != nil {
				return nil, fmt.Errorf("%w: feature %q: %v", ErrFeatureMismatch, spec.Name, err)
			}
			row[offset] = x
		case featureKindCategorical:
			category, present := categoryValue(value)
			if !present {
				continue
			}
			for j, c := range spec.Categories {
				if c == category {
					row[offset+j] = 1
					break
				}
			}
		}
	}
	return row, nil
}

func (t Tree) leaf(row []float64) []float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature == leafFeature {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

func numericValue(value any, impute float64) (float64, error) {
	switch v := value.(type) {
	case nil:
		return impute, nil
	case float64:
		if math.IsNaN(v) {
			return impute, nil
		}
		return v, nil
	case int:
		return float64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return impute, nil
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return x, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
}

func categoryValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return fmt.Sprint(v), true
	}
}
