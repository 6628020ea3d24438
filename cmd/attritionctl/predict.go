package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"futurisys/attrition-api/internal/config"
	"futurisys/attrition-api/internal/ml"
	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/services"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Validate and score one employee record without storing it",
	Long:  "Read an employee record as a JSON object, validate it, and print the attrition probability and label computed by the configured model.",
	RunE:  runPredict,
}

var predictInputFile string

func init() {
	predictCmd.Flags().StringVarP(&predictInputFile, "file", "f", "", "Path to the JSON record, or - for stdin (required)")
	_ = predictCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(predictCmd)
}

type predictOutput struct {
	Matricule   string  `json:"matricule,omitempty"`
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold"`
	ModelLabel  int     `json:"model_label"`
}

func runPredict(cmd *cobra.Command, _ []string) error {
	raw, err := readRecord(cmd, predictInputFile)
	if err != nil {
		return err
	}

	employee, err := records.Decode(raw)
	if err != nil {
		var verr *records.ValidationError
		if errors.As(err, &verr) {
			for _, v := range verr.Violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s (%s): %s\n", v.Field, v.Kind, v.Message)
			}
		}
		return err
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loaders, err := config.ModelLoaders(cfg, logger)
	if err != nil {
		return err
	}
	classifier, err := ml.Load(cmd.Context(), logger.Named("model"), loaders...)
	if err != nil {
		return err
	}

	prediction, err := classifier.Predict(cmd.Context(), employee.Features())
	if err != nil {
		return fmt.Errorf("failed to score record: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(predictOutput{
		Matricule:   employee.Matricule,
		Prediction:  services.ApplyThreshold(prediction.Probability),
		Probability: prediction.Probability,
		Threshold:   services.DecisionThreshold,
		ModelLabel:  prediction.Label,
	})
}

func readRecord(cmd *cobra.Command, path string) (map[string]any, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open record: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return raw, nil
}
