package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the persisted trained model: a logistic regression over the
// canonical feature order, plus the standard scaler fitted at training time.
type Artifact struct {
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Scales       []float64 `json:"scales"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Metadata     Metadata  `json:"metadata,omitempty"`
}

// Metadata records how the artifact was produced.
type Metadata struct {
	TrainedAt     string  `json:"trained_at,omitempty"`
	Samples       int     `json:"samples,omitempty"`
	Epochs        int     `json:"epochs,omitempty"`
	LearningRate  float64 `json:"learning_rate,omitempty"`
	TrainAccuracy float64 `json:"train_accuracy,omitempty"`
	TestAccuracy  float64 `json:"test_accuracy,omitempty"`
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &artifact, nil
}

// SaveArtifact writes a model artifact to disk.
func SaveArtifact(path string, artifact *Artifact) error {
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid model artifact: %w", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	return nil
}

// Validate checks the artifact's internal consistency.
func (a *Artifact) Validate() error {
	n := len(a.FeatureNames)
	if n == 0 {
		return fmt.Errorf("artifact has no feature names")
	}
	if len(a.Means) != n || len(a.Scales) != n || len(a.Weights) != n {
		return fmt.Errorf("artifact dimension mismatch: %d names, %d means, %d scales, %d weights",
			n, len(a.Means), len(a.Scales), len(a.Weights))
	}
	for i, s := range a.Scales {
		if s == 0 {
			return fmt.Errorf("artifact scale for %q is zero", a.FeatureNames[i])
		}
	}
	return nil
}
