package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
)

func testArtifact() *Artifact {
	return &Artifact{
		FeatureNames: []string{"a", "b", "c"},
		Means:        []float64{0, 0, 0},
		Scales:       []float64{1, 1, 1},
		Weights:      []float64{1, 1, 1},
		Bias:         0,
	}
}

func TestVectorize(t *testing.T) {
	features := core.FeatureSet{
		"flag":    true,
		"off":     false,
		"count":   3,
		"wide":    int64(4),
		"ratio":   2.5,
		"name":    "abcde",
		"strange": []string{"not", "scalar"},
	}
	names := []string{"flag", "off", "count", "wide", "ratio", "name", "strange", "absent"}

	vector := Vectorize(features, names)

	assert.Equal(t, []float64{1, 0, 3, 4, 2.5, 5, 0, 0}, vector)
}

func TestClassifyPositive(t *testing.T) {
	classifier := NewFromArtifact(testArtifact(), zap.NewNop())
	require.True(t, classifier.Ready())

	// z = 1 + 2 + 3 = 6, p = sigmoid(6)
	result := classifier.Classify(context.Background(), core.FeatureSet{
		"a": true, "b": 2, "c": 3,
	})

	assert.Equal(t, 1, result.Label)
	assert.InDelta(t, 1/(1+math.Exp(-6)), result.Confidence, 1e-12)
}

func TestClassifyNegative(t *testing.T) {
	artifact := testArtifact()
	artifact.Bias = -4
	classifier := NewFromArtifact(artifact, zap.NewNop())

	result := classifier.Classify(context.Background(), core.FeatureSet{})

	assert.Equal(t, 0, result.Label)
	assert.InDelta(t, 1-1/(1+math.Exp(4)), result.Confidence, 1e-12)
	assert.GreaterOrEqual(t, result.Confidence, 0.5)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestClassifyScalesInputs(t *testing.T) {
	artifact := testArtifact()
	artifact.Means = []float64{1, 1, 1}
	artifact.Scales = []float64{2, 2, 2}
	classifier := NewFromArtifact(artifact, zap.NewNop())

	// Each scaled feature is (1-1)/2 = 0, so z = bias = 0 and p = 0.5.
	result := classifier.Classify(context.Background(), core.FeatureSet{
		"a": 1, "b": 1, "c": 1,
	})

	assert.Equal(t, 1, result.Label)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestFallbackWithoutArtifact(t *testing.T) {
	classifier := NewLogisticClassifier(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())

	assert.False(t, classifier.Ready())
	result := classifier.Classify(context.Background(), core.FeatureSet{"a": true})
	assert.Equal(t, FallbackResult(), result)
	assert.Equal(t, core.ClassifierResult{Label: 0, Confidence: 0.5}, result)
}

func TestArtifactRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := testArtifact()
	artifact.Metadata = Metadata{Samples: 100, TestAccuracy: 0.92}

	require.NoError(t, SaveArtifact(path, artifact))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, artifact, loaded)

	classifier := NewLogisticClassifier(path, zap.NewNop())
	assert.True(t, classifier.Ready())
}

func TestArtifactValidation(t *testing.T) {
	artifact := testArtifact()
	artifact.Weights = []float64{1}
	assert.Error(t, artifact.Validate())

	artifact = testArtifact()
	artifact.Scales[1] = 0
	assert.Error(t, artifact.Validate())

	assert.Error(t, (&Artifact{}).Validate())
	assert.NoError(t, testArtifact().Validate())
}

func TestLoadArtifactRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadArtifact(path)
	assert.Error(t, err)
}
