package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/adapters/model"
	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/logging"
)

var (
	outPath      = flag.String("out", "models/phishing_model.json", "Output path for the model artifact")
	samples      = flag.Int("samples", 10000, "Number of synthetic training samples")
	phishingRate = flag.Float64("phishing-rate", 0.3, "Fraction of synthetic samples labeled phishing")
	epochs       = flag.Int("epochs", 500, "Gradient descent epochs")
	learningRate = flag.Float64("lr", 0.1, "Gradient descent learning rate")
	seed         = flag.Int64("seed", 42, "Random seed for the synthetic dataset")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, false)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	featureNames := core.FeatureNames()
	rng := rand.New(rand.NewSource(*seed))

	logger.Info("Generating synthetic dataset",
		zap.Int("samples", *samples),
		zap.Float64("phishing_rate", *phishingRate),
		zap.Int("features", len(featureNames)))

	X, y := synthesizeDataset(rng, *samples, *phishingRate, len(featureNames))

	// Hold out 20% for evaluation
	split := len(X) * 8 / 10
	trainX, trainY := X[:split], y[:split]
	testX, testY := X[split:], y[split:]

	means, scales := fitScaler(trainX)
	scale(trainX, means, scales)
	scale(testX, means, scales)

	logger.Info("Training logistic regression",
		zap.Int("epochs", *epochs),
		zap.Float64("learning_rate", *learningRate))

	weights, bias := fitLogistic(trainX, trainY, *epochs, *learningRate)

	trainAcc := accuracy(trainX, trainY, weights, bias)
	testAcc := accuracy(testX, testY, weights, bias)
	logger.Info("Model trained",
		zap.Float64("train_accuracy", trainAcc),
		zap.Float64("test_accuracy", testAcc))

	artifact := &model.Artifact{
		FeatureNames: featureNames,
		Means:        means,
		Scales:       scales,
		Weights:      weights,
		Bias:         bias,
		Metadata: model.Metadata{
			TrainedAt:     time.Now().UTC().Format(time.RFC3339),
			Samples:       *samples,
			Epochs:        *epochs,
			LearningRate:  *learningRate,
			TrainAccuracy: trainAcc,
			TestAccuracy:  testAcc,
		},
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}
	if err := model.SaveArtifact(*outPath, artifact); err != nil {
		logger.Fatal("Failed to save model artifact", zap.Error(err))
	}

	logger.Info("Model artifact saved", zap.String("path", *outPath))
}

// synthesizeDataset draws legitimate samples skewed toward 0 and phishing
// samples skewed toward 1, then shuffles them. Illustrative only: the model
// ships without real labeled mail.
func synthesizeDataset(rng *rand.Rand, n int, phishingRate float64, features int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)

	nPhishing := int(float64(n) * phishingRate)
	for i := 0; i < n; i++ {
		row := make([]float64, features)
		if i < nPhishing {
			for j := range row {
				row[j] = 1 - math.Pow(rng.Float64(), 2)
			}
			y[i] = 1
		} else {
			for j := range row {
				row[j] = math.Pow(rng.Float64(), 2)
			}
			y[i] = 0
		}
		X[i] = row
	}

	rng.Shuffle(n, func(a, b int) {
		X[a], X[b] = X[b], X[a]
		y[a], y[b] = y[b], y[a]
	})
	return X, y
}

func fitScaler(X [][]float64) (means, scales []float64) {
	features := len(X[0])
	means = make([]float64, features)
	scales = make([]float64, features)

	for j := 0; j < features; j++ {
		sum := 0.0
		for i := range X {
			sum += X[i][j]
		}
		means[j] = sum / float64(len(X))

		variance := 0.0
		for i := range X {
			d := X[i][j] - means[j]
			variance += d * d
		}
		scales[j] = math.Sqrt(variance / float64(len(X)))
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func scale(X [][]float64, means, scales []float64) {
	for i := range X {
		for j := range X[i] {
			X[i][j] = (X[i][j] - means[j]) / scales[j]
		}
	}
}

// fitLogistic runs full-batch gradient descent on the logistic loss.
func fitLogistic(X [][]float64, y []float64, epochs int, lr float64) (weights []float64, bias float64) {
	features := len(X[0])
	weights = make([]float64, features)
	n := float64(len(X))

	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([]float64, features)
		gradB := 0.0

		for i := range X {
			residual := sigmoid(dot(weights, X[i])+bias) - y[i]
			for j := range gradW {
				gradW[j] += residual * X[i][j]
			}
			gradB += residual
		}

		for j := range weights {
			weights[j] -= lr * gradW[j] / n
		}
		bias -= lr * gradB / n
	}
	return weights, bias
}

func accuracy(X [][]float64, y []float64, weights []float64, bias float64) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i := range X {
		p := sigmoid(dot(weights, X[i]) + bias)
		label := 0.0
		if p >= 0.5 {
			label = 1.0
		}
		if label == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
