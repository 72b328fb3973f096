// Package main provides the mlt command line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/serialization"
	"github.com/born-ml/mlt/nn"
	"github.com/born-ml/mlt/optim"
	"github.com/born-ml/mlt/preprocess"
)

const version = "v0.1.0-dev"

var errUsage = errors.New("usage: mlt <version|demo> [flags]")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "mlt %s\n", version)
		return nil
	case "demo":
		return runDemo(args[1:], stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

type demoConfig struct {
	epochs  int
	seed    uint64
	verbose bool
	save    string
}

func runDemo(args []string, stdout, stderr io.Writer) error {
	var cfg demoConfig
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.epochs, "epochs", 500, "gradient descent epochs for the classifier")
	fs.Uint64Var(&cfg.seed, "seed", 1, "random seed")
	fs.BoolVar(&cfg.verbose, "v", false, "log optimizer progress")
	fs.StringVar(&cfg.save, "save", "", "write the trained autoencoder parameters to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed+1))

	accuracy := classifierDemo(cfg, rng, logger)
	fmt.Fprintf(stdout, "classifier accuracy: %.3f\n", accuracy)

	ae, aeErr, pcaErr := autoencoderDemo(rng, logger)
	fmt.Fprintf(stdout, "autoencoder reconstruction error: %.6f (pca: %.6f)\n", aeErr, pcaErr)

	if cfg.save != "" {
		digest, err := saveModel(cfg.save, ae)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "saved %s sha256=%s\n", cfg.save, digest)
	}
	return nil
}

// classifierDemo trains a linear classifier on two standardized clusters and
// returns its accuracy on fresh rows.
func classifierDemo(cfg demoConfig, rng *rand.Rand, logger *slog.Logger) float64 {
	train, trainLabels := clusters(rng, 200)
	test, testLabels := clusters(rng, 100)

	scaler := preprocess.FitStandardizer(train)

	var observer optim.Observer
	if cfg.verbose {
		observer = optim.LogObserver(logger.With("model", "classifier"), max(cfg.epochs/10, 1))
	}

	clf := nn.NewLinearClassifier(nn.LinearClassifierConfig{
		Input:  2,
		Output: 2,
		Optimizer: optim.NewGradientDescent(optim.GradientDescentConfig{
			Epochs:       cfg.epochs,
			BatchSize:    32,
			LearningRate: 0.05,
			Update:       optim.UpdateMomentum,
			Shuffle:      true,
			Seed:         cfg.seed,
			Observer:     observer,
		}),
		Rand: rng,
	})
	clf.Fit(scaler.Project(train), trainLabels, true)

	return nn.Accuracy(clf.Classify(scaler.Project(test)), testLabels)
}

// autoencoderDemo fits a tied autoencoder to rows near a 2-D subspace of R^6 and
// compares its held-out reconstruction error with a 2-component PCA.
func autoencoderDemo(rng *rand.Rand, logger *slog.Logger) (*nn.TiedAutoencoder, float64, float64) {
	const dim, rank = 6, 2

	basis := mat.NewDense(rank, dim, nil)
	for i := 0; i < rank; i++ {
		for j := 0; j < dim; j++ {
			basis.Set(i, j, rng.NormFloat64())
		}
	}
	train := lowRank(rng, basis, 300)
	test := lowRank(rng, basis, 100)

	ae := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
		HiddenUnits:              rank,
		HiddenActivation:         nn.Identity{},
		ReconstructionActivation: nn.Identity{},
		Regularization:           1e-6,
		Optimizer: optim.NewLBFGS(optim.LBFGSConfig{
			Stop:     optim.ObjectiveDelta{Delta: 1e-10, MaxIterations: 1000},
			Observer: optim.LogObserver(logger.With("model", "autoencoder"), 25),
		}),
		Rand: rng,
	})
	ae.Fit(train, true)

	pca := preprocess.FitPCA(train, rank)
	return ae, ae.ReconstructionError(test), pca.ReconstructionError(test)
}

func saveModel(path string, ae *nn.TiedAutoencoder) (serialization.Digest, error) {
	f, err := os.Create(path)
	if err != nil {
		return serialization.Digest{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ae.Save(f); err != nil {
		f.Close()
		return serialization.Digest{}, fmt.Errorf("failed to save model: %w", err)
	}
	if err := f.Close(); err != nil {
		return serialization.Digest{}, fmt.Errorf("failed to close %s: %w", path, err)
	}

	f, err = os.Open(path)
	if err != nil {
		return serialization.Digest{}, fmt.Errorf("failed to reopen %s: %w", path, err)
	}
	defer f.Close()
	return serialization.ChecksumReader(f)
}

// clusters returns n points around (0, 0) and n around (4, 4), interleaved.
func clusters(rng *rand.Rand, n int) (*mat.Dense, []int) {
	x := mat.NewDense(2*n, 2, nil)
	labels := make([]int, 2*n)
	for i := range labels {
		c := i % 2
		x.Set(i, 0, 4*float64(c)+rng.NormFloat64())
		x.Set(i, 1, 4*float64(c)+rng.NormFloat64())
		labels[i] = c
	}
	return x, labels
}

// lowRank returns n rows z·basis + noise with z ~ N(0, 1).
func lowRank(rng *rand.Rand, basis *mat.Dense, n int) *mat.Dense {
	rank, dim := basis.Dims()
	z := mat.NewDense(n, rank, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < rank; j++ {
			z.Set(i, j, rng.NormFloat64())
		}
	}
	var out mat.Dense
	out.Mul(z, basis)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			out.Set(i, j, out.At(i, j)+0.01*rng.NormFloat64())
		}
	}
	return &out
}
