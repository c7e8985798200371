// Command langid-bench evaluates a language identification model against a
// labeled sample set and reports accuracy and per-language metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	langid "github.com/jamesainslie/go-langid"
	"github.com/jamesainslie/go-langid/internal/bench"
)

func main() {
	var (
		modelDir = flag.String("model", "", "Model directory (default: LANGID_MODEL_DIR or the user cache)")
		models   = flag.String("models", "", "Comma-separated model directories for comparison")
		samples  = flag.String("samples", "", "Tab-separated lang<TAB>text evaluation file")
		dir      = flag.String("dir", "", "Evaluation directory of <lang>.txt files")
		poolSize = flag.Int("pool", 0, "Inference sessions (0 = one per CPU)")
	)
	flag.Parse()

	if (*samples == "") == (*dir == "") {
		fmt.Fprintln(os.Stderr, "error: exactly one of -samples or -dir required")
		flag.Usage()
		os.Exit(1)
	}

	var set []bench.Sample
	var err error
	var source string
	if *samples != "" {
		set, err = bench.LoadSamples(*samples)
		source = *samples
	} else {
		set, err = bench.LoadDir(*dir)
		source = *dir
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading samples: %v\n", err)
		os.Exit(1)
	}
	if len(set) == 0 {
		fmt.Fprintf(os.Stderr, "error: no samples in %s\n", source)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d samples from %s\n\n", len(set), source)

	ctx := context.Background()

	if *models != "" {
		runComparison(ctx, strings.Split(*models, ","), set, *poolSize)
	} else {
		runSingle(ctx, *modelDir, set, *poolSize)
	}
}

func runSingle(ctx context.Context, modelDir string, set []bench.Sample, poolSize int) {
	id, err := newIdentifier(modelDir, poolSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading model: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = id.Close() }()

	m, elapsed, err := evaluate(ctx, id, set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error evaluating: %v\n", err)
		os.Exit(1)
	}

	perSample := elapsed / time.Duration(len(set))
	fmt.Printf("Accuracy: %.4f  Macro F1: %.4f  (%d samples in %s, %s/sample)\n",
		m.Accuracy, m.MacroF1, m.Total, elapsed.Round(time.Millisecond), perSample.Round(time.Microsecond))
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("%-8s %-8s %-8s %-8s %-8s\n", "Lang", "Support", "Prec", "Rec", "F1")

	for _, lang := range m.Languages() {
		lm := m.PerLanguage[lang]
		fmt.Printf("%-8s %-8d %-8.2f %-8.2f %-8.2f\n",
			lang, lm.Support, lm.Precision, lm.Recall, lm.F1)
	}
}

func runComparison(ctx context.Context, modelDirs []string, set []bench.Sample, poolSize int) {
	fmt.Println("Model Comparison")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("%-30s %-10s %-10s %-10s\n", "Model", "Acc", "MacroF1", "Time")

	for _, dir := range modelDirs {
		dir = strings.TrimSpace(dir)
		id, err := newIdentifier(dir, poolSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error with %s: %v\n", dir, err)
			continue
		}

		m, elapsed, err := evaluate(ctx, id, set)
		_ = id.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error with %s: %v\n", dir, err)
			continue
		}

		fmt.Printf("%-30s %-10.4f %-10.4f %-10s\n",
			dir, m.Accuracy, m.MacroF1, elapsed.Round(time.Millisecond))
	}
}

func newIdentifier(modelDir string, poolSize int) (*langid.Identifier, error) {
	var opts []langid.Option
	if poolSize > 0 {
		opts = append(opts, langid.WithPoolSize(poolSize))
	}
	if modelDir == "" {
		return langid.NewDefault(opts...)
	}
	return langid.New(modelDir, opts...)
}

func evaluate(ctx context.Context, id *langid.Identifier, set []bench.Sample) (bench.Metrics, time.Duration, error) {
	outcomes := make([]bench.Outcome, 0, len(set))

	start := time.Now()
	for _, s := range set {
		got, err := id.Classify(ctx, []byte(s.Text))
		if err != nil {
			return bench.Metrics{}, 0, fmt.Errorf("classifying %q: %w", s.Text, err)
		}
		outcomes = append(outcomes, bench.Outcome{Want: s.Lang, Got: got})
	}
	elapsed := time.Since(start)

	return bench.Evaluate(outcomes), elapsed, nil
}
