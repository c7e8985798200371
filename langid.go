package langid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/jamesainslie/go-langid/inference"
	"github.com/jamesainslie/go-langid/tokenizer"
)

// A model is a directory holding the classifier network, its SentencePiece
// vocabulary, and the label table.
const (
	ModelFile     = "model.onnx"
	TokenizerFile = "sentencepiece.bpe.model"
	ConfigFile    = "config.json"
)

// Undetermined is the code returned for input that carries no usable
// signal, such as empty or whitespace-only text.
const Undetermined = "und"

// envModelDir overrides the default model directory.
const envModelDir = "LANGID_MODEL_DIR"

// Identifier predicts the language of a span of text using an ONNX
// sequence-classification model. It is safe for concurrent use.
type Identifier struct {
	tokenizer *tokenizer.Tokenizer
	pool      *inference.Pool
	labels    []string
	maxLength int
	logger    *slog.Logger
}

// Prediction pairs a language code with its probability.
type Prediction struct {
	Lang string
	Prob float32
}

// New creates an Identifier from a model directory containing model.onnx,
// sentencepiece.bpe.model, and config.json.
func New(dir string, opts ...Option) (*Identifier, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	modelPath := filepath.Join(dir, ModelFile)
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	configPath := filepath.Join(dir, ConfigFile)
	labels, err := loadLabels(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	tokenizerPath := filepath.Join(dir, TokenizerFile)
	tok, err := tokenizer.New(tokenizerPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTokenizerFailed, tokenizerPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenizerFailed, err)
	}

	pool, err := inference.NewPool(modelPath, cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	cfg.logger.Debug("model loaded",
		"dir", dir,
		"languages", len(labels),
		"pool_size", cfg.poolSize)

	return &Identifier{
		tokenizer: tok,
		pool:      pool,
		labels:    labels,
		maxLength: cfg.maxLength,
		logger:    cfg.logger,
	}, nil
}

// NewDefault creates an Identifier from the default model directory: the
// directory named by LANGID_MODEL_DIR, falling back to go-langid/default
// under the user cache directory.
func NewDefault(opts ...Option) (*Identifier, error) {
	dir, err := DefaultModelDir()
	if err != nil {
		return nil, err
	}
	return New(dir, opts...)
}

// DefaultModelDir resolves the directory NewDefault loads from.
func DefaultModelDir() (string, error) {
	if dir := os.Getenv(envModelDir); dir != "" {
		return dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving cache dir: %w", ErrModelNotFound, err)
	}
	return filepath.Join(cache, "go-langid", "default"), nil
}

// Classify returns the language code of text, such as "en" or "fr". Input
// with no usable tokens returns Undetermined without running the model.
func (id *Identifier) Classify(ctx context.Context, text []byte) (string, error) {
	logits, err := id.logits(ctx, text)
	if err != nil {
		return "", err
	}
	if logits == nil {
		return Undetermined, nil
	}

	best := 0
	for i, logit := range logits {
		if logit > logits[best] {
			best = i
		}
	}
	return id.labels[best], nil
}

// Rank returns every language with its probability, most probable first.
// Input with no usable tokens returns nil.
func (id *Identifier) Rank(ctx context.Context, text []byte) ([]Prediction, error) {
	logits, err := id.logits(ctx, text)
	if err != nil {
		return nil, err
	}
	if logits == nil {
		return nil, nil
	}

	probs := softmax(logits)
	preds := make([]Prediction, len(probs))
	for i, p := range probs {
		preds[i] = Prediction{Lang: id.labels[i], Prob: p}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Prob > preds[j].Prob
	})
	return preds, nil
}

// Languages returns the language codes the model predicts, in class order.
func (id *Identifier) Languages() []string {
	out := make([]string, len(id.labels))
	copy(out, id.labels)
	return out
}

// logits tokenizes text and runs one forward pass. A nil row with nil error
// means the input had no usable tokens.
func (id *Identifier) logits(ctx context.Context, text []byte) ([]float32, error) {
	tokens := id.tokenizer.Encode(string(text))
	if len(tokens) == 0 {
		return nil, nil
	}

	// Reserve two slots for the <s> and </s> frame.
	if limit := id.maxLength - 2; len(tokens) > limit {
		tokens = tokens[:limit]
	}

	inputIDs := make([]int64, 0, len(tokens)+2)
	inputIDs = append(inputIDs, int64(id.tokenizer.BOSID()))
	for _, tok := range tokens {
		inputIDs = append(inputIDs, int64(tok))
	}
	inputIDs = append(inputIDs, int64(id.tokenizer.EOSID()))

	attentionMask := make([]int64, len(inputIDs))
	for i := range attentionMask {
		attentionMask[i] = 1
	}

	session, err := id.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer id.pool.Release(session)

	logits, err := session.Infer(ctx, inputIDs, attentionMask)
	if err != nil {
		return nil, err
	}
	if len(logits) != len(id.labels) {
		return nil, fmt.Errorf("%w: %d logits for %d labels", ErrInvalidModel, len(logits), len(id.labels))
	}
	return logits, nil
}

// Close releases the session pool. Close is idempotent.
func (id *Identifier) Close() error {
	if id.pool != nil {
		return id.pool.Close()
	}
	return nil
}

// softmax converts a logits row to probabilities.
func softmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	probs := make([]float32, len(logits))
	var sum float64
	for i, l := range logits {
		e := math.Exp(float64(l - maxLogit))
		probs[i] = float32(e)
		sum += e
	}
	for i := range probs {
		probs[i] = float32(float64(probs[i]) / sum)
	}
	return probs
}
