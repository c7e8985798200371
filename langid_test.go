package langid

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jamesainslie/go-langid/tokenizer"
)

// writeTokenizerModel builds a minimal SentencePiece model file so tests can
// run without a real vocabulary.
func writeTokenizerModel(t *testing.T, dir string) {
	t.Helper()

	pieces := []struct {
		text  string
		score float32
		typ   uint64
	}{
		{"<unk>", 0, 2},
		{"<s>", 0, 3},
		{"</s>", 0, 3},
		{"▁a", -1, 1},
		{"▁b", -1.5, 1},
	}

	var data []byte
	for _, p := range pieces {
		var msg []byte
		msg = protowire.AppendTag(msg, 1, protowire.BytesType)
		msg = protowire.AppendString(msg, p.text)
		msg = protowire.AppendTag(msg, 2, protowire.Fixed32Type)
		msg = protowire.AppendFixed32(msg, math.Float32bits(p.score))
		msg = protowire.AppendTag(msg, 3, protowire.VarintType)
		msg = protowire.AppendVarint(msg, p.typ)

		data = protowire.AppendTag(data, 1, protowire.BytesType)
		data = protowire.AppendBytes(data, msg)
	}

	if err := os.WriteFile(filepath.Join(dir, TokenizerFile), data, 0o644); err != nil {
		t.Fatalf("writing tokenizer model: %v", err)
	}
}

func writeLabelConfig(t *testing.T, dir string) {
	t.Helper()

	config := `{"id2label": {"0": "en", "1": "fr", "2": "de"}}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(config), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

// newOfflineIdentifier builds an Identifier with a working tokenizer and
// label table but no session pool. Only code paths that never reach the
// pool may use it.
func newOfflineIdentifier(t *testing.T) *Identifier {
	t.Helper()

	dir := t.TempDir()
	writeTokenizerModel(t, dir)

	tok, err := tokenizer.New(filepath.Join(dir, TokenizerFile))
	if err != nil {
		t.Fatalf("tokenizer.New failed: %v", err)
	}

	return &Identifier{
		tokenizer: tok,
		labels:    []string{"en", "fr", "de"},
		maxLength: 512,
	}
}

func isORTUnavailable(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "onnxruntime") ||
		strings.Contains(s, "shared library") ||
		strings.Contains(s, "initializing ONNX runtime")
}

// openTestIdentifier loads the model named by LANGID_MODEL_DIR, skipping
// when none is installed or the ONNX runtime is unavailable.
func openTestIdentifier(t *testing.T, opts ...Option) *Identifier {
	t.Helper()

	if os.Getenv(envModelDir) == "" {
		t.Skip("skipping: LANGID_MODEL_DIR not set")
	}
	id, err := NewDefault(opts...)
	if err != nil {
		if errors.Is(err, ErrModelNotFound) || isORTUnavailable(err) {
			t.Skipf("skipping: %v", err)
		}
		t.Fatalf("NewDefault failed: %v", err)
	}
	return id
}

func TestNew_ModelNotFound(t *testing.T) {
	_, err := New(t.TempDir())
	if err == nil {
		t.Fatal("expected error for empty model dir")
	}
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestNew_ConfigNotFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelFile), nil, 0o644); err != nil {
		t.Fatalf("writing fake model: %v", err)
	}

	_, err := New(dir)
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestNew_BadConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelFile), nil, 0o644); err != nil {
		t.Fatalf("writing fake model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("{"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := New(dir)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got: %v", err)
	}
}

func TestNew_TokenizerNotFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelFile), nil, 0o644); err != nil {
		t.Fatalf("writing fake model: %v", err)
	}
	writeLabelConfig(t, dir)

	_, err := New(dir)
	if err == nil {
		t.Fatal("expected error for missing tokenizer")
	}
	if !errors.Is(err, ErrTokenizerFailed) {
		t.Errorf("expected ErrTokenizerFailed, got: %v", err)
	}
}

func TestNew_InvalidModel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelFile), []byte("not onnx"), 0o644); err != nil {
		t.Fatalf("writing fake model: %v", err)
	}
	writeLabelConfig(t, dir)
	writeTokenizerModel(t, dir)

	// Session creation fails whether or not the ONNX runtime is present;
	// both failures surface as ErrInvalidModel.
	_, err := New(dir, WithPoolSize(1))
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got: %v", err)
	}
}

func TestDefaultModelDir_Env(t *testing.T) {
	t.Setenv(envModelDir, "/opt/models/lid")

	dir, err := DefaultModelDir()
	if err != nil {
		t.Fatalf("DefaultModelDir failed: %v", err)
	}
	if dir != "/opt/models/lid" {
		t.Errorf("DefaultModelDir = %q, want /opt/models/lid", dir)
	}
}

func TestDefaultModelDir_CacheFallback(t *testing.T) {
	t.Setenv(envModelDir, "")

	dir, err := DefaultModelDir()
	if err != nil {
		t.Skipf("no user cache dir on this system: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join("go-langid", "default")) {
		t.Errorf("DefaultModelDir = %q, want go-langid/default suffix", dir)
	}
}

func TestNewDefault_NoModelInstalled(t *testing.T) {
	t.Setenv(envModelDir, t.TempDir())

	_, err := NewDefault()
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	id := newOfflineIdentifier(t)

	tests := []struct {
		name string
		text []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"newline only", []byte("\n")},
		{"whitespace", []byte(" \t \n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, err := id.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if lang != Undetermined {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, lang, Undetermined)
			}
		})
	}
}

func TestRank_EmptyInput(t *testing.T) {
	id := newOfflineIdentifier(t)

	preds, err := id.Rank(context.Background(), nil)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if preds != nil {
		t.Errorf("expected nil predictions for empty input, got %v", preds)
	}
}

func TestLanguages_ReturnsCopy(t *testing.T) {
	id := newOfflineIdentifier(t)

	langs := id.Languages()
	langs[0] = "xx"

	if id.Languages()[0] != "en" {
		t.Error("Languages must return a copy of the label table")
	}
}

func TestIdentifier_Close_NoPool(t *testing.T) {
	id := &Identifier{}

	if err := id.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := id.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestSoftmax(t *testing.T) {
	tests := []struct {
		name   string
		logits []float32
		want   []float32
		delta  float32
	}{
		{"uniform", []float32{0, 0}, []float32{0.5, 0.5}, 0.001},
		{"large values", []float32{1000, 1000}, []float32{0.5, 0.5}, 0.001},
		{"ordered", []float32{0, 1}, []float32{0.2689, 0.7311}, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := softmax(tt.logits)
			for i := range tt.want {
				if diff := got[i] - tt.want[i]; diff < -tt.delta || diff > tt.delta {
					t.Errorf("softmax(%v)[%d] = %f, want ~%f", tt.logits, i, got[i], tt.want[i])
				}
			}

			var sum float32
			for _, p := range got {
				sum += p
			}
			if sum < 0.999 || sum > 1.001 {
				t.Errorf("softmax(%v) sums to %f", tt.logits, sum)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	id := openTestIdentifier(t)
	defer func() { _ = id.Close() }()

	lang, err := id.Classify(context.Background(), []byte("Hello, how are you today?"))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	known := false
	for _, l := range id.Languages() {
		if l == lang {
			known = true
			break
		}
	}
	if !known {
		t.Errorf("Classify returned %q, not in the label table", lang)
	}
	t.Logf("Classify(english sample) = %s", lang)
}

func TestRank(t *testing.T) {
	id := openTestIdentifier(t)
	defer func() { _ = id.Close() }()

	preds, err := id.Rank(context.Background(), []byte("Bonjour tout le monde."))
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	if len(preds) != len(id.Languages()) {
		t.Fatalf("Rank returned %d predictions for %d languages", len(preds), len(id.Languages()))
	}

	var sum float32
	for i, p := range preds {
		sum += p.Prob
		if i > 0 && p.Prob > preds[i-1].Prob {
			t.Errorf("predictions not sorted: %v before %v", preds[i-1], p)
		}
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("probabilities sum to %f", sum)
	}
}

func TestClassify_ContextCancelled(t *testing.T) {
	id := openTestIdentifier(t)
	defer func() { _ = id.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := id.Classify(ctx, []byte("Hello world."))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
