package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	english := writeTestFile(t, dir, "a.txt", "Hello world.")
	french := writeTestFile(t, dir, "b.txt", "Bonjour le monde.")

	in := strings.NewReader(english + "\n" + french + "\n")
	var out bytes.Buffer

	if err := Batch(context.Background(), newStubClassifier(), in, &out); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	want := fmt.Sprintf("%s,12,en\n%s,17,fr\n", english, french)
	if got := out.String(); got != want {
		t.Errorf("Batch() output = %q, want %q", got, want)
	}
}

func TestBatch_NoSuchFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")
	present := writeTestFile(t, dir, "present.txt", "Hello world.")

	// A bad path produces a sentinel row and the run keeps going.
	in := strings.NewReader(missing + "\n" + present + "\n")
	var out bytes.Buffer

	if err := Batch(context.Background(), newStubClassifier(), in, &out); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	want := fmt.Sprintf("%s,0,NOSUCHFILE\n%s,12,en\n", missing, present)
	if got := out.String(); got != want {
		t.Errorf("Batch() output = %q, want %q", got, want)
	}
}

func TestBatch_Directory(t *testing.T) {
	dir := t.TempDir()

	in := strings.NewReader(dir + "\n")
	var out bytes.Buffer

	if err := Batch(context.Background(), newStubClassifier(), in, &out); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	want := dir + ",0,NOTAFILE\n"
	if got := out.String(); got != want {
		t.Errorf("Batch() output = %q, want %q", got, want)
	}
}

func TestBatch_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := writeTestFile(t, dir, "empty.txt", "")

	in := strings.NewReader(empty + "\n")
	var out bytes.Buffer

	if err := Batch(context.Background(), newStubClassifier(), in, &out); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	want := empty + ",0,und\n"
	if got := out.String(); got != want {
		t.Errorf("Batch() output = %q, want %q", got, want)
	}
}

func TestBatch_PathTrimming(t *testing.T) {
	dir := t.TempDir()
	english := writeTestFile(t, dir, "a.txt", "Hello world.")

	tests := []struct {
		name string
		list string
	}{
		{name: "unterminated final path", list: english},
		{name: "crlf terminator", list: english + "\r\n"},
		{name: "blank lines skipped", list: "\n" + english + "\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := Batch(context.Background(), newStubClassifier(), strings.NewReader(tt.list), &out); err != nil {
				t.Fatalf("Batch() error = %v", err)
			}
			want := english + ",12,en\n"
			if got := out.String(); got != want {
				t.Errorf("Batch() output = %q, want %q", got, want)
			}
		})
	}
}

func TestBatch_EmptyList(t *testing.T) {
	var out bytes.Buffer

	if err := Batch(context.Background(), newStubClassifier(), strings.NewReader(""), &out); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Batch() output = %q, want empty", out.String())
	}
}

func TestBatch_ClassifierError(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "Hello world.")

	wantErr := errors.New("model gone")
	var out bytes.Buffer

	err := Batch(context.Background(), &failingClassifier{err: wantErr}, strings.NewReader(path+"\n"), &out)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Batch() error = %v, want %v", err, wantErr)
	}
}
