// Package bench provides evaluation utilities for language identification
// models.
package bench

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sample is one labeled evaluation sentence.
type Sample struct {
	Lang string
	Text string
}

// maxLineBytes bounds a single sample line. Evaluation sets occasionally
// carry whole paragraphs per line.
const maxLineBytes = 1 << 20

// LoadSamples reads a tab-separated evaluation file with one
// language<TAB>text pair per line. Blank lines and lines starting with #
// are skipped.
func LoadSamples(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples: %w", err)
	}
	defer file.Close()

	var samples []Sample
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lang, text, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: missing tab separator", lineNo)
		}
		lang = strings.TrimSpace(lang)
		if lang == "" {
			return nil, fmt.Errorf("line %d: empty language label", lineNo)
		}
		if text == "" {
			return nil, fmt.Errorf("line %d: empty text", lineNo)
		}

		samples = append(samples, Sample{Lang: lang, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan samples: %w", err)
	}

	return samples, nil
}

// LoadDir reads an evaluation directory where each <lang>.txt file holds
// one sample per line for that language.
func LoadDir(dir string) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var samples []Sample
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".txt")
		if lang == "" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		langSamples, err := loadLangFile(path, lang)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		samples = append(samples, langSamples...)
	}

	return samples, nil
}

func loadLangFile(path, lang string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var samples []Sample
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		samples = append(samples, Sample{Lang: lang, Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}
