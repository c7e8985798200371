//go:build ignore

// Split a Tatoeba sentences export into evaluation sets for langid-bench.
// Produces one <lang>.txt file per supported language plus a combined
// dev.tsv, in the formats the benchmark harness reads.
// Usage: go run ./scripts/split-tatoeba.go sentences.csv testdata/tatoeba
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Tatoeba labels sentences with ISO 639-3 codes; the model reports ISO
// 639-1. Only the languages the default model knows are kept.
var iso3to1 = map[string]string{
	"ara": "ar",
	"bul": "bg",
	"cmn": "zh",
	"deu": "de",
	"ell": "el",
	"eng": "en",
	"fra": "fr",
	"hin": "hi",
	"ita": "it",
	"jpn": "ja",
	"nld": "nl",
	"pol": "pl",
	"por": "pt",
	"rus": "ru",
	"spa": "es",
	"swa": "sw",
	"tha": "th",
	"tur": "tr",
	"urd": "ur",
	"vie": "vi",
}

// maxPerLang caps each language so frequent ones don't dominate the set.
const maxPerLang = 1000

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: go run ./scripts/split-tatoeba.go sentences.csv OUTDIR")
		os.Exit(1)
	}
	inPath, outDir := os.Args[1], os.Args[2]

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	fmt.Printf("Processing %s...\n", inPath)
	counts, err := split(inPath, outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inPath, err)
		os.Exit(1)
	}

	langs := make([]string, 0, len(counts))
	total := 0
	for lang, n := range counts {
		langs = append(langs, lang)
		total += n
	}
	sort.Strings(langs)
	for _, lang := range langs {
		fmt.Printf("  -> %s (%d sentences)\n", filepath.Join(outDir, lang+".txt"), counts[lang])
	}

	fmt.Printf("\nDone! %d sentences across %d languages in %s\n", total, len(langs), outDir)
}

func split(inPath, outDir string) (map[string]int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer in.Close()

	dev, err := os.Create(filepath.Join(outDir, "dev.tsv"))
	if err != nil {
		return nil, fmt.Errorf("creating dev.tsv: %w", err)
	}
	defer dev.Close()
	devWriter := bufio.NewWriter(dev)

	perLang := make(map[string]*bufio.Writer)
	files := make(map[string]*os.File)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	counts := make(map[string]int)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		// Export rows are id<TAB>iso639-3<TAB>text.
		fields := strings.SplitN(scanner.Text(), "\t", 3)
		if len(fields) != 3 {
			continue
		}
		lang, ok := iso3to1[fields[1]]
		if !ok || counts[lang] >= maxPerLang {
			continue
		}
		text := strings.TrimSpace(fields[2])
		if text == "" {
			continue
		}

		writer, ok := perLang[lang]
		if !ok {
			f, err := os.Create(filepath.Join(outDir, lang+".txt"))
			if err != nil {
				return nil, fmt.Errorf("creating %s.txt: %w", lang, err)
			}
			files[lang] = f
			writer = bufio.NewWriter(f)
			perLang[lang] = writer
		}

		if _, err := fmt.Fprintf(writer, "%s\n", text); err != nil {
			return nil, fmt.Errorf("writing %s.txt: %w", lang, err)
		}
		if _, err := fmt.Fprintf(devWriter, "%s\t%s\n", lang, text); err != nil {
			return nil, fmt.Errorf("writing dev.tsv: %w", err)
		}
		counts[lang]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning export: %w", err)
	}

	for lang, writer := range perLang {
		if err := writer.Flush(); err != nil {
			return nil, fmt.Errorf("flushing %s.txt: %w", lang, err)
		}
	}
	if err := devWriter.Flush(); err != nil {
		return nil, fmt.Errorf("flushing dev.tsv: %w", err)
	}

	return counts, nil
}
