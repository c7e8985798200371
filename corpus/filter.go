// Package corpus filters parallel bilingual corpora by verifying the
// language of each aligned sentence pair.
package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Classifier predicts the language of one line of text. Implementations
// must be safe for concurrent use; both tagging workers share one
// Classifier.
type Classifier interface {
	Classify(ctx context.Context, text []byte) (string, error)
}

// FilterConfig names a corpus pair to filter. The corpus files are
// Prefix.SourceLang and Prefix.TargetLang; the surviving pairs are written
// to DestPrefix.SourceLang and DestPrefix.TargetLang.
type FilterConfig struct {
	Prefix     string
	SourceLang string
	TargetLang string
	DestPrefix string
	Logger     *slog.Logger
}

// FilterStats reports what a filter run scanned and kept.
type FilterStats struct {
	SourceLines int // lines tagged on the source side
	TargetLines int // lines tagged on the target side
	Pairs       int // aligned positions scanned
	Kept        int
	Dropped     int
}

type filterPaths struct {
	source     string
	target     string
	sourceTags string
	targetTags string
	sourceDest string
	targetDest string
}

func (cfg FilterConfig) paths() filterPaths {
	return filterPaths{
		source:     cfg.Prefix + "." + cfg.SourceLang,
		target:     cfg.Prefix + "." + cfg.TargetLang,
		sourceTags: cfg.Prefix + ".lid." + cfg.SourceLang,
		targetTags: cfg.Prefix + ".lid." + cfg.TargetLang,
		sourceDest: cfg.DestPrefix + "." + cfg.SourceLang,
		targetDest: cfg.DestPrefix + "." + cfg.TargetLang,
	}
}

func (cfg FilterConfig) validate() error {
	if cfg.Prefix == "" || cfg.DestPrefix == "" {
		return errors.New("corpus: prefix and destination prefix required")
	}
	if cfg.SourceLang == "" || cfg.TargetLang == "" {
		return errors.New("corpus: source and target languages required")
	}
	if cfg.SourceLang == cfg.TargetLang {
		return fmt.Errorf("corpus: source and target language are both %q", cfg.SourceLang)
	}
	if cfg.DestPrefix == cfg.Prefix {
		return errors.New("corpus: destination prefix would overwrite the corpus")
	}
	return nil
}

// Filter runs the two-phase corpus filter: first both corpus sides are
// tagged concurrently, one predicted language per line, into temporary tag
// files; then a lock-step scan over the two corpora and the two tag streams
// copies each pair whose predictions match the claimed languages verbatim
// to the destinations.
//
// The scan stops at the end of the shortest stream, so a longer side's
// extra lines are ignored; the mismatch is logged and visible in
// FilterStats. The tag files are deleted on every return path. On error the
// destination files are removed as well, so a failed run leaves no partial
// output behind.
func Filter(ctx context.Context, c Classifier, cfg FilterConfig) (FilterStats, error) {
	var stats FilterStats

	if c == nil {
		return stats, errors.New("corpus: nil classifier")
	}
	if err := cfg.validate(); err != nil {
		return stats, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := openFilterFiles(cfg.paths())
	if err != nil {
		return stats, err
	}

	err = run(ctx, c, files, &stats, cfg, logger)

	closeErr := files.closeAll()
	files.removeTags()

	if err == nil {
		err = closeErr
	}
	if err != nil {
		files.removeDests()
		return stats, err
	}
	return stats, nil
}

type filterFiles struct {
	paths filterPaths

	source     *os.File
	target     *os.File
	sourceTags *os.File // created read-write, rewound for the scan
	targetTags *os.File
	sourceDest *os.File
	targetDest *os.File
}

// openFilterFiles opens both corpus sides and creates the tag and
// destination files. On failure everything already opened is closed and
// everything created is removed.
func openFilterFiles(paths filterPaths) (*filterFiles, error) {
	f := &filterFiles{paths: paths}

	ok := false
	defer func() {
		if !ok {
			_ = f.closeAll()
			f.removeTags()
			f.removeDests()
		}
	}()

	var err error
	if f.source, err = os.Open(paths.source); err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	if f.target, err = os.Open(paths.target); err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	if f.sourceTags, err = os.Create(paths.sourceTags); err != nil {
		return nil, fmt.Errorf("creating tag file: %w", err)
	}
	if f.targetTags, err = os.Create(paths.targetTags); err != nil {
		return nil, fmt.Errorf("creating tag file: %w", err)
	}
	if f.sourceDest, err = os.Create(paths.sourceDest); err != nil {
		return nil, fmt.Errorf("creating destination: %w", err)
	}
	if f.targetDest, err = os.Create(paths.targetDest); err != nil {
		return nil, fmt.Errorf("creating destination: %w", err)
	}

	ok = true
	return f, nil
}

func (f *filterFiles) closeAll() error {
	var errs []error
	for _, file := range []*os.File{
		f.source, f.target,
		f.sourceTags, f.targetTags,
		f.sourceDest, f.targetDest,
	} {
		if file == nil {
			continue
		}
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *filterFiles) removeTags() {
	if f.sourceTags != nil {
		_ = os.Remove(f.paths.sourceTags)
	}
	if f.targetTags != nil {
		_ = os.Remove(f.paths.targetTags)
	}
}

func (f *filterFiles) removeDests() {
	if f.sourceDest != nil {
		_ = os.Remove(f.paths.sourceDest)
	}
	if f.targetDest != nil {
		_ = os.Remove(f.paths.targetDest)
	}
}

func run(ctx context.Context, c Classifier, files *filterFiles, stats *FilterStats, cfg FilterConfig, logger *slog.Logger) error {
	// Phase 1: tag both sides concurrently. The workers write to disjoint
	// files and share only the classifier; Wait is the join point.
	g, gctx := errgroup.WithContext(ctx)

	var sourceLines, targetLines int
	g.Go(func() error {
		n, err := tagSide(gctx, c, files.source, files.sourceTags)
		sourceLines = n
		if err != nil {
			return fmt.Errorf("tagging %s: %w", files.paths.source, err)
		}
		return nil
	})
	g.Go(func() error {
		n, err := tagSide(gctx, c, files.target, files.targetTags)
		targetLines = n
		if err != nil {
			return fmt.Errorf("tagging %s: %w", files.paths.target, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	stats.SourceLines = sourceLines
	stats.TargetLines = targetLines
	if sourceLines != targetLines {
		logger.Warn("corpus sides differ in length, extra lines are ignored",
			"source", files.paths.source,
			"source_lines", sourceLines,
			"target", files.paths.target,
			"target_lines", targetLines)
	}

	// Phase 2: lock-step scan.
	return scanPairs(files, stats, cfg.SourceLang, cfg.TargetLang)
}

// tagSide classifies every line of in and writes one predicted language
// code per line to out. Line terminators are part of the classified text.
// The writer is flushed before returning so the scan phase sees every tag.
func tagSide(ctx context.Context, c Classifier, in io.Reader, out io.Writer) (int, error) {
	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)

	lines := 0
	for {
		if err := ctx.Err(); err != nil {
			return lines, err
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			lang, cerr := c.Classify(ctx, line)
			if cerr != nil {
				return lines, cerr
			}
			if _, werr := writer.WriteString(lang); werr != nil {
				return lines, werr
			}
			if werr := writer.WriteByte('\n'); werr != nil {
				return lines, werr
			}
			lines++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return lines, err
		}
	}

	return lines, writer.Flush()
}

// scanPairs rewinds all four streams and advances them one line per
// iteration while every stream still has a line. Pairs whose predicted
// tags match the claimed languages are copied verbatim, terminators
// intact, in input order.
func scanPairs(files *filterFiles, stats *FilterStats, sourceLang, targetLang string) error {
	for _, file := range []*os.File{
		files.source, files.target, files.sourceTags, files.targetTags,
	} {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewinding %s: %w", file.Name(), err)
		}
	}

	source := bufio.NewReader(files.source)
	target := bufio.NewReader(files.target)
	sourceTags := bufio.NewReader(files.sourceTags)
	targetTags := bufio.NewReader(files.targetTags)

	sourceDest := bufio.NewWriter(files.sourceDest)
	targetDest := bufio.NewWriter(files.targetDest)

	for {
		sourceLine, serr := source.ReadBytes('\n')
		targetLine, terr := target.ReadBytes('\n')
		sourceTag, sterr := sourceTags.ReadBytes('\n')
		targetTag, tterr := targetTags.ReadBytes('\n')

		for _, err := range []error{serr, terr, sterr, tterr} {
			if err != nil && err != io.EOF {
				return err
			}
		}

		// The scan ends at the first exhausted stream.
		if len(sourceLine) == 0 || len(targetLine) == 0 ||
			len(sourceTag) == 0 || len(targetTag) == 0 {
			break
		}

		stats.Pairs++
		if trimTag(sourceTag) == sourceLang && trimTag(targetTag) == targetLang {
			if _, err := sourceDest.Write(sourceLine); err != nil {
				return err
			}
			if _, err := targetDest.Write(targetLine); err != nil {
				return err
			}
			stats.Kept++
		} else {
			stats.Dropped++
		}

		// A stream that ended on an unterminated line is exhausted now.
		if serr == io.EOF || terr == io.EOF || sterr == io.EOF || tterr == io.EOF {
			break
		}
	}

	if err := sourceDest.Flush(); err != nil {
		return err
	}
	return targetDest.Flush()
}

// trimTag strips the terminator from a predicted tag line. Corpus lines are
// never trimmed.
func trimTag(tag []byte) string {
	s := strings.TrimSuffix(string(tag), "\n")
	return strings.TrimSuffix(s, "\r")
}
