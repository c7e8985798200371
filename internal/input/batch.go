package input

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Sentinels printed in place of a language code when a listed path cannot
// be classified.
const (
	noSuchFile = "NOSUCHFILE"
	notAFile   = "NOTAFILE"
)

// Batch reads one file path per line from in, classifies the contents of
// each file, and prints a path,length,language row per path. Paths that
// cannot be opened or that name directories produce sentinel rows instead
// of stopping the run. Blank lines are skipped.
func Batch(ctx context.Context, c Classifier, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		line, rerr := reader.ReadBytes('\n')
		path := trimPath(line)
		if len(path) > 0 {
			if err := classifyFile(ctx, c, path, out); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// classifyFile maps one file into memory, classifies it, and prints its
// row. Unreadable paths and directories are reported inline as sentinel
// rows. Mapping failures on a regular file are fatal.
func classifyFile(ctx context.Context, c Classifier, path string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		_, werr := fmt.Fprintf(out, "%s,0,%s\n", path, noSuchFile)
		return werr
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		_, werr := fmt.Fprintf(out, "%s,0,%s\n", path, noSuchFile)
		return werr
	}
	if info.IsDir() {
		_, werr := fmt.Fprintf(out, "%s,0,%s\n", path, notAFile)
		return werr
	}

	if info.Size() == 0 {
		lang, err := c.Classify(ctx, nil)
		if err != nil {
			return err
		}
		_, werr := fmt.Fprintf(out, "%s,0,%s\n", path, lang)
		return werr
	}

	text, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", path, err)
	}

	lang, cerr := c.Classify(ctx, text)
	if err := text.Unmap(); err != nil {
		return fmt.Errorf("unmapping %s: %w", path, err)
	}
	if cerr != nil {
		return cerr
	}

	_, err = fmt.Fprintf(out, "%s,%d,%s\n", path, info.Size(), lang)
	return err
}

// trimPath strips the line terminator from a path-list entry.
func trimPath(line []byte) string {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return string(line)
}
