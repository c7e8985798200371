// Package input implements the input strategies of the langid CLI. Every
// strategy follows the same shape: produce one unit of text, classify it,
// print one result row, and continue until the input is exhausted.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Classifier predicts the language of a buffer of text.
type Classifier interface {
	Classify(ctx context.Context, text []byte) (string, error)
}

const (
	interactiveBanner = "langid interactive mode."
	prompt            = ">>> "
	farewell          = "Bye!"
)

// Interactive prompts for one line at a time and prints a language,length
// row for each. End of input or a line holding only its terminator ends
// the session; that final line is not classified. Lengths count bytes
// including the terminator.
func Interactive(ctx context.Context, c Classifier, in io.Reader, out io.Writer) error {
	if _, err := fmt.Fprintln(out, interactiveBanner); err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	for {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return err
		}

		line, rerr := reader.ReadBytes('\n')
		if rerr != nil && rerr != io.EOF {
			return rerr
		}
		if len(line) == 0 || string(line) == "\n" {
			break
		}

		lang, err := c.Classify(ctx, line)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s,%d\n", lang, len(line)); err != nil {
			return err
		}
		// A line without a terminator means the input is done; the next
		// iteration prompts once more and ends the session.
	}

	_, err := fmt.Fprintln(out, farewell)
	return err
}

// Lines classifies every line of in, terminator included, and prints one
// language,length row per line. A final line without a terminator is still
// classified.
func Lines(ctx context.Context, c Classifier, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		line, rerr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lang, err := c.Classify(ctx, line)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "%s,%d\n", lang, len(line)); err != nil {
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

// Stream reads all of in, classifies it as one document, and prints a
// single language,length row.
func Stream(ctx context.Context, c Classifier, in io.Reader, out io.Writer) error {
	text, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	lang, err := c.Classify(ctx, text)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s,%d\n", lang, len(text))
	return err
}
