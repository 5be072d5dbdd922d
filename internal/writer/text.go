package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// TextWriter writes the cleaned statement text, one line per row, as it
// was fed to the parser.
type TextWriter struct{}

// WriteToFile writes text to the given path.
func (w *TextWriter) WriteToFile(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, text); err != nil {
		return err
	}
	return f.Close()
}

// Write writes text followed by a trailing newline when it is not empty.
func (w *TextWriter) Write(out io.Writer, text string) error {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(out, text); err != nil {
		return fmt.Errorf("failed to write text: %w", err)
	}
	return nil
}
