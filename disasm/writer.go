package disasm

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/sarchlab/sim8086/insts"
)

// Writer writes a listing: the directive line once, then one line per
// instruction.
type Writer struct {
	w       *bufio.Writer
	started bool
	lines   int
}

// NewWriter creates a listing writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Lines returns the number of instruction lines written.
func (w *Writer) Lines() int {
	return w.lines
}

// WriteHeader writes the directive if it has not been written yet.
func (w *Writer) WriteHeader() error {
	if w.started {
		return nil
	}
	w.started = true
	return w.write(Directive + "\n\n")
}

// WriteLine writes one instruction line.
func (w *Writer) WriteLine(line string) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.write(line + "\n"); err != nil {
		return err
	}
	w.lines++
	return nil
}

// Comment writes a comment line. Comments may precede the directive.
func (w *Writer) Comment(text string) error {
	if text == "" {
		return w.write(";\n")
	}
	return w.write("; " + text + "\n")
}

// Flush writes the directive for an empty listing and flushes buffered
// output.
func (w *Writer) Flush() error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return errors.Wrap(insts.ErrRenderFailure, err.Error())
	}
	return nil
}

func (w *Writer) write(s string) error {
	if _, err := w.w.WriteString(s); err != nil {
		return errors.Wrap(insts.ErrRenderFailure, err.Error())
	}
	return nil
}
