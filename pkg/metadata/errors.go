package metadata

import (
	"errors"
	"fmt"

	"github.com/gnana997/docgen/pkg/codeframe"
	"github.com/gnana997/docgen/pkg/docgen"
)

// ErrorKind classifies extraction errors.
type ErrorKind string

const (
	// KindSyntax is a file that does not parse.
	KindSyntax ErrorKind = "syntax"
	// KindExtraction is any other extractor failure.
	KindExtraction ErrorKind = "extraction"
)

// ExtractionError is a fatal error for one file, carrying a code frame of
// the failing source when a location is known.
type ExtractionError struct {
	Kind      ErrorKind
	Message   string
	Path      string
	Location  *codeframe.Location
	CodeFrame string
	Err       error
}

func (e *ExtractionError) Error() string {
	msg := e.Message
	if e.Location != nil {
		msg = fmt.Sprintf("%s (%d:%d)", msg, e.Location.Line, e.Location.Column)
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newExtractionError(err error, path string, content []byte) *ExtractionError {
	xerr := &ExtractionError{
		Kind:    KindExtraction,
		Message: err.Error(),
		Path:    path,
		Err:     err,
	}

	var perr *docgen.ParseError
	if !errors.As(err, &perr) {
		return xerr
	}

	xerr.Kind = KindSyntax
	xerr.Message = perr.Message
	if perr.Filename != "" {
		xerr.Path = perr.Filename
	}
	if perr.Location != nil {
		loc := codeframe.Location{Line: perr.Location.Line, Column: perr.Location.Column}
		xerr.Location = &loc
		opts := codeframe.DefaultOptions()
		opts.Message = perr.Message
		xerr.CodeFrame = codeframe.Frame(string(content), loc, opts)
	}
	return xerr
}
