package core

import "errors"

// Failure classes shared across the generation pipeline. Callers check
// against these with errors.Is.
//
// ErrMissingFile and ErrFormat (and ErrNoTable, which is a template-shape
// variant of the latter) are setup-phase failures: they abort the whole
// run. ErrNoRecipient and ErrConversion mark per-item failures; both
// flows log the affected group or row, count it as skipped and continue.
var (
	// ErrMissingFile indicates a required input path does not exist.
	ErrMissingFile = errors.New("required file not found")

	// ErrFormat indicates an input file is not in the expected format,
	// e.g. a spreadsheet that cannot be opened or a corrupt template.
	ErrFormat = errors.New("file is not in the expected format")

	// ErrNoTable indicates a template used with the table-population flow
	// contains no table.
	ErrNoTable = errors.New("template contains no table")

	// ErrNoRecipient indicates a group resolved no usable To address from
	// either its rows or the recipient mapping.
	ErrNoRecipient = errors.New("no addressable recipient")

	// ErrConversion indicates the document-to-message conversion failed
	// for one group or row.
	ErrConversion = errors.New("message conversion failed")
)
