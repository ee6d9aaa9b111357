package plumbing

import "fmt"

const (
	recordErrorTemplateConstant      = "malformed %s record %d: %s"
	unexpectedArityTemplateConstant  = "expected %d fields, got %d"
	invalidNumberTemplateConstant    = "invalid %s %q"
	unknownScopeTemplateConstant     = "unknown configuration scope %q"
	missingSeparatorTemplateConstant = "missing %s separator"
)

// RecordError reports a record that does not match the expected output format. Record is the
// zero-based index of the record within the parsed output.
type RecordError struct {
	Format string
	Record int
	Reason string
}

func (failure RecordError) Error() string {
	return fmt.Sprintf(recordErrorTemplateConstant, failure.Format, failure.Record, failure.Reason)
}

func arityError(format string, record int, expected int, actual int) RecordError {
	return RecordError{Format: format, Record: record, Reason: fmt.Sprintf(unexpectedArityTemplateConstant, expected, actual)}
}
