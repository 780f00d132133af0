package gtf

import "fmt"

// MalformedLineError reports a structural problem with one input line:
// wrong field count, non-numeric coordinates, bad strand. Line is 1-based
// and counts every physical line, including comments and blanks.
type MalformedLineError struct {
	Line int
	Msg  string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("gtf: line %d: %s", e.Line, e.Msg)
}

// MalformedAttributeError reports a tokenizer failure inside the attribute
// field. Fragment holds the offending portion of the field.
type MalformedAttributeError struct {
	Line     int
	Fragment string
	Msg      string
}

func (e *MalformedAttributeError) Error() string {
	return fmt.Sprintf("gtf: line %d: attributes: %s near %q", e.Line, e.Msg, e.Fragment)
}
