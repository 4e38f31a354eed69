package helpers

import "fmt"

// ErrArgumentsMismatch defines incorrect number of expression function arguments.
type ErrArgumentsMismatch struct {
	Function string
	Count    int
}

// Error formats output.
func (e *ErrArgumentsMismatch) Error() string {
	return fmt.Sprintf("%s: arguments count mismatch, received: %d", e.Function, e.Count)
}

// ErrWrongArgument defines argument of unexpected type.
type ErrWrongArgument struct {
	Function string
	Message  string
}

// Error formats output.
func (e *ErrWrongArgument) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}

// ErrJqSyntax defines selector jq could not parse.
type ErrJqSyntax struct {
	Selector string
}

// Error formats output.
func (e *ErrJqSyntax) Error() string {
	return "failed to parse jq syntax: " + e.Selector
}
