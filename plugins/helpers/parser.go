package helpers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/savaki/jq"
)

// ITemplateParser describes extraction expressions compiler.
type ITemplateParser interface {
	Compile(expression string) (ITemplateExpression, error)
}

// ITemplateExpression descries single pre-compiled expression.
type ITemplateExpression interface {
	Parse(payload []byte) (interface{}, error)
	ParseString(payload []byte) string
}

// Parser implementation.
type parser struct {
	functions map[string]govaluate.ExpressionFunction
}

// Parser expression.
type parserExpression struct {
	expression *govaluate.EvaluableExpression
}

// NewParser constructs a new expressions parser.
// Expressions operate on "payload" variable holding raw json document.
func NewParser() ITemplateParser {
	p := &parser{
		functions: map[string]govaluate.ExpressionFunction{
			"jq":   jqParse,
			"jqor": jqParseOr,
			"num":  float64Convert,
			"str":  strConvert,
			"fmt":  format,
			"trim": trim,
		},
	}

	return p
}

// Compile tries to pre-compile expression.
func (p *parser) Compile(expression string) (ITemplateExpression, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(expression, p.functions)
	if err != nil {
		return nil, err
	}

	return &parserExpression{
		expression: exp,
	}, nil
}

// Parse evaluates expression against json payload.
func (p *parserExpression) Parse(payload []byte) (interface{}, error) {
	params := map[string]interface{}{"payload": string(payload)}
	return p.expression.Evaluate(params)
}

// ParseString evaluates expression and returns trimmed string.
// Any evaluation failure is an empty string.
func (p *parserExpression) ParseString(payload []byte) string {
	v, err := p.Parse(payload)
	if err != nil || nil == v {
		return ""
	}

	s, _ := strConvert(v)
	return strings.TrimSpace(s.(string))
}

// JqString applies jq selector to the document and returns string value.
func JqString(payload []byte, selector string) (string, error) {
	op, err := jq.Parse(selector)
	if err != nil {
		return "", &ErrJqSyntax{Selector: selector}
	}

	val, err := op.Apply(payload)
	if err != nil {
		return "", err
	}

	if 0 == len(val) || "null" == string(val) {
		return "", nil
	}

	if '"' == val[0] {
		var s string
		if err := json.Unmarshal(val, &s); err == nil {
			return s, nil
		}
	}

	return strings.Trim(string(val), "\""), nil
}

// If only one param is supplied, returns un-marshaled json object.
// If two params are supplied, regular JQ syntax is used.
func jqParse(arguments ...interface{}) (interface{}, error) {
	if 0 == len(arguments) {
		return nil, &ErrArgumentsMismatch{Function: "jq", Count: 0}
	}

	arg1, ok := arguments[0].(string)
	if !ok {
		return nil, &ErrWrongArgument{Function: "jq", Message: "first argument is not a string"}
	}

	if 1 == len(arguments) {
		data := make(map[string]interface{})
		err := json.Unmarshal([]byte(arg1), &data)
		if err != nil {
			return nil, err
		}

		return data, nil
	}

	if 2 == len(arguments) {
		arg2, ok := arguments[1].(string)
		if !ok {
			return nil, &ErrWrongArgument{Function: "jq", Message: "second argument is not a string"}
		}

		return JqString([]byte(arg1), arg2)
	}

	return nil, &ErrArgumentsMismatch{Function: "jq", Count: len(arguments)}
}

// Same as jq but returns fallback if selector yields nothing.
func jqParseOr(arguments ...interface{}) (interface{}, error) {
	if 3 != len(arguments) {
		return nil, &ErrArgumentsMismatch{Function: "jqor", Count: len(arguments)}
	}

	fallback, err := strConvert(arguments[2])
	if err != nil {
		return nil, err
	}

	v, err := jqParse(arguments[0], arguments[1])
	if err != nil {
		return fallback, nil
	}

	s, ok := v.(string)
	if !ok || "" == strings.TrimSpace(s) {
		return fallback, nil
	}

	return s, nil
}

// Converts input param into float64.
func float64Convert(arguments ...interface{}) (interface{}, error) {
	if 1 != len(arguments) {
		return nil, &ErrArgumentsMismatch{Function: "num", Count: len(arguments)}
	}

	if s, ok := arguments[0].(string); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	a, ok := arguments[0].(float64)
	if !ok {
		return nil, &ErrWrongArgument{Function: "num", Message: "not compatible with float type"}
	}

	return a, nil
}

// Converts input param into string.
func strConvert(arguments ...interface{}) (interface{}, error) {
	if 1 != len(arguments) {
		return nil, &ErrArgumentsMismatch{Function: "str", Count: len(arguments)}
	}

	a, ok := arguments[0].(string)
	if !ok {
		return fmt.Sprintf("%v", arguments[0]), nil
	}

	return a, nil
}

// Uses fmt.Sprintf.
func format(arguments ...interface{}) (interface{}, error) {
	if 0 == len(arguments) {
		return nil, &ErrArgumentsMismatch{Function: "fmt", Count: 0}
	}

	if 1 == len(arguments) {
		return strConvert(arguments[0])
	}

	a, err := strConvert(arguments[0])
	if err != nil {
		return nil, err
	}

	return fmt.Sprintf(a.(string), arguments[1:]...), nil
}

// Trims whitespaces.
func trim(arguments ...interface{}) (interface{}, error) {
	a, err := strConvert(arguments...)
	if err != nil {
		return nil, err
	}

	return strings.TrimSpace(a.(string)), nil
}
