package utils

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
	"gopkg.in/go-playground/validator.v9"
)

// Validator implementation.
type validatorProvider struct {
	sync.Mutex
	validator *validator.Validate
	logger    common.ILoggerProvider
}

// Known unit tokens accepted in the card config.
var knownUnits = []string{
	"", "c", "°c", "celsius", "f", "°f", "fahrenheit",
	"mph", "km/h", "kph", "m/s", "mps", "kn", "kt", "kt/h",
	"mm", "mm/h", "in", "in/h", "inch", "inches", "%",
}

// NewValidator constructs a new validator.
func NewValidator(logger common.ILoggerProvider) providers.IValidatorProvider {
	val := &validatorProvider{
		logger: logger,
	}
	v := validator.New()
	loadNewValidator(v, logger, "percent", percent)
	loadNewValidator(v, logger, "port", port)
	loadNewValidator(v, logger, "unit", unit)
	loadNewValidator(v, logger, "origin", origin)

	val.validator = v
	return val
}

// SetLogger updates the logger.
// Since logger is loaded after first init, we need to re-assign it.
func (v *validatorProvider) SetLogger(logger common.ILoggerProvider) {
	v.logger = logger
}

// Validate performs validation of a config file.
func (v *validatorProvider) Validate(object interface{}) bool {
	v.Lock()
	defer v.Unlock()

	err := defaults.Set(object)

	if err != nil {
		v.logger.Error("Failed to set default field values", err)
		return false
	}

	err = v.validator.Struct(object)
	if err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			v.logger.Error("Validation failed", err)
			return false
		}

		for _, e := range errs {
			v.logger.Warn("Validation error", common.LogFieldToken, e.Field())
		}

		return false
	}
	return true
}

// Sanitize validates object and resets every invalid top-level field
// to the value of the same field in fallback. Returns names of reset fields.
func (v *validatorProvider) Sanitize(object interface{}, fallback interface{}) []string {
	v.Lock()
	defer v.Unlock()

	err := v.validator.Struct(object)
	if nil == err {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		v.logger.Error("Validation failed", err)
		return nil
	}

	dst := reflect.ValueOf(object)
	src := reflect.ValueOf(fallback)
	if dst.Kind() != reflect.Ptr || src.Kind() != reflect.Ptr || dst.Type() != src.Type() {
		v.logger.Warn("Sanitize requires pointers of the same type")
		return nil
	}

	dst = dst.Elem()
	src = src.Elem()
	reset := make([]string, 0, len(errs))
	for _, e := range errs {
		f := dst.FieldByName(e.StructField())
		if !f.IsValid() || !f.CanSet() {
			continue
		}

		f.Set(src.FieldByName(e.StructField()))
		reset = append(reset, e.Field())
		v.logger.Warn("Invalid field reset to default", common.LogFieldToken, e.Field())
	}

	return reset
}

// Percent type validation.
func percent(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return f.Uint() <= 100
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int() >= 0 && f.Int() <= 100
	case reflect.Float32, reflect.Float64:
		return f.Float() >= 0 && f.Float() <= 100
	}

	return false
}

// Port type validation.
func port(fl validator.FieldLevel) bool {
	return isPort(fl.Field().Int())
}

// Unit token validation.
func unit(fl validator.FieldLevel) bool {
	u := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	for _, v := range knownUnits {
		if v == u {
			return true
		}
	}

	return false
}

// Origin validation: scheme://host[:port] or literal null.
func origin(fl validator.FieldLevel) bool {
	o := fl.Field().String()
	if "" == o || "null" == o {
		return true
	}

	u, err := url.Parse(o)
	if err != nil {
		return false
	}

	return "" != u.Scheme && "" != u.Host && ("" == u.Path || "/" == u.Path) && "" == u.RawQuery
}

// Validates whether value could be used as a port.
func isPort(val int64) bool {
	return val > 0 && val <= 65535
}

// Attempt to register a new validator
func loadNewValidator(validator *validator.Validate, logger common.ILoggerProvider,
	name string, function validator.Func) {
	if err := validator.RegisterValidation(name, function); err != nil {
		logger.Error("Failed to register validator type", err, "type", name)
	}
}
