// Package validation checks decoded request bodies against their struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Error describes the first failing field as "<field> <rule>".
type Error struct {
	Field string
	Rule  string
	Param string
}

func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Rule)
}

func validate() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so messages match the request body.
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates v. Failures are returned as *Error.
func Struct(v any) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &Error{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return err
}
