package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound means the project directory has no data file.
	ErrNotFound = errors.New("project not found")

	// ErrInvalidData means the data file could not be parsed or failed
	// validation.
	ErrInvalidData = errors.New("invalid project data")

	// ErrClosed is returned by operations on a closed project.
	ErrClosed = errors.New("project closed")
)

// Warning is a non-fatal problem met while the project was open.
type Warning struct {
	Op  string
	Err error
}

func (w Warning) String() string {
	return w.Op + ": " + w.Err.Error()
}

var validate = validator.New()

// validateData checks d against its struct tags.
func validateData(d Data) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidData, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "eq":
		return fmt.Sprintf("%s must be %s", field, e.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, e.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
