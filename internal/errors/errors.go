// Package errors provides categorized errors for the configuration service.
//
// Errors are built with a fluent builder so call sites can attach the
// component, category and structured context in one expression:
//
//	return errors.Newf("client name is required").
//		Component("clientconfig").
//		Category(errors.CategoryValidation).
//		Build()
//
// Categorized errors match the category sentinels with errors.Is, which is
// how the HTTP layer picks a status code.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"strings"
)

// Category classifies an error by how callers must react to it.
type Category string

const (
	CategoryGeneric         Category = "generic"
	CategoryValidation      Category = "validation"
	CategoryNotFound        Category = "not-found"
	CategoryStore           Category = "store"
	CategorySchemaEvolution Category = "schema-evolution"
	CategoryAggregation     Category = "aggregation"
	CategoryConfiguration   Category = "configuration"
	CategoryUnauthorized    Category = "unauthorized"
)

// Category sentinels. errors.Is(err, ErrNotFound) reports whether err carries
// CategoryNotFound anywhere in its chain.
var (
	ErrValidation = &categorySentinel{CategoryValidation}
	ErrNotFound   = &categorySentinel{CategoryNotFound}
	ErrStore      = &categorySentinel{CategoryStore}

	ErrUnauthorized = &categorySentinel{CategoryUnauthorized}
)

type categorySentinel struct {
	category Category
}

func (s *categorySentinel) Error() string { return string(s.category) + " error" }

// EnhancedError is an error annotated with a component, a category and
// free-form context.
type EnhancedError struct {
	Err       error
	category  Category
	component string
	context   map[string]any
}

func (e *EnhancedError) Error() string {
	if e.Err == nil {
		return string(e.category) + " error"
	}
	return e.Err.Error()
}

func (e *EnhancedError) Unwrap() error { return e.Err }

// Is matches category sentinels so callers need not type-assert.
func (e *EnhancedError) Is(target error) bool {
	if s, ok := target.(*categorySentinel); ok {
		return s.category == e.category
	}
	return false
}

func (e *EnhancedError) Category() Category { return e.category }

func (e *EnhancedError) Component() string { return e.component }

// Context returns a copy of the attached context values.
func (e *EnhancedError) Context() map[string]any {
	return maps.Clone(e.context)
}

// ErrorBuilder accumulates annotations for an EnhancedError.
type ErrorBuilder struct {
	err *EnhancedError
}

// New starts building an EnhancedError around err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: &EnhancedError{Err: err, category: CategoryGeneric}}
}

// Newf starts building an EnhancedError from a formatted message.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (b *ErrorBuilder) Component(component string) *ErrorBuilder {
	b.err.component = component
	return b
}

func (b *ErrorBuilder) Category(category Category) *ErrorBuilder {
	b.err.category = category
	return b
}

func (b *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if b.err.context == nil {
		b.err.context = make(map[string]any)
	}
	b.err.context[key] = value
	return b
}

func (b *ErrorBuilder) Build() *EnhancedError {
	return b.err
}

// CategoryOf returns the category of the outermost EnhancedError in err's
// chain, or CategoryGeneric.
func CategoryOf(err error) Category {
	var ee *EnhancedError
	if As(err, &ee) {
		return ee.category
	}
	return CategoryGeneric
}

// Validation, NotFound and Store are shorthands for the three categories the
// inbound surface reports to callers.
func Validation(component, format string, args ...any) *EnhancedError {
	return Newf(format, args...).Component(component).Category(CategoryValidation).Build()
}

func NotFound(component, format string, args ...any) *EnhancedError {
	return Newf(format, args...).Component(component).Category(CategoryNotFound).Build()
}

func Store(component string, err error) *EnhancedError {
	return New(err).Component(component).Category(CategoryStore).Build()
}

// Is, As, Unwrap and Join forward to the standard library so packages only
// import this one.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Unwrap(err error) error { return stderrors.Unwrap(err) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// Messages flattens a joined error into its individual messages.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, Messages(e)...)
		}
		return out
	}
	return []string{strings.TrimSpace(err.Error())}
}
