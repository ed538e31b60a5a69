package lint

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// ParamError reports a rejected rule parameter.
type ParamError struct {
	Key string
	Err error
}

func (e *ParamError) Error() string {
	if e.Key == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s value: %v", e.Key, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// InvalidParam builds a ParamError for key.
func InvalidParam(key, format string, args ...any) error {
	return &ParamError{Key: key, Err: fmt.Errorf(format, args...)}
}

// DecodeParams decodes the keys of a rule's mapping node into out, a pointer
// to a struct tagged with `config:"Key"`. Key matching is case-insensitive
// and scalar types are converted weakly. Keys without a matching field are
// ignored.
func DecodeParams(node *document.Node, out any) error {
	if !node.IsMapping() {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(node.Interface()); err != nil {
		return &ParamError{Err: err}
	}
	return nil
}

// ParamsHandler is a Handler for rules whose parameters fit in a struct.
type ParamsHandler[T any] struct {
	// Defaults returns a fresh parameter value.
	Defaults func() T
	// Validate checks decoded parameters. Optional.
	Validate func(*T) error
}

// Default implements Handler.
func (h ParamsHandler[T]) Default() any {
	p := h.Defaults()
	return &p
}

// Apply implements Handler. It starts from the defaults so that keys absent
// from node keep their default values.
func (h ParamsHandler[T]) Apply(node *document.Node) (any, error) {
	p := h.Defaults()
	if err := DecodeParams(node, &p); err != nil {
		return nil, err
	}
	if h.Validate != nil {
		if err := h.Validate(&p); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// Params returns the typed parameters stored in v, or the zero value and
// false when v holds a different type.
func Params[T any](v any) (*T, bool) {
	p, ok := v.(*T)
	return p, ok && p != nil
}
