package tools

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// ToolDescriptor declares a tool the model may call: a unique name, a
// human-readable description, a JSON schema for its arguments, and the Go
// function that implements it. Descriptors are registered once at startup and
// immutable afterwards.
type ToolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
	Function    ToolFunc           `json:"-"`
}

// ToolFunc wraps a typed Go function behind a JSON-arguments call interface.
type ToolFunc struct {
	fn        reflect.Value
	inputType reflect.Type
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// NewToolFromFunc builds a ToolDescriptor from a function of shape
// func(context.Context, Input) (Result, error), generating the argument
// schema from the Input struct.
func NewToolFromFunc(name, description string, fn interface{}) (*ToolDescriptor, error) {
	funcType := reflect.TypeOf(fn)
	if funcType == nil || funcType.Kind() != reflect.Func {
		return nil, errors.New("provided value is not a function")
	}
	if funcType.NumIn() != 2 || funcType.In(0) != ctxType {
		return nil, errors.Errorf("tool function %s must be func(context.Context, Input) (Result, error)", name)
	}
	if funcType.NumOut() != 2 || !funcType.Out(1).Implements(errType) {
		return nil, errors.Errorf("tool function %s must return (Result, error)", name)
	}

	inputType := funcType.In(1)
	schema, err := schemaForType(inputType)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate schema for tool %s", name)
	}

	return &ToolDescriptor{
		Name:        name,
		Description: description,
		Parameters:  schema,
		Function: ToolFunc{
			fn:        reflect.ValueOf(fn),
			inputType: inputType,
		},
	}, nil
}

// Call unmarshals args into the function's input type and invokes it.
func (tf *ToolFunc) Call(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if !tf.fn.IsValid() {
		return nil, errors.New("tool function not initialized")
	}

	input := reflect.New(tf.inputType)
	if len(args) > 0 {
		if err := json.Unmarshal(args, input.Interface()); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal arguments")
		}
	}

	results := tf.fn.Call([]reflect.Value{reflect.ValueOf(ctx), input.Elem()})
	if errVal := results[1].Interface(); errVal != nil {
		return results[0].Interface(), errVal.(error)
	}
	return results[0].Interface(), nil
}

func schemaForType(t reflect.Type) (*jsonschema.Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("tool input must be a struct, got %s", t.Kind())
	}

	instance := reflect.New(t).Elem().Interface()
	reflector := jsonschema.Reflector{
		// expand definitions inline instead of using $refs
		DoNotReference: true,
	}
	schema := reflector.Reflect(instance)
	if schema.Type == "" && schema.Ref == "" {
		schema.Type = "object"
	}
	return schema, nil
}
