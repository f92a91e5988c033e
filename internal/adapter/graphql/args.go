package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/port"
)

// Argument maps come from ast.Field.ArgumentMap after validation, so types
// already match the schema. Numbers can still arrive as int64, float64,
// json.Number or numeric strings depending on literal vs variable input.

func stringArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func optString(args map[string]any, name string) *string {
	if args[name] == nil {
		return nil
	}
	s := stringArg(args, name)
	return &s
}

func intArg(args map[string]any, name string) int {
	n, _ := toInt(args[name])
	return n
}

func optInt(args map[string]any, name string) *int {
	n, ok := toInt(args[name])
	if !ok {
		return nil
	}
	return &n
}

func floatArg(args map[string]any, name string) float64 {
	f, _ := toFloat(args[name])
	return f
}

func optFloat(args map[string]any, name string) *float64 {
	f, ok := toFloat(args[name])
	if !ok {
		return nil
	}
	return &f
}

func optRole(args map[string]any, name string) *domain.Role {
	s := optString(args, name)
	if s == nil {
		return nil
	}
	role := domain.Role(*s)
	return &role
}

func optStatus(args map[string]any, name string) *domain.OrderStatus {
	s := optString(args, name)
	if s == nil {
		return nil
	}
	status := domain.OrderStatus(*s)
	return &status
}

func pageArgs(args map[string]any) port.Page {
	return port.Page{
		Limit:  optInt(args, "limit"),
		Offset: optInt(args, "offset"),
	}
}

func orderItemArgs(args map[string]any, name string) []port.OrderItemInput {
	raw, _ := args[name].([]any)
	items := make([]port.OrderItemInput, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, port.OrderItemInput{
			ProductID: stringArg(m, "productId"),
			Quantity:  intArg(m, "quantity"),
		})
	}
	return items
}

var errInvalidArgument = errors.New("invalid argument")

// checkIntArgs rejects Int values outside the 32-bit range, including those
// nested in lists and input objects.
func (x *execution) checkIntArgs(f *ast.Field, args map[string]any) error {
	for _, def := range f.Definition.Arguments {
		if err := x.checkInt(args[def.Name], def.Type); err != nil {
			return fmt.Errorf("%w %q: %w", errInvalidArgument, def.Name, err)
		}
	}
	return nil
}

func (x *execution) checkInt(v any, typ *ast.Type) error {
	if v == nil {
		return nil
	}
	if typ.Elem != nil {
		items, _ := v.([]any)
		for _, item := range items {
			if err := x.checkInt(item, typ.Elem); err != nil {
				return err
			}
		}
		return nil
	}
	if typ.NamedType == "Int" {
		if _, ok := toInt(v); !ok {
			return fmt.Errorf("%v is outside the Int range", v)
		}
		return nil
	}
	def := x.schema.Types[typ.NamedType]
	if def == nil || def.Kind != ast.InputObject {
		return nil
	}
	fields, _ := v.(map[string]any)
	for _, fd := range def.Fields {
		if err := x.checkInt(fields[fd.Name], fd.Type); err != nil {
			return err
		}
	}
	return nil
}

// toInt accepts whole numbers within the 32-bit GraphQL Int range.
func toInt(v any) (int, bool) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || t < math.MinInt32 || t > math.MaxInt32 {
			return 0, false
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
