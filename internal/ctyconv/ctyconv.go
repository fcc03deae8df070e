// Package ctyconv converts module export values between native Go values and
// cty.Value, so manifest expressions can read them and results can be
// rendered as JSON.
package ctyconv

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/vk/modlink/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty converts a native Go value into its corresponding cty.Value. Export
// maps become objects and slices become tuples.
func ToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return t, nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case *big.Float:
		return cty.NumberVal(t), nil
	case registry.Exports:
		return objectVal(t)
	case map[string]any:
		return objectVal(t)
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(t))
		for i, e := range t {
			ev, err := ToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}

func objectVal(m map[string]any) (cty.Value, error) {
	if len(m) == 0 {
		return cty.EmptyObjectVal, nil
	}
	attrs := make(map[string]cty.Value, len(m))
	for k, e := range m {
		ev, err := ToCty(e)
		if err != nil {
			return cty.NilVal, fmt.Errorf("attribute %q: %w", k, err)
		}
		attrs[k] = ev
	}
	return cty.ObjectVal(attrs), nil
}

// FromCty converts a known cty.Value into a native Go value. Whole numbers
// become int, other numbers float64, objects and maps registry.Exports, and
// lists, sets and tuples []any.
func FromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		var i int
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := registry.Exports{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := FromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

// Keys returns the attribute names of an object value in sorted order.
func Keys(v cty.Value) []string {
	if v.IsNull() || !v.IsKnown() || !(v.Type().IsObjectType() || v.Type().IsMapType()) {
		return nil
	}
	keys := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		k, _ := it.Element()
		keys = append(keys, k.AsString())
	}
	sort.Strings(keys)
	return keys
}
