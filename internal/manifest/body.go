package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/ctyconv"
	"github.com/vk/modlink/internal/linker"
	"github.com/vk/modlink/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// globalVar is the variable holding the loader's global value.
const globalVar = "global"

// functions available to export expressions.
var functions = map[string]function.Function{
	"coalesce":   stdlib.CoalesceFunc,
	"concat":     stdlib.ConcatFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"max":        stdlib.MaxFunc,
	"min":        stdlib.MinFunc,
	"upper":      stdlib.UpperFunc,
}

func globalValue(ctx context.Context, global any) cty.Value {
	v, err := ctyconv.ToCty(global)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Global value is not available to manifests.", "error", err)
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return v
}

// Body builds the registry body for the definition.
func (d *Definition) Body(global cty.Value) registry.Body {
	if d.Kind == KindDynamic {
		return registry.Dynamic{Execute: d.execute(global), EagerRequire: d.EagerRequire}
	}
	return registry.Declarative{Declare: d.declare(global)}
}

// declare wires one setter per distinct dependency. Setters store the
// dependency's export map; the map is read again when the body runs, so
// updates pushed in between are picked up.
func (d *Definition) declare(global cty.Value) registry.DeclareFunc {
	return func(export registry.ExportSetter) (registry.Declaration, error) {
		deps := registry.Dedupe(d.Dependencies())
		received := make(map[string]registry.Exports, len(deps))
		setters := make([]registry.Setter, len(deps))
		for i, dep := range deps {
			setters[i] = func(ex registry.Exports) { received[dep] = ex }
		}

		execute := func() error {
			vars := make(map[string]cty.Value, len(d.Imports)+1)
			for _, imp := range d.Imports {
				v, err := ctyconv.ToCty(linker.Unwrap(received[imp.Module]))
				if err != nil {
					return fmt.Errorf("import %q: %w", imp.Alias, err)
				}
				vars[imp.Alias] = v
			}
			vars[globalVar] = global

			evalCtx := &hcl.EvalContext{Variables: vars, Functions: functions}
			for _, exp := range d.Exports {
				v, err := evaluate(evalCtx, exp)
				if err != nil {
					return err
				}
				export(exp.Name, v)
			}
			return nil
		}

		return registry.Declaration{Setters: setters, Execute: execute}, nil
	}
}

func (d *Definition) execute(global cty.Value) registry.ExecuteFunc {
	return func(require registry.RequireFunc, exports registry.Exports, _ *registry.DynamicModule) (any, error) {
		vars := make(map[string]cty.Value, len(d.Imports)+1)
		for _, imp := range d.Imports {
			dep, err := require(imp.Module)
			if err != nil {
				return nil, err
			}
			v, err := ctyconv.ToCty(dep)
			if err != nil {
				return nil, fmt.Errorf("import %q: %w", imp.Alias, err)
			}
			vars[imp.Alias] = v
		}
		vars[globalVar] = global

		evalCtx := &hcl.EvalContext{Variables: vars, Functions: functions}
		for _, exp := range d.Exports {
			v, err := evaluate(evalCtx, exp)
			if err != nil {
				return nil, err
			}
			exports[exp.Name] = v
		}
		if d.ESModule {
			exports[linker.ModuleMarkerKey] = true
		}
		return nil, nil
	}
}

func evaluate(evalCtx *hcl.EvalContext, exp Export) (any, error) {
	val, diags := exp.Value.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("export %q: %w", exp.Name, diags)
	}
	v, err := ctyconv.FromCty(val)
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", exp.Name, err)
	}
	return v, nil
}
