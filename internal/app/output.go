package app

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/modlink/internal/config"
	"github.com/vk/modlink/internal/ctyconv"
	"github.com/vk/modlink/internal/linker"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// writeExports writes the exports of one loaded module, unwrapping a default-interop
// envelope first.
func (a *App) writeExports(name string, exports any) error {
	val, err := ctyconv.ToCty(linker.Unwrap(exports))
	if err != nil {
		return err
	}

	var out []byte
	switch a.config.Output {
	case config.OutputText:
		out = formatText(name, val)
	default:
		out, err = formatJSON(name, val)
		if err != nil {
			return err
		}
	}
	_, err = a.outW.Write(out)
	return err
}

// formatJSON renders one line: {"exports":...,"module":"name"}.
func formatJSON(name string, val cty.Value) ([]byte, error) {
	line := cty.ObjectVal(map[string]cty.Value{
		"module":  cty.StringVal(name),
		"exports": val,
	})
	b, err := ctyjson.Marshal(line, line.Type())
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// formatText renders `name = value` with the value in HCL syntax.
func formatText(name string, val cty.Value) []byte {
	src := fmt.Sprintf("%q = %s\n", name, hclwrite.TokensForValue(val).Bytes())
	return hclwrite.Format([]byte(src))
}
