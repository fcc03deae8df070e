package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/fsutil"
	"github.com/vk/modlink/internal/registry"
)

const (
	KindDeclarative = "declarative"
	KindDynamic     = "dynamic"
)

// Definition is the format-agnostic form of one module block.
type Definition struct {
	Name         string
	Kind         string
	EagerRequire bool
	ESModule     bool
	Imports      []Import
	Exports      []Export
	// Source is the file and line the block was declared at.
	Source string
}

// Import binds a dependency to the variable name used in export expressions.
type Import struct {
	Alias  string
	Module string
}

// Export is one named export and the expression computing it.
type Export struct {
	Name  string
	Value hcl.Expression
}

// Dependencies returns the imported module names in declaration order.
func (d *Definition) Dependencies() []string {
	deps := make([]string, 0, len(d.Imports))
	for _, imp := range d.Imports {
		deps = append(deps, imp.Module)
	}
	return deps
}

// Loader reads manifest files.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and returns the module definitions
// in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	parser := hclparse.NewParser()
	var defs []*Definition
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		fileDefs, err := decode(hclFile.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		defs = append(defs, fileDefs...)
	}

	logger.Debug("Manifest loading complete.", "modules", len(defs))
	return defs, nil
}

// Parse decodes manifest source held in memory. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) ([]*Definition, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(hclFile.Body)
}

func decode(body hcl.Body) ([]*Definition, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	defs := make([]*Definition, 0, len(root.Modules))
	for _, m := range root.Modules {
		def, err := translateModule(m)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func translateModule(m *moduleBlock) (*Definition, error) {
	def := &Definition{
		Name:         m.Name,
		Kind:         m.Kind,
		EagerRequire: m.EagerRequire,
		ESModule:     m.ESModule,
		Source:       m.DeclRange.String(),
	}
	if def.Kind == "" {
		def.Kind = KindDeclarative
	}
	switch def.Kind {
	case KindDeclarative:
		if m.EagerRequire || m.ESModule {
			return nil, fmt.Errorf("module '%s' (%s): eager_require and es_module apply to dynamic modules only", m.Name, def.Source)
		}
	case KindDynamic:
	default:
		return nil, fmt.Errorf("module '%s' (%s): unknown kind %q, expected %q or %q", m.Name, def.Source, m.Kind, KindDeclarative, KindDynamic)
	}

	aliases := make(map[string]struct{}, len(m.Imports))
	for _, imp := range m.Imports {
		if !hclsyntax.ValidIdentifier(imp.Alias) {
			return nil, fmt.Errorf("module '%s': import alias %q is not a valid identifier", m.Name, imp.Alias)
		}
		if imp.Alias == globalVar {
			return nil, fmt.Errorf("module '%s': import alias %q is reserved", m.Name, imp.Alias)
		}
		if _, dup := aliases[imp.Alias]; dup {
			return nil, fmt.Errorf("module '%s': duplicate import alias %q", m.Name, imp.Alias)
		}
		aliases[imp.Alias] = struct{}{}
		def.Imports = append(def.Imports, Import{Alias: imp.Alias, Module: imp.Module})
	}

	names := make(map[string]struct{}, len(m.Exports))
	for _, exp := range m.Exports {
		if _, dup := names[exp.Name]; dup {
			return nil, fmt.Errorf("module '%s': duplicate export %q", m.Name, exp.Name)
		}
		names[exp.Name] = struct{}{}
		def.Exports = append(def.Exports, Export{Name: exp.Name, Value: exp.Value})
	}
	return def, nil
}

// RegisterAll registers every definition with reg. global is exposed to
// export expressions as the "global" variable.
func RegisterAll(ctx context.Context, reg *registry.Registry, defs []*Definition, global any) error {
	logger := ctxlog.FromContext(ctx)
	globalVal := globalValue(ctx, global)
	for _, def := range defs {
		if _, err := reg.Register(def.Name, def.Dependencies(), def.Body(globalVal)); err != nil {
			return fmt.Errorf("%s: %w", def.Source, err)
		}
	}
	logger.Debug("Manifest modules registered.", "count", len(defs))
	return nil
}
