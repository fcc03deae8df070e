package manifest

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a manifest file.
type fileRoot struct {
	Modules []*moduleBlock `hcl:"module,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type moduleBlock struct {
	Name         string         `hcl:"name,label"`
	Kind         string         `hcl:"kind,optional"`
	EagerRequire bool           `hcl:"eager_require,optional"`
	ESModule     bool           `hcl:"es_module,optional"`
	Imports      []*importBlock `hcl:"import,block"`
	Exports      []*exportBlock `hcl:"export,block"`
	DeclRange    hcl.Range      `hcl:",def_range"`
}

type importBlock struct {
	Alias  string `hcl:"alias,label"`
	Module string `hcl:"module"`
}

type exportBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}
