// Package manifest loads module declarations from HCL files and turns each of
// them into a registry body.
//
// A manifest file holds any number of module blocks:
//
//	module "app/greeting" {
//	  kind = "declarative" # or "dynamic"
//
//	  import "name" {
//	    module = "lib/name"
//	  }
//
//	  export "message" {
//	    value = "hello ${name.value}"
//	  }
//	}
//
// Import blocks list the dependencies in order; their labels are the variable
// names export expressions use to read a dependency's exports. Declarative
// modules publish each export through the linker's export setter as it is
// evaluated, so importers are updated export by export. Dynamic modules
// require their imports, fill their exports object and return.
//
// Dynamic modules accept eager_require, which leaves dependency linking to
// the require calls, and es_module, which marks the exports as a module
// object so loaders do not wrap them in a default-interop envelope.
package manifest
