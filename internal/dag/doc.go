// Package dag builds a diagnostic graph of the modules declared in a set of
// manifests. Cycles are legal between modules, so the graph reports them
// instead of rejecting them; cycles that mix binding models are surfaced
// separately because the linker may refuse them.
package dag
