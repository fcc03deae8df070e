// Package app contains the core application logic. It defines the main App
// struct and its run lifecycle: load manifests, register their modules, report
// on the module graph, then load and print the requested modules. It is
// decoupled from any specific entrypoint like a CLI or server.
package app
