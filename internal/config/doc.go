// Package config defines the validated run configuration of the modlink
// application and the environment defaults it starts from.
package config
