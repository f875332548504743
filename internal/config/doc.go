// Package config loads, defaults and validates the service configuration.
//
// Configuration is YAML with ${ENV} expansion. The usual entry point is
// LoadAndValidate, which chains Load -> applyDefaults -> Validate.
package config
