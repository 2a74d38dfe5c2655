// Package config loads samvada settings and resolves the provider API key.
//
// Settings live in config.yaml inside the configuration directory
// (~/.samvada, or $SAMVADA_HOME). The file is created from an embedded
// default on first use, decoded with yaml.v3 and checked against a CUE
// schema.
//
// API key lookup is split in two: GatherKeySources does the IO, and
// ResolveAPIKey applies the precedence to explicit inputs so it can be tested
// without touching the environment.
package config
