// Package config defines the root configuration structure for Janus and
// the loading pipeline: YAML file, defaults, environment overrides,
// validation. All sections carry explicit defaults so an empty file yields a
// runnable configuration.
package config
