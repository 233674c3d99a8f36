// Package config loads the pipeline tuning policy. All knobs have
// sensible defaults; a YAML file overrides them per installation.
package config
