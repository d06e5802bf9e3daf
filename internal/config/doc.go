// Package config loads registry settings from an optional YAML file and from
// REGISTRY_* environment variables, which win over the file.
//
// Two sections exist. The database section picks the driver (postgres or
// sqlite), the connection URL, pool limits and whether commands apply pending
// migrations before running. The log section sets the slog level. Keys map to
// variables by upper-casing and replacing dots, so database.max_open_conns is
// read from REGISTRY_DATABASE_MAX_OPEN_CONNS. The loaded Config is checked
// with validator struct tags before it is returned.
package config
