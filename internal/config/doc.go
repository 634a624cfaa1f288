// Package config loads, normalizes, and validates the bs configuration file.
//
// Configuration is TOML, resolved from an explicit --config path, then
// ~/.config/bs/config.toml, then a bs.toml in the working directory. Missing
// files are not an error: defaults apply, so bs works out of the box. All
// path fields come back expanded and absolute.
package config
