// Package config defines the tool settings and provides helpers to load,
// validate and save them in YAML format.
//
// Only the working directory, the run log path, the quiet flag, the
// elevation policy and the installer source are configurable; the rest of
// the acquisition pipeline is a fixed contract of the setup service.
package config
