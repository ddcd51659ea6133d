// Package config loads the bikeshare YAML configuration.
//
// A missing file is not an error: Load returns Default(). Values present in
// the file replace the defaults, and the result is validated with
// go-playground/validator.
package config
