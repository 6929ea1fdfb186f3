// Package config defines launcher settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the game repository coordinates, the versions
// directory and the install policy flags.
package config
