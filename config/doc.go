// Package config loads apikit settings from YAML files and the
// environment. Resolution order: an optional .env file (godotenv),
// then the config file, then APIKIT_* environment variables, with
// later sources winning. Loaded settings are validated before use.
package config
