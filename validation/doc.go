// Package validation provides struct-tag based validation using
// go-playground/validator. Configuration structs across apikit carry
// `validate:` tags and are checked through Validate before use.
package validation
