// Package logger provides structured logging built on zerolog.
//
// It is the single logging surface for the apikit packages: the HTTP
// client logs request attempts, retries, and redirect outcomes through
// a *Logger. Libraries embedding apikit can pass their own instance or
// rely on Nop() to silence it.
package logger
