// Package logger sets up the registry's JSON slog logger.
//
// Setup turns a level name and an output writer into a *slog.Logger. Commands
// attach that logger to their context with WithLogger, and stores and services
// pick it up with FromContextOrDefault, falling back to their own component
// logger when the context carries none.
package logger
