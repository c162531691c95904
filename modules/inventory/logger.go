package inventory

import "github.com/go-monolith/mono/pkg/types"

// nopLogger discards everything. It keeps Service usable without a logger.
type nopLogger struct{}

func (l nopLogger) Debug(string, ...any)           {}
func (l nopLogger) Info(string, ...any)            {}
func (l nopLogger) Warn(string, ...any)            {}
func (l nopLogger) Error(string, ...any)           {}
func (l nopLogger) With(...any) types.Logger       { return l }
func (l nopLogger) WithError(error) types.Logger   { return l }
func (l nopLogger) WithModule(string) types.Logger { return l }
