package sqpmethod

import "github.com/pkg/errors"

// ConfigError reports a class-1 error (§7): detected once at construction
// time, never during the hot loop.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "sqpmethod: " + e.msg }

func configError(msg string) error { return errors.WithStack(&ConfigError{msg: msg}) }

// OracleError reports a class-2 fatal oracle failure (§7): a non-nil
// error from JacFg or HessL outside the line search. Line-search-local
// FgFunc failures never reach this type -- they are handled as
// recoverable backtracking signals instead.
type OracleError struct {
	Site string // "JacFg", "HessL", or "Grad"
	Err  error
}

func (e *OracleError) Error() string {
	return "sqpmethod: fatal oracle failure at " + e.Site + ": " + e.Err.Error()
}

func (e *OracleError) Unwrap() error { return e.Err }

func oracleError(site string, err error) error {
	return errors.WithStack(&OracleError{Site: site, Err: err})
}
