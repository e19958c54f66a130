// Package movecoreerr defines the typed error kinds shared across the
// digest, manifest, module cache, and mutation packages.
//
// Each kind wraps an underlying cause and is matched with errors.As, the way
// internal/pkg/app/app_error.go in bufbuild/buf wraps a message around an
// exit code: a thin typed layer over the standard library's error chain
// rather than a third-party errors package.
package movecoreerr

import "fmt"

// IoError wraps a filesystem failure (read, write, walk, rename, copy).
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// NewIoError annotates err with the operation that failed.
func NewIoError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Op: op, Err: err}
}

// HashError wraps a digest failure reading a file's contents. It always
// surfaces to callers as an *IoError, matching spec's "HashError surfaces as
// IoError because the digest consumes raw bytes".
type HashError struct {
	Path string
	Err  error
}

func (e *HashError) Error() string { return fmt.Sprintf("failed to hash %s: %s", e.Path, e.Err) }
func (e *HashError) Unwrap() error { return e.Err }

// SerializationError wraps a bytecode or cache-blob encode/decode failure.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Err) }
func (e *SerializationError) Unwrap() error { return e.Err }

// NewSerializationError annotates err with the serialization operation that failed.
func NewSerializationError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SerializationError{Op: op, Err: err}
}

// CompilerError wraps a fatal diagnostic produced by the compiler front end.
type CompilerError struct {
	Err error
}

func (e *CompilerError) Error() string { return fmt.Sprintf("compiler error: %s", e.Err) }
func (e *CompilerError) Unwrap() error { return e.Err }

// NewCompilerError wraps err as a CompilerError.
func NewCompilerError(err error) error {
	if err == nil {
		return nil
	}
	return &CompilerError{Err: err}
}

// ConfigError wraps a malformed manifest, unknown downsample filter, or
// unknown configuration field.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError with a message and optional cause.
func NewConfigError(msg string, err error) error {
	return &ConfigError{Msg: msg, Err: err}
}

// VerificationFailed records that a single mutant failed to compile. It is
// never fatal to a run; the driver logs it and discards the mutant.
type VerificationFailed struct {
	MutantPath string
	Err        error
}

func (e *VerificationFailed) Error() string {
	return fmt.Sprintf("mutant %s failed verification: %s", e.MutantPath, e.Err)
}
func (e *VerificationFailed) Unwrap() error { return e.Err }
