/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveTransaction is returned when a core operation runs outside
	// of RunInTransaction.
	ErrNoActiveTransaction = errors.New("orm: no active transaction")

	// ErrNestedTransaction is returned by RunInTransaction when the context
	// already carries an active transaction.
	ErrNestedTransaction = errors.New("orm: transaction already active")

	// ErrUnsupportedOperation marks operations a repository handle refuses
	// to perform.
	ErrUnsupportedOperation = errors.New("orm: unsupported operation")
)

// ConfigurationError reports an entity or repository declaration the mapper
// cannot work with.
type ConfigurationError struct {
	Subject string
	Reason  string
	Err     error
}

// Configf builds a ConfigurationError for subject with a formatted reason.
func Configf(subject, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	msg := "orm: invalid configuration"
	if e.Subject != "" {
		msg += " of " + e.Subject
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DatabaseError carries a failure reported by the driver while running
// Query. Err is the driver error, untouched.
type DatabaseError struct {
	Query string
	Err   error
}

func (e *DatabaseError) Error() string {
	if e.Query == "" {
		return "orm: database error: " + e.Err.Error()
	}
	return fmt.Sprintf("orm: database error on %q: %v", e.Query, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// Kind classifies the underlying driver error.
func (e *DatabaseError) Kind() SQLError {
	_, kind := Classify(e.Err)
	return kind
}

// Database wraps err into a DatabaseError unless it already is one.
func Database(query string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}
	return &DatabaseError{Query: query, Err: err}
}

// IsConfiguration reports whether err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
