// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pta

import (
	"fmt"
)

// ConfigError reports a configuration the analysis cannot run with, such as a missing policy for a language or no
// resolvable entrypoint. Policies raise it by panicking with a *ConfigError; the builder turns the panic into a
// returned error.
type ConfigError struct {
	Msg string
	Err error
}

// ConfigErrorf returns a *ConfigError with a formatted message. A %w verb sets the wrapped error.
func ConfigErrorf(format string, args ...any) *ConfigError {
	err := fmt.Errorf(format, args...)
	return &ConfigError{Msg: err.Error(), Err: unwrapOnce(err)}
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvariantError reports a policy returning an answer the analysis cannot use, such as a nil context.
type InvariantError struct {
	Msg string
}

// InvariantErrorf returns an *InvariantError with a formatted message
func InvariantErrorf(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

// CancelError is returned when an analysis stops before reaching its fixpoint. Partial holds the call graph and
// points-to sets computed so far; they are sound for the explored part of the program only.
type CancelError struct {
	Err     error
	Partial *Result
}

func (e *CancelError) Error() string {
	steps := 0
	if e.Partial != nil {
		steps = e.Partial.Steps
	}
	return fmt.Sprintf("analysis canceled after %d steps: %v", steps, e.Err)
}

// Unwrap returns the cause of the cancellation, so that errors.Is(err, context.Canceled) holds for canceled runs.
func (e *CancelError) Unwrap() error {
	return e.Err
}

func unwrapOnce(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return nil
}
