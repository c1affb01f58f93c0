/*
 * Copyright (C) 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not
 * use this file except in compliance with the License. You may obtain a copy of
 * the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
 * WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
 * License for the specific language governing permissions and limitations under
 * the License.
 */

package hiveddl

import (
	"errors"
	"fmt"
)

var (
	ErrMarkerNotFound      = errors.New("marker not found")
	ErrDescribeRowNotFound = errors.New("describe row not found")
)

// ParseError reports which field of a table's metadata could not be extracted and the literal marker that was
// being searched for.
type ParseError struct {
	Table  string
	Field  string
	Marker string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("failed to parse %s: %v '%s'", e.Field, e.Err, e.Marker)
	}
	return fmt.Sprintf("failed to parse %s of table %s: %v '%s'", e.Field, e.Table, e.Err, e.Marker)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func markerNotFound(field, marker string) error {
	return &ParseError{Field: field, Marker: marker, Err: ErrMarkerNotFound}
}

func describeRowNotFound(field, colName string) error {
	return &ParseError{Field: field, Marker: colName, Err: ErrDescribeRowNotFound}
}

// withTable attaches the table name to a ParseError. Other errors are returned unchanged.
func withTable(err error, table string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Table == "" {
		return &ParseError{Table: table, Field: pe.Field, Marker: pe.Marker, Err: pe.Err}
	}
	return err
}
