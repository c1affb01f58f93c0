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

package types

import (
	"errors"
	"fmt"
)

var ErrEmptyResult = errors.New("query returned no rows")

// ResultSet is a fully materialized, string valued query result
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

func NewResultSet(columns []string, rows ...[]string) *ResultSet {
	return &ResultSet{Columns: columns, Rows: rows}
}

// ColumnIndex returns the position of the named column or -1
func (r *ResultSet) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// First returns the first column of the first row.
func (r *ResultSet) First() (string, error) {
	if len(r.Rows) == 0 || len(r.Rows[0]) == 0 {
		return "", ErrEmptyResult
	}
	return r.Rows[0][0], nil
}

// FirstValue returns the named column of the first row.
func (r *ResultSet) FirstValue(column string) (string, error) {
	i := r.ColumnIndex(column)
	if i < 0 {
		return "", fmt.Errorf("column '%s' not found in result (columns: %v)", column, r.Columns)
	}
	if len(r.Rows) == 0 {
		return "", ErrEmptyResult
	}
	if i >= len(r.Rows[0]) {
		return "", fmt.Errorf("row is missing column '%s'", column)
	}
	return r.Rows[0][i], nil
}
