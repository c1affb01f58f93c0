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
	"strings"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/samber/lo"
)

// Assembler accumulates table exports in the order they were extracted
type Assembler struct {
	exports []types.TableExport
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

func (a *Assembler) Add(export types.TableExport) {
	a.exports = append(a.exports, export)
}

// Batch freezes what has been collected so far
func (a *Assembler) Batch() *Batch {
	exports := make([]types.TableExport, len(a.exports))
	copy(exports, a.exports)
	return &Batch{exports: exports}
}

// Batch is the result of the collect phase, ready to be committed
type Batch struct {
	exports []types.TableExport
}

func (b *Batch) Len() int {
	return len(b.exports)
}

func (b *Batch) Exports() []types.TableExport {
	out := make([]types.TableExport, len(b.exports))
	copy(out, b.exports)
	return out
}

// DDL concatenates every table's statement. Each statement already ends in ";\n".
func (b *Batch) DDL() string {
	var sb strings.Builder
	for _, e := range b.exports {
		sb.WriteString(string(e.DDL))
	}
	return sb.String()
}

func (b *Batch) Manifest() []types.ManifestRecord {
	return lo.Map(b.exports, func(e types.TableExport, _ int) types.ManifestRecord {
		return e.Manifest
	})
}
