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

package gcs

import (
	"fmt"
	"strings"
)

const scheme = "gs://"

// ParseGCSPath splits gs://bucket/some/prefix into its bucket and object prefix. The prefix has no leading slash
// and keeps any trailing one.
func ParseGCSPath(uri string) (bucket string, prefix string, err error) {
	rest, found := strings.CutPrefix(uri, scheme)
	if !found {
		return "", "", fmt.Errorf("not a gs:// path: '%s'", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in path: '%s'", uri)
	}
	return bucket, strings.TrimLeft(prefix, "/"), nil
}

// ObjectURI renders a bucket and object name as gs://bucket/name
func ObjectURI(bucket string, name string) string {
	return scheme + bucket + "/" + name
}

// JoinPrefix appends name to a directory-like prefix, adding the separator if needed
func JoinPrefix(prefix string, name string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix + name
	}
	return prefix + "/" + name
}
