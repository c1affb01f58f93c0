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

package cassandra

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/gocql/gocql"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/inf.v0"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KindForType maps a cql type to the column kind it is exported as. Anything without a direct equivalent,
// including collections, is exported as text.
func KindForType(t gocql.Type) types.ColumnKind {
	switch t {
	case gocql.TypeBigInt, gocql.TypeInt, gocql.TypeSmallInt, gocql.TypeTinyInt, gocql.TypeCounter:
		return types.KindLong
	case gocql.TypeFloat, gocql.TypeDouble:
		return types.KindDouble
	case gocql.TypeBoolean:
		return types.KindBoolean
	case gocql.TypeTimestamp:
		return types.KindTimestamp
	default:
		return types.KindString
	}
}

// ConvertValue turns a scanned cell into the representation its column kind expects
func ConvertValue(v interface{}, kind types.ColumnKind) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case types.KindLong:
		switch val := v.(type) {
		case int:
			return int64(val), nil
		case int8:
			return int64(val), nil
		case int16:
			return int64(val), nil
		case int32:
			return int64(val), nil
		case int64:
			return val, nil
		}
	case types.KindDouble:
		switch val := v.(type) {
		case float32:
			return float64(val), nil
		case float64:
			return val, nil
		}
	case types.KindBoolean:
		if val, ok := v.(bool); ok {
			return val, nil
		}
	case types.KindTimestamp:
		if val, ok := v.(time.Time); ok {
			return val.UTC(), nil
		}
	case types.KindString:
		return textValue(v)
	}
	return nil, fmt.Errorf("unexpected %T value for %s column", v, kind)
}

func textValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return "0x" + hex.EncodeToString(val), nil
	case gocql.UUID:
		return val.String(), nil
	case *inf.Dec:
		return val.String(), nil
	case *big.Int:
		return val.String(), nil
	case time.Time:
		return val.UTC().Format(time.DateOnly), nil
	case time.Duration:
		return val.String(), nil
	case gocql.Duration:
		return fmt.Sprintf("%dmo%dd%dns", val.Months, val.Days, val.Nanoseconds), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("failed to render %T as json: %w", v, err)
		}
		return string(b), nil
	}
}
