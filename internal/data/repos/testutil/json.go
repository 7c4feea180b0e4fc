package testutil

import (
	"encoding/json"
	"reflect"
)

// SameJSON compares two documents by value. Postgres jsonb does not keep the
// original spacing, so byte comparison is not enough.
func SameJSON(a, b []byte) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
