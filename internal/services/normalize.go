package services

import (
	"encoding/json"
	"reflect"
	"strings"

	"gorm.io/datatypes"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// jsonBlob accepts any JSON document except a missing or null one.
func jsonBlob(raw json.RawMessage) (datatypes.JSON, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return datatypes.JSON(trimmed), true
}

// sameJSON compares two documents by value.
func sameJSON(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	var av, bv any
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
