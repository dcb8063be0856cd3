package testkit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONSubset checks that every key in expected appears in actual
// with the same value. Keys missing from expected are ignored.
func AssertJSONSubset(t *testing.T, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal), "expected body is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual body is not valid JSON\nbody: %s", string(actual)) {
		return
	}
	if diff := subsetDiff("$", expVal, actVal); diff != "" {
		t.Errorf("response body mismatch at %s\nbody: %s", diff, string(actual))
	}
}

func subsetDiff(path string, exp, act interface{}) string {
	switch e := exp.(type) {
	case map[string]interface{}:
		a, ok := act.(map[string]interface{})
		if !ok {
			return fmt.Sprintf("%s: want object, got %T", path, act)
		}
		keys := make([]string, 0, len(e))
		for k := range e {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			av, ok := a[k]
			if !ok {
				return fmt.Sprintf("%s.%s: missing", path, k)
			}
			if d := subsetDiff(path+"."+k, e[k], av); d != "" {
				return d
			}
		}
	case []interface{}:
		a, ok := act.([]interface{})
		if !ok {
			return fmt.Sprintf("%s: want array, got %T", path, act)
		}
		if len(a) != len(e) {
			return fmt.Sprintf("%s: want %d elements, got %d", path, len(e), len(a))
		}
		for i := range e {
			if d := subsetDiff(fmt.Sprintf("%s[%d]", path, i), e[i], a[i]); d != "" {
				return d
			}
		}
	default:
		if !reflect.DeepEqual(exp, act) {
			return fmt.Sprintf("%s: want %v, got %v", path, exp, act)
		}
	}
	return ""
}

// DecodeBody unmarshals a recorded request body.
func DecodeBody(t *testing.T, call *RecordedCall, dest interface{}) {
	t.Helper()
	require.NotNil(t, call, "no request recorded")
	require.NoError(t, json.Unmarshal(call.Body, dest), "request body: %s", string(call.Body))
}
