package patch

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/bytedance/sonic"
)

// GeneratePatchesFromInitial returns the operations that copy every
// non-zero top-level member of initial onto current.
func GeneratePatchesFromInitial[T any](current, initial T) ([]Operation, error) {
	currentMap, err := toMap(current)
	if err != nil {
		return nil, fmt.Errorf("failed to convert current state: %w", err)
	}
	initialMap, err := toMap(initial)
	if err != nil {
		return nil, fmt.Errorf("failed to convert initial state: %w", err)
	}

	keys := make([]string, 0, len(initialMap))
	for key := range initialMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ops := make([]Operation, 0, len(keys))
	for _, key := range keys {
		value := initialMap[key]
		if isZeroValue(value) {
			continue
		}
		path := "/" + escapeJSONPointer(key)
		currentValue, exists := currentMap[key]
		switch {
		case !exists:
			ops = append(ops, Operation{Op: OperationAdd, Path: path, Value: value})
		case !reflect.DeepEqual(currentValue, value):
			ops = append(ops, Operation{Op: OperationReplace, Path: path, Value: value})
		}
	}
	return ops, nil
}

func toMap(v any) (map[string]any, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func isZeroValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case bool:
		return !val
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
