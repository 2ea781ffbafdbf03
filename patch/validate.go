package patch

import (
	"fmt"
	"strings"
)

// ValidatePatchOperations checks op names and that every path is allowed.
// An allowed path ending in "/*" admits any child of its prefix.
func ValidatePatchOperations(ops []Operation, allowedPaths map[string]bool) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace, OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if !strings.HasPrefix(op.Path, "/") {
			return fmt.Errorf("operation %d: path %q must start with /", i, op.Path)
		}
		if err := validatePathAllowed(op.Path, allowedPaths); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

func validatePathAllowed(path string, allowedPaths map[string]bool) error {
	if len(allowedPaths) == 0 || allowedPaths[path] {
		return nil
	}
	for allowed := range allowedPaths {
		prefix, ok := strings.CutSuffix(allowed, "/*")
		if ok && strings.HasPrefix(path, prefix+"/") {
			return nil
		}
	}
	return fmt.Errorf("path %q is not in the allowed paths set", path)
}
