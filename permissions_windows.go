//go:build windows

package pgadaptor

// File modes do not map onto Windows ACLs, so no permission checks are made.

func validateFilePermission(string) error {
	return nil
}

func validateCfgPerm(string) error {
	return nil
}
