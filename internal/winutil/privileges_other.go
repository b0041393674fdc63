//go:build !windows

package winutil

// EnableBackupRestorePrivileges is a no-op off Windows.
func EnableBackupRestorePrivileges() error {
	return nil
}

// CheckPrivileges reports no privileges off Windows.
func CheckPrivileges() (backupEnabled, restoreEnabled bool) {
	return false, false
}
