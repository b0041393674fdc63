//go:build !windows

package winutil

// LookupUsername is a no-op off Windows; SIDs cannot be resolved without the
// local security authority.
func LookupUsername(sidStr string) (string, bool) {
	return "", false
}
