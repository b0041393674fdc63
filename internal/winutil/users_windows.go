//go:build windows

package winutil

import (
	"golang.org/x/sys/windows"
)

// LookupUsername resolves a string SID to DOMAIN\account. The second return
// reports whether resolution succeeded; callers default to an empty string,
// an unresolvable SID is not an error in forensic data.
func LookupUsername(sidStr string) (string, bool) {
	sid, err := windows.StringToSid(sidStr)
	if err != nil {
		return "", false
	}

	account, domain, _, err := sid.LookupAccount("")
	if err != nil {
		return "", false
	}
	if domain != "" {
		return domain + `\` + account, true
	}
	return account, true
}
