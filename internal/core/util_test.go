package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "windows_bits", SanitizeName("windows/bits"))
	assert.Equal(t, "sysinfo", SanitizeName("sysinfo"))
	assert.Equal(t, "a_b_c", SanitizeName("A b//C"))
	assert.Equal(t, "unknown", SanitizeName("///"))
	assert.Equal(t, "unknown", SanitizeName(""))
}
