package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("FIELDTIMER_TEST_STRING", "hello")
	assert.Equal(t, "hello", getEnvString("FIELDTIMER_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", getEnvString("FIELDTIMER_TEST_UNSET", "fallback"))
}

func TestGetEnvBool(t *testing.T) {
	for _, truthy := range []string{"true", "1", "yes"} {
		t.Setenv("FIELDTIMER_TEST_BOOL", truthy)
		assert.True(t, getEnvBool("FIELDTIMER_TEST_BOOL", false), truthy)
	}

	t.Setenv("FIELDTIMER_TEST_BOOL", "no")
	assert.False(t, getEnvBool("FIELDTIMER_TEST_BOOL", true))
	assert.True(t, getEnvBool("FIELDTIMER_TEST_UNSET", true))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("FIELDTIMER_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("FIELDTIMER_TEST_INT", 7))

	t.Setenv("FIELDTIMER_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("FIELDTIMER_TEST_INT", 7))
	assert.Equal(t, 7, getEnvInt("FIELDTIMER_TEST_UNSET", 7))
}
