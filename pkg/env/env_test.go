package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Setenv("HBNB_ENV_TEST", "")
	assert.Equal(t, "fallback", Get("HBNB_ENV_TEST", "fallback"))

	t.Setenv("HBNB_ENV_TEST", "set")
	assert.Equal(t, "set", Get("HBNB_ENV_TEST", "fallback"))
}

func TestFirstOfPrefersEarlierKeys(t *testing.T) {
	t.Setenv("HBNB_ENV_A", "")
	t.Setenv("HBNB_ENV_B", "b")
	assert.Equal(t, "b", FirstOf("none", "HBNB_ENV_A", "HBNB_ENV_B"))

	t.Setenv("HBNB_ENV_A", "a")
	assert.Equal(t, "a", FirstOf("none", "HBNB_ENV_A", "HBNB_ENV_B"))

	assert.Equal(t, "none", FirstOf("none"))
}
