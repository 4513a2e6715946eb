package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeWindowDefaultsTo50ms(t *testing.T) {
	os.Unsetenv("MDDL_HUMANIZE_MS")
	assert.Equal(t, 50*time.Millisecond, HumanizeWindow())
}

func TestHumanizeWindowHonorsOverride(t *testing.T) {
	os.Setenv("MDDL_HUMANIZE_MS", "80")
	defer os.Unsetenv("MDDL_HUMANIZE_MS")
	assert.Equal(t, 80*time.Millisecond, HumanizeWindow())
}

func TestHumanizeWindowClampsToMax(t *testing.T) {
	os.Setenv("MDDL_HUMANIZE_MS", "9000")
	defer os.Unsetenv("MDDL_HUMANIZE_MS")
	assert.Equal(t, maxHumanizeMs*time.Millisecond, HumanizeWindow())
}

func TestPPQDefaultsTo960(t *testing.T) {
	os.Unsetenv("MDDL_PPQ")
	assert.Equal(t, defaultPPQ, PPQ())
}

func TestTempoHonorsOverride(t *testing.T) {
	os.Setenv("MDDL_TEMPO", "90")
	defer os.Unsetenv("MDDL_TEMPO")
	assert.Equal(t, 90, Tempo())
}

func TestLibPathDefaultsToLibDir(t *testing.T) {
	os.Unsetenv("MDDL_LIB_PATH")
	assert.Equal(t, defaultLibDir, LibPath())
}
