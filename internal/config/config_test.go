package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	require.NoError(t, Load())

	assert.Equal(t, ":8080", APIAddr())
	assert.Equal(t, "baby_growth", GrowthTable())
	assert.Equal(t, "always", UpdatePolicy())
	assert.Equal(t, 200, TextGenMaxTokens())
	assert.InDelta(t, 0.7, TextGenTemperature(), 1e-9)
	assert.Equal(t, 12*time.Hour, SessionTTL())
	assert.False(t, UseCloudServices())

	birth, err := BirthDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), birth)
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("BIRTH_DATE", "2024-01-31")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("TEXTGEN_TIMEOUT", "5s")
	require.NoError(t, Load())

	assert.Equal(t, "memory", StoreBackend())
	assert.Equal(t, 5*time.Second, TextGenTimeout())
	birth, err := BirthDate()
	require.NoError(t, err)
	assert.Equal(t, 31, birth.Day())
}

func TestLoad_RejectsBadBirthDate(t *testing.T) {
	viper.Reset()
	t.Setenv("BIRTH_DATE", "10/07/2025")
	assert.ErrorContains(t, Load(), "BIRTH_DATE")
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	viper.Reset()
	t.Setenv("LOG_LEVEL", "chatty")
	assert.ErrorContains(t, Load(), "LOG_LEVEL")
}
