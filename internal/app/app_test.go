package app

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/repository"
)

func load(t *testing.T, env map[string]string) {
	t.Helper()
	viper.Reset()
	for k, v := range env {
		t.Setenv(k, v)
	}
	require.NoError(t, config.Load())
}

func devEnv(t *testing.T) map[string]string {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	return map[string]string{
		"STORE_BACKEND":     "memory",
		"TEXTGEN_PROVIDER":  "none",
		"DEV_EMAIL":         "parent@example.com",
		"DEV_PASSWORD_HASH": string(hash),
	}
}

func TestBuild_MemoryBackend(t *testing.T) {
	load(t, devEnv(t))

	a, err := Build(context.Background())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &repository.MemoryStore{}, a.Services.Store)
	sess, err := a.Services.Sessions.Login(context.Background(), "parent@example.com", "pw")
	require.NoError(t, err)
	records, err := a.Services.Growth.Records(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuild_Misconfigured(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":  {"STORE_BACKEND": "sqlite"},
		"unknown policy":   {"UPDATE_POLICY": "sometimes"},
		"unknown provider": {"TEXTGEN_PROVIDER": "markov"},
		"no authenticator": {"DEV_EMAIL": ""},
	}
	for name, override := range cases {
		t.Run(name, func(t *testing.T) {
			env := devEnv(t)
			for k, v := range override {
				env[k] = v
			}
			load(t, env)

			_, err := Build(context.Background())
			assert.Error(t, err)
		})
	}
}
