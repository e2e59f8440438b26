package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	settings := &Settings{}
	settings.WebServer.Enabled = true
	settings.WebServer.Port = "8000"
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = "drone_analytics.db"
	return settings
}

func TestValidateSettings(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateWebServerPort(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"valid port", "8000", false},
		{"lowest port", "1", false},
		{"highest port", "65535", false},
		{"not a number", "http", true},
		{"zero", "0", true},
		{"out of range", "70000", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settings := validSettings()
			settings.WebServer.Port = tc.port
			err := ValidateSettings(settings)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWebServerDisabledSkipsPortCheck(t *testing.T) {
	settings := validSettings()
	settings.WebServer.Enabled = false
	settings.WebServer.Port = "not-a-port"
	assert.NoError(t, ValidateSettings(settings))
}

func TestValidateOutputSettings(t *testing.T) {
	t.Run("both backends enabled", func(t *testing.T) {
		settings := validSettings()
		settings.Output.MySQL.Enabled = true
		assert.Error(t, ValidateSettings(settings))
	})

	t.Run("no backend enabled", func(t *testing.T) {
		settings := validSettings()
		settings.Output.SQLite.Enabled = false
		assert.Error(t, ValidateSettings(settings))
	})

	t.Run("sqlite without path", func(t *testing.T) {
		settings := validSettings()
		settings.Output.SQLite.Path = ""
		assert.Error(t, ValidateSettings(settings))
	})

	t.Run("mysql requires host and database", func(t *testing.T) {
		settings := validSettings()
		settings.Output.SQLite.Enabled = false
		settings.Output.MySQL.Enabled = true
		settings.Output.MySQL.Host = "localhost"
		assert.Error(t, ValidateSettings(settings), "missing database name")

		settings.Output.MySQL.Database = "drone_analytics"
		assert.NoError(t, ValidateSettings(settings))
	})
}
