package conf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns a settings struct that passes validation, tests
// mutate individual fields to trigger specific failures.
func validSettings() *Settings {
	s := &Settings{}
	s.WebServer.Enabled = true
	s.WebServer.Port = "8080"
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "pokedex.db"
	s.Media.Path = "public/uploads/pokemons"
	s.Media.MaxUploadSize = 2 * 1024 * 1024
	s.Security.JWTSecret = strings.Repeat("s", 32)
	s.Security.TokenExpiry = 24
	return s
}

func TestValidateSettingsValid(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsFailures(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Settings)
		wantMsg string
	}{
		{
			name:    "missing port",
			mutate:  func(s *Settings) { s.WebServer.Port = "" },
			wantMsg: "webserver.port",
		},
		{
			name: "no store enabled",
			mutate: func(s *Settings) {
				s.Output.SQLite.Enabled = false
				s.Output.MySQL.Enabled = false
			},
			wantMsg: "no entity store enabled",
		},
		{
			name: "both stores enabled",
			mutate: func(s *Settings) {
				s.Output.MySQL.Enabled = true
			},
			wantMsg: "only one entity store",
		},
		{
			name:    "empty sqlite path",
			mutate:  func(s *Settings) { s.Output.SQLite.Path = "" },
			wantMsg: "output.sqlite.path",
		},
		{
			name: "mysql without database",
			mutate: func(s *Settings) {
				s.Output.SQLite.Enabled = false
				s.Output.MySQL.Enabled = true
				s.Output.MySQL.Database = ""
			},
			wantMsg: "output.mysql.database",
		},
		{
			name:    "empty media path",
			mutate:  func(s *Settings) { s.Media.Path = "" },
			wantMsg: "media.path",
		},
		{
			name:    "zero upload size",
			mutate:  func(s *Settings) { s.Media.MaxUploadSize = 0 },
			wantMsg: "media.maxuploadsize",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(s *Settings) { s.Security.JWTSecret = "" },
			wantMsg: "security.jwtsecret",
		},
		{
			name:    "short jwt secret",
			mutate:  func(s *Settings) { s.Security.JWTSecret = "too-short" },
			wantMsg: "at least 32 characters",
		},
		{
			name:    "zero token expiry",
			mutate:  func(s *Settings) { s.Security.TokenExpiry = 0 },
			wantMsg: "security.tokenexpiry",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
