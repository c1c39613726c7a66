package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileOverDefaults(t *testing.T) {
	p := writeFile(t, "config.json", `{
		"http": {"port": 3000},
		"gameMaster": {"username": "gm", "password": "gmpass"},
		"playerLogin": {"username": "player", "password": "playerpass"},
		"questionsFile": "bank.jsonl"
	}`)

	c := Default()
	require.NoError(t, Load(p, &c))

	assert.Equal(t, 3000, c.HTTP.Port)
	assert.Equal(t, "0.0.0.0", c.HTTP.Bind)
	assert.Equal(t, "gm", c.GameMaster.Username)
	assert.Equal(t, "playerpass", c.PlayerLogin.Password)
	assert.Equal(t, "bank.jsonl", c.QuestionsFile)
	assert.Equal(t, "info", c.Log.Level)
	require.NoError(t, c.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	p := writeFile(t, "config.yaml", "http:\n  port: 3000\n")
	t.Setenv("QUIZ_HTTP_PORT", "4100")
	t.Setenv("QUIZ_LOG_LEVEL", "debug")

	c := Default()
	require.NoError(t, Load(p, &c))

	assert.Equal(t, 4100, c.HTTP.Port)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "questions.json", c.QuestionsFile, "defaults the file leaves out survive")
}

func TestLoad_MissingFile(t *testing.T) {
	c := Default()
	err := Load(filepath.Join(t.TempDir(), "nope.json"), &c)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ReportsEverything(t *testing.T) {
	c := Default()
	c.HTTP.Port = 0
	c.Log.Level = "loud"

	err := c.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
}

func TestValidate_SameCredentials(t *testing.T) {
	c := Default()
	c.GameMaster.Username, c.GameMaster.Password = "x", "y"
	c.PlayerLogin = c.GameMaster

	assert.ErrorContains(t, c.Validate(), "must differ")
}
