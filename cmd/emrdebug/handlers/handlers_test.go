package handlers

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
)

const testAccount = "123456789012"

// saveAndRestoreFactories restores every replaceable collaborator after the test.
func saveAndRestoreFactories(t *testing.T) {
	origFind := findConfigFile
	origLoad := loadConfigFile
	origEnv := loadFromEnvironment
	origAssembler := newAssembler
	origProgress := runProgress
	origLog := logOutput
	origWrite := writeFile
	origTTY := isInteractiveTTY
	origExists := fileExists
	origWizard := runWizard
	origWriteConfig := writeConfig
	origStager := newStager
	origRead := readFile
	origGenerate := generateKey
	origCheck := checkTools
	origProbe := probePort
	origWait := waitForPort

	t.Cleanup(func() {
		findConfigFile = origFind
		loadConfigFile = origLoad
		loadFromEnvironment = origEnv
		newAssembler = origAssembler
		runProgress = origProgress
		logOutput = origLog
		writeFile = origWrite
		isInteractiveTTY = origTTY
		fileExists = origExists
		runWizard = origWizard
		writeConfig = origWriteConfig
		newStager = origStager
		readFile = origRead
		generateKey = origGenerate
		checkTools = origCheck
		probePort = origProbe
		waitForPort = origWait
	})

	logOutput = io.Discard
	isInteractiveTTY = func() bool { return false }
}

// stubConfig makes loadConfig return the default configuration.
func stubConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(testAccount)
	findConfigFile = func() (string, error) { return "emrdebug.yaml", nil }
	loadConfigFile = func(string) (*config.Config, error) { return cfg, nil }
	return cfg
}

func TestLoadConfig(t *testing.T) {
	saveAndRestoreFactories(t)
	notFound := errors.New("config file emrdebug.yaml not found")

	t.Run("explicit path", func(t *testing.T) {
		var loaded string
		findConfigFile = func() (string, error) { t.Fatal("should not search"); return "", nil }
		loadConfigFile = func(path string) (*config.Config, error) {
			loaded = path
			return config.Default(testAccount), nil
		}

		_, err := loadConfig("custom.yaml")
		require.NoError(t, err)
		assert.Equal(t, "custom.yaml", loaded)
	})

	t.Run("discovered file", func(t *testing.T) {
		var loaded string
		findConfigFile = func() (string, error) { return "/work/emrdebug.yaml", nil }
		loadConfigFile = func(path string) (*config.Config, error) {
			loaded = path
			return config.Default(testAccount), nil
		}

		_, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "/work/emrdebug.yaml", loaded)
	})

	t.Run("environment fallback", func(t *testing.T) {
		findConfigFile = func() (string, error) { return "", notFound }
		loadFromEnvironment = func() (*config.Config, error) { return config.Default("210987654321"), nil }

		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "210987654321", cfg.Account)
	})

	t.Run("nothing usable", func(t *testing.T) {
		envErr := errors.New("account is required")
		findConfigFile = func() (string, error) { return "", notFound }
		loadFromEnvironment = func() (*config.Config, error) { return nil, envErr }

		_, err := loadConfig("")
		require.Error(t, err)
		assert.ErrorIs(t, err, notFound)
		assert.ErrorIs(t, err, envErr)
	})
}

func TestLoadConfig_FromFile(t *testing.T) {
	saveAndRestoreFactories(t)

	path := t.TempDir() + "/emrdebug.yaml"
	require.NoError(t, os.WriteFile(path, []byte("account: \""+testAccount+"\"\nname: debug-sandbox\n"), 0600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, testAccount, cfg.Account)
	assert.Equal(t, "debug-sandbox", cfg.Name)
}
