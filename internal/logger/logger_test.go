package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesToFileAndParsesLevel(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "app.log")

	out := Setup(path, "debug")
	require.NotNil(t, out)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("ticket_id", 7).Info("Ticket created")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ticket_id=7")

	Setup(path, "nonsense")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
