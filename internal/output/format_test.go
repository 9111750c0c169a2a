package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/minterra/walletlink/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatAuto, ParseFormat("auto"))
	assert.Equal(t, FormatAuto, ParseFormat("bogus"))
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, FormatText, DetectFormat(&buf, FormatText))
	assert.Equal(t, FormatJSON, DetectFormat(&buf, FormatJSON))
	// Non-file writers are never a TTY.
	assert.Equal(t, FormatJSON, DetectFormat(&buf, FormatAuto))
}

func TestFormatIsJSON(t *testing.T) {
	t.Parallel()

	assert.True(t, FormatJSON.IsJSON())
	assert.False(t, FormatText.IsJSON())
	assert.False(t, FormatAuto.IsJSON())
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, FormatError(&buf, nil, FormatText))
		assert.Empty(t, buf.String())
	})

	t.Run("wallet error text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := walleterr.WithSuggestion(walleterr.ErrNotConnected, "run 'walletlink connect' first")
		require.NoError(t, FormatError(&buf, err, FormatText))
		assert.Contains(t, buf.String(), "Error:")
		assert.Contains(t, buf.String(), "walletlink connect")
	})

	t.Run("wallet error json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, FormatError(&buf, walleterr.ErrProviderUnavailable, FormatJSON))

		var decoded ErrorOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "PROVIDER_UNAVAILABLE", decoded.Error.Code)
		assert.Equal(t, walleterr.ExitUnavailable, decoded.Error.ExitCode)
	})

	t.Run("generic error json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, FormatError(&buf, assert.AnError, FormatJSON))

		var decoded ErrorOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "GENERAL_ERROR", decoded.Error.Code)
	})
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	require.NoError(t, FormatSuccess(&text, "disconnected", FormatText))
	assert.Equal(t, "disconnected\n", text.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, FormatSuccess(&jsonBuf, "disconnected", FormatJSON))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, "success", decoded["status"])
}
