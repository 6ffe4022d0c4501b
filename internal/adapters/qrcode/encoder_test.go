package qrcode

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGEncoder_EncodeImage(t *testing.T) {
	enc := NewPNGEncoder()

	t.Run("produces a PNG data URI", func(t *testing.T) {
		out, err := enc.EncodeImage("KIVU1:p-1:ev-1:u-1")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/png;base64,"))
		require.NoError(t, err)
		// PNG magic bytes.
		require.GreaterOrEqual(t, len(raw), 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, raw[:8])
	})

	t.Run("deterministic for the same payload", func(t *testing.T) {
		a, err := enc.EncodeImage("KIVU1:p-1:ev-1:u-1")
		require.NoError(t, err)
		b, err := enc.EncodeImage("KIVU1:p-1:ev-1:u-1")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		_, err := enc.EncodeImage("")
		assert.Error(t, err)
	})
}
