package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs_RoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated a few times. " +
		"the quick brown fox jumps over the lazy dog, repeated a few times.")

	codecs := map[string]Codec{
		"UNCOMPRESSED": Uncompressed{},
		"SNAPPY":       Snappy{},
		"GZIP":         GZip{},
		"ZSTD":         ZStd{},
		"BROTLI":       Brotli{},
		"LZ4":          LZ4{},
	}

	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			compressed, err := c.Compress(data)
			require.NoError(t, err)

			decompressed, err := c.Decompress(compressed, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, decompressed)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "UNCOMPRESSED", "SNAPPY", "GZIP", "ZSTD", "BROTLI", "LZ4"} {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.NotNil(t, c)
	}

	_, err := ByName("UNKNOWN")
	assert.Error(t, err)
}
