package words

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Produced by `openssl enc -aes-256-cbc -md md5 -a -salt`, which is the
// same format CryptoJS.AES.encrypt emits for a passphrase.
const (
	opensslCrane     = "U2FsdGVkX18yOwPLUnFJnyvohphguJr1y0WmuRugjB0=" // "CRANE" / "base640"
	opensslLowerWrap = "U2FsdGVkX19Ojn3K0b448QsJl37uNIA+Mc80wBFg6NE=" // "crane" / "base6432"
)

func TestDecodeOpenSSLVector(t *testing.T) {
	got, err := Decode(opensslCrane, "base640")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", got)

	got, err = Decode(opensslLowerWrap, "base6432")
	require.NoError(t, err)
	assert.Equal(t, "crane", got)
}

func TestDecodeWrongKey(t *testing.T) {
	for _, key := range []string{"base641", "base64", "base6400", "nope"} {
		_, err := Decode(opensslCrane, key)
		assert.True(t, errors.Is(err, ErrDecode), "key %q: %v", key, err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"not base64", "%%%"},
		{"too short", "U2FsdGVkX18="},
		{"missing salt header", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.entry, "base640")
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	words := []string{"A", "CRANE", "ORBIT", "SIXTEENLETTERSAB", "SEVENTEENLETTERSX"}
	for i, w := range words {
		key := DefaultKeyPrefix + string(rune('0'+i))
		enc, err := Encode(w, key)
		require.NoError(t, err)

		got, err := Decode(enc, key)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestEncodeUsesFreshSalt(t *testing.T) {
	a, err := Encode("CRANE", "k")
	require.NoError(t, err)
	b, err := Encode("CRANE", "k")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncodeWithSaltMatchesOpenSSL(t *testing.T) {
	raw := mustBase64(t, opensslCrane)
	got, err := encodeWithSalt("CRANE", "base640", raw[8:16])
	require.NoError(t, err)
	assert.Equal(t, opensslCrane, got)
}

func TestDecodeEmptyPlaintext(t *testing.T) {
	enc, err := Encode("", "k")
	require.NoError(t, err)
	_, err = Decode(enc, "k")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestPKCS7(t *testing.T) {
	padded := pkcs7Pad([]byte("abc"), 16)
	assert.Len(t, padded, 16)
	out, ok := pkcs7Unpad(padded, 16)
	require.True(t, ok)
	assert.Equal(t, "abc", string(out))

	full := pkcs7Pad(make([]byte, 16), 16)
	assert.Len(t, full, 32)

	_, ok = pkcs7Unpad(append(make([]byte, 15), 0), 16)
	assert.False(t, ok)
	_, ok = pkcs7Unpad(append(make([]byte, 15), 17), 16)
	assert.False(t, ok)
}
