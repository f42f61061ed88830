// internal/words/codec.go
//
// Passphrase codec for word list entries.
// Entries use the OpenSSL "Salted__" format that CryptoJS.AES emits when
// given a string passphrase:
//
//	base64("Salted__" || salt[8] || AES-256-CBC(PKCS#7(plaintext)))
//
// with key and IV derived by EVP_BytesToKey(MD5, passphrase, salt).
// This keeps the embedded list unreadable at a glance; it is not meant to
// withstand anyone holding the binary.

package words

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var saltedPrefix = []byte("Salted__")

const (
	saltLen = 8
	keyLen  = 32
)

// ErrDecode reports an entry that cannot be turned back into a word.
var ErrDecode = errors.New("words: decode failed")

// Encode encrypts plain under passphrase with a fresh random salt.
func Encode(plain, passphrase string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	return encodeWithSalt(plain, passphrase, salt)
}

func encodeWithSalt(plain, passphrase string, salt []byte) (string, error) {
	key, iv := deriveKeyIV([]byte(passphrase), salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	data := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)

	buf := make([]byte, 0, len(saltedPrefix)+saltLen+len(out))
	buf = append(buf, saltedPrefix...)
	buf = append(buf, salt...)
	buf = append(buf, out...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Decode reverses Encode. Any malformed input, wrong passphrase or empty
// plaintext yields an error wrapping ErrDecode.
func Decode(entry, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(entry)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	if len(raw) < len(saltedPrefix)+saltLen+aes.BlockSize || !bytes.HasPrefix(raw, saltedPrefix) {
		return "", fmt.Errorf("%w: not a salted entry", ErrDecode)
	}
	salt := raw[len(saltedPrefix) : len(saltedPrefix)+saltLen]
	body := raw[len(saltedPrefix)+saltLen:]
	if len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext not block aligned", ErrDecode)
	}

	key, iv := deriveKeyIV([]byte(passphrase), salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)

	plain, ok := pkcs7Unpad(out, aes.BlockSize)
	if !ok {
		return "", fmt.Errorf("%w: bad padding", ErrDecode)
	}
	if len(plain) == 0 {
		return "", fmt.Errorf("%w: empty plaintext", ErrDecode)
	}
	return string(plain), nil
}

// deriveKeyIV is OpenSSL's EVP_BytesToKey with MD5 and one iteration.
func deriveKeyIV(pass, salt []byte) (key, iv []byte) {
	var (
		derived []byte
		prev    []byte
	)
	for len(derived) < keyLen+aes.BlockSize {
		h := md5.New()
		h.Write(prev)
		h.Write(pass)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+aes.BlockSize]
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append([]byte{}, b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
