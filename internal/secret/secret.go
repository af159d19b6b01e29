// Package secret generates random strings for one-time credentials.
package secret

import (
	"crypto/rand"
	"errors"
)

// DefaultLen gives ~95 bits of entropy with Alphanumeric.
const DefaultLen = 16

// Alphanumeric is the default character set.
var Alphanumeric = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// ErrCharset is returned for a character set outside 2..256 entries.
var ErrCharset = errors.New("secret: charset must hold 2 to 256 characters")

// New returns a random alphanumeric string of DefaultLen characters.
func New() (string, error) {
	return Generate(DefaultLen, Alphanumeric)
}

// Generate returns a random string of length characters drawn from chars.
// Bytes that would bias the modulo are rejected and redrawn.
func Generate(length int, chars []byte) (string, error) {
	n := len(chars)
	if n < 2 || n > 256 {
		return "", ErrCharset
	}

	if length <= 0 {
		return "", nil
	}

	limit := 256 - (256 % n)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
