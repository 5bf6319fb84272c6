package token

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedUID is returned when an encoded user id cannot be decoded.
var ErrMalformedUID = errors.New("malformed user id")

// EncodeUID renders a user id as unpadded URL-safe base64 of its decimal form.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID. Padded input is accepted.
func DecodeUID(encoded string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return 0, ErrMalformedUID
	}
	id, err := strconv.ParseUint(string(raw), 10, 0)
	if err != nil || id == 0 {
		return 0, ErrMalformedUID
	}
	return uint(id), nil
}
