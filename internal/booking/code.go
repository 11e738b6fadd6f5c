package booking

import (
	"fmt"
	"io"
)

// codeAlphabet deliberately excludes 0, O, I and 1 so codes survive being
// read over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	maxCodeAttempts = 10
)

// randomCode draws one candidate confirmation code from rnd. The alphabet
// has 32 characters, so taking each byte mod 32 is unbiased.
func randomCode(rnd io.Reader) (string, error) {
	buf := make([]byte, codeLength)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
