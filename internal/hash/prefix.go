package hash

import (
	"encoding/hex"
	"strings"
)

// Prefix is an abbreviated object id of 1 to 40 hex digits.
type Prefix struct {
	raw    [Size]byte
	nibble int
}

// ParsePrefix parses an abbreviated hex id. Upper-case digits are accepted.
func ParsePrefix(s string) (Prefix, error) {
	var p Prefix
	if len(s) == 0 || len(s) > HexSize {
		return p, ErrInvalidHash.WithContext("value", s).WithContext("reason", "prefix must be 1 to 40 hex digits")
	}
	s = strings.ToLower(s)
	padded := s
	if len(padded)%2 == 1 {
		padded += "0"
	}
	if _, err := hex.Decode(p.raw[:len(padded)/2], []byte(padded)); err != nil {
		return Prefix{}, ErrInvalidHash.WithContext("value", s).WithContext("reason", err.Error())
	}
	p.nibble = len(s)
	return p, nil
}

// PrefixOf returns the prefix of h holding n hex digits.
func PrefixOf(h SHA1, n int) Prefix {
	if n < 1 {
		n = 1
	}
	if n > HexSize {
		n = HexSize
	}
	p := Prefix{raw: h, nibble: n}
	for i := (n + 1) / 2; i < Size; i++ {
		p.raw[i] = 0
	}
	if n%2 == 1 {
		p.raw[n/2] &= 0xf0
	}
	return p
}

// Len returns the number of hex digits.
func (p Prefix) Len() int {
	return p.nibble
}

// Bytes returns the whole bytes of the prefix, including a trailing half
// byte padded with zero when Len is odd.
func (p Prefix) Bytes() []byte {
	return append([]byte(nil), p.raw[:(p.nibble+1)/2]...)
}

// FirstByte is the fanout bucket every match falls into.
func (p Prefix) FirstByte() (b byte, exact bool) {
	return p.raw[0], p.nibble >= 2
}

// Full reports whether the prefix names exactly one id.
func (p Prefix) Full() (SHA1, bool) {
	return p.raw, p.nibble == HexSize
}

// Matches reports whether h starts with the prefix.
func (p Prefix) Matches(h SHA1) bool {
	whole := p.nibble / 2
	for i := range whole {
		if h[i] != p.raw[i] {
			return false
		}
	}
	if p.nibble%2 == 1 {
		return h[whole]&0xf0 == p.raw[whole]
	}
	return true
}

// Compare orders h relative to the range of ids matching p: negative when
// h sorts before every match, positive when after, zero when h matches.
func (p Prefix) Compare(h SHA1) int {
	whole := p.nibble / 2
	for i := range whole {
		if h[i] != p.raw[i] {
			if h[i] < p.raw[i] {
				return -1
			}
			return 1
		}
	}
	if p.nibble%2 == 1 {
		hi := h[whole] & 0xf0
		switch {
		case hi < p.raw[whole]:
			return -1
		case hi > p.raw[whole]:
			return 1
		}
	}
	return 0
}

// String returns the hex digits.
func (p Prefix) String() string {
	return hex.EncodeToString(p.raw[:(p.nibble+1)/2])[:p.nibble]
}
