package object

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/NicolasDP/git/internal/hash"
)

// maxHeaderLen bounds "<kind> <size>\x00": "commit" plus a 20 digit size.
const maxHeaderLen = 32

// EncodeEnvelope wraps body in its "<kind> <size>\x00" header.
func EncodeEnvelope(kind Kind, body []byte) []byte {
	header := kind.String() + " " + strconv.Itoa(len(body))
	out := make([]byte, 0, len(header)+1+len(body))
	out = append(out, header...)
	out = append(out, 0)
	return append(out, body...)
}

// DecodeEnvelope splits raw envelope bytes and checks the declared size.
func DecodeEnvelope(data []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(data, 0)
	if nul < 0 || nul > maxHeaderLen {
		return 0, nil, ErrMalformed.WithContext("reason", "missing envelope header")
	}
	kind, size, err := parseHeader(string(data[:nul]))
	if err != nil {
		return 0, nil, err
	}
	body := data[nul+1:]
	if int64(len(body)) != size {
		return 0, nil, ErrMalformed.
			WithContext("reason", "size mismatch").
			WithContext("declared", size).
			WithContext("actual", len(body))
	}
	return kind, body, nil
}

// ReadHeader consumes the envelope header from r, leaving r at the body.
func ReadHeader(r *bufio.Reader) (Kind, int64, error) {
	raw, err := r.ReadString(0)
	if err != nil {
		if err == io.EOF {
			return 0, 0, ErrMalformed.WithContext("reason", "truncated envelope header")
		}
		return 0, 0, err
	}
	if len(raw) > maxHeaderLen+1 {
		return 0, 0, ErrMalformed.WithContext("reason", "envelope header too long")
	}
	return parseHeader(raw[:len(raw)-1])
}

func parseHeader(header string) (Kind, int64, error) {
	sp := strings.IndexByte(header, ' ')
	if sp < 0 {
		return 0, 0, ErrMalformed.WithContext("reason", "envelope header without size")
	}
	kind, err := ParseKind(header[:sp])
	if err != nil {
		return 0, 0, err
	}
	size, err := strconv.ParseInt(header[sp+1:], 10, 64)
	if err != nil || size < 0 {
		return 0, 0, ErrMalformed.WithContext("reason", "invalid envelope size").WithContext("size", header[sp+1:])
	}
	return kind, size, nil
}

// ID returns the object id of body stored as kind.
func ID(kind Kind, body []byte) hash.SHA1 {
	return hash.SumObject(kind.String(), body)
}
