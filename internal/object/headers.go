package object

import (
	"bytes"
	"strings"
)

// Header is one "key value" line of a commit or tag. Values spanning
// several lines (gpgsig, mergetag) hold the lines joined by '\n'.
type Header struct {
	Key   string
	Value string
}

// splitHeaders parses the header block up to the first empty line and
// returns the remaining bytes as the message.
func splitHeaders(body []byte) ([]Header, string, error) {
	var headers []Header
	rest := body
	for len(rest) > 0 {
		nl := bytes.IndexByte(rest, '\n')
		var line []byte
		if nl < 0 {
			line, rest = rest, nil
		} else {
			line, rest = rest[:nl], rest[nl+1:]
		}
		if len(line) == 0 {
			return headers, string(rest), nil
		}
		if line[0] == ' ' {
			if len(headers) == 0 {
				return nil, "", ErrMalformed.WithContext("reason", "continuation line before any header")
			}
			last := &headers[len(headers)-1]
			last.Value += "\n" + string(line[1:])
			continue
		}
		key, value, _ := strings.Cut(string(line), " ")
		headers = append(headers, Header{Key: key, Value: value})
	}
	return headers, "", nil
}

// writeHeader encodes a header, continuing multi-line values with a
// leading space.
func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteByte(' ')
	buf.WriteString(strings.ReplaceAll(value, "\n", "\n "))
	buf.WriteByte('\n')
}
