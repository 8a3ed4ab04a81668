package object

import (
	"bytes"

	"github.com/NicolasDP/git/internal/hash"
)

// Commit is a snapshot of a tree with its history and identities.
type Commit struct {
	Tree      hash.SHA1
	Parents   []hash.SHA1
	Author    Person
	Committer Person
	// Encoding is the optional "encoding" header.
	Encoding string
	// Extra holds the remaining headers (gpgsig, mergetag, ...) in order.
	Extra   []Header
	Message string
}

// Kind implements Object.
func (*Commit) Kind() Kind { return KindCommit }

// ParseCommit decodes a commit body.
func ParseCommit(body []byte) (*Commit, error) {
	headers, msg, err := splitHeaders(body)
	if err != nil {
		return nil, err
	}
	c := &Commit{Message: msg}
	var seenTree, seenAuthor, seenCommitter bool
	for _, h := range headers {
		switch h.Key {
		case "tree":
			if seenTree {
				return nil, ErrMalformed.WithContext("reason", "duplicate tree header")
			}
			if c.Tree, err = hash.FromHex(h.Value); err != nil {
				return nil, ErrMalformed.WithContext("reason", "invalid tree id").WithContext("value", h.Value)
			}
			seenTree = true
		case "parent":
			p, err := hash.FromHex(h.Value)
			if err != nil {
				return nil, ErrMalformed.WithContext("reason", "invalid parent id").WithContext("value", h.Value)
			}
			c.Parents = append(c.Parents, p)
		case "author":
			if c.Author, err = ParsePerson(h.Value); err != nil {
				return nil, err
			}
			seenAuthor = true
		case "committer":
			if c.Committer, err = ParsePerson(h.Value); err != nil {
				return nil, err
			}
			seenCommitter = true
		case "encoding":
			c.Encoding = h.Value
		default:
			c.Extra = append(c.Extra, h)
		}
	}
	if !seenTree || !seenAuthor || !seenCommitter {
		return nil, ErrMalformed.WithContext("reason", "commit missing tree, author or committer")
	}
	return c, nil
}

// Encode returns the commit body.
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	writeHeader(&buf, "tree", c.Tree.String())
	for _, p := range c.Parents {
		writeHeader(&buf, "parent", p.String())
	}
	writeHeader(&buf, "author", c.Author.String())
	writeHeader(&buf, "committer", c.Committer.String())
	if c.Encoding != "" {
		writeHeader(&buf, "encoding", c.Encoding)
	}
	for _, h := range c.Extra {
		writeHeader(&buf, h.Key, h.Value)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// Header returns the first extra header named key.
func (c *Commit) Header(key string) (string, bool) {
	for _, h := range c.Extra {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

// Summary is the first line of the message.
func (c *Commit) Summary() string {
	line, _, _ := bytes.Cut([]byte(c.Message), []byte{'\n'})
	return string(line)
}
