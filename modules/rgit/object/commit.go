package object

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/rgitvcs/rgit/modules/plumbing"
)

// Commit is the decoded form of a commit object: a tree, zero or more
// parents, and a free-form message. No author/timestamp metadata — an
// explicit non-goal.
type Commit struct {
	Tree    plumbing.Hash
	Parents []plumbing.Hash
	Message string
}

// Encode renders the commit header block ("tree <oid>" then "parent <oid>"
// lines, omitting the zero hash for commits with no parent), a blank line,
// then the message verbatim.
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString("tree ")
	buf.WriteString(c.Tree.String())
	buf.WriteByte('\n')
	for _, p := range c.Parents {
		if p.IsZero() {
			continue
		}
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeCommit parses a commit object's payload. Header lines are read
// until the first blank line; any header key other than "tree"/"parent"
// fails with MalformedObject.
func DecodeCommit(oid plumbing.Hash, payload []byte) (*Commit, error) {
	c := &Commit{}
	sc := bufio.NewScanner(bytes.NewReader(payload))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	haveTree := false
	var headerEnd int
	for sc.Scan() {
		line := sc.Text()
		headerEnd += len(line) + 1
		if line == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, "tree "):
			oidStr := strings.TrimPrefix(line, "tree ")
			h, err := plumbing.NewHashEx(oidStr)
			if err != nil {
				return nil, plumbing.NewErrMalformedObject(oid, "malformed tree header: "+oidStr)
			}
			c.Tree = h
			haveTree = true
		case strings.HasPrefix(line, "parent "):
			oidStr := strings.TrimPrefix(line, "parent ")
			h, err := plumbing.NewHashEx(oidStr)
			if err != nil {
				return nil, plumbing.NewErrMalformedObject(oid, "malformed parent header: "+oidStr)
			}
			c.Parents = append(c.Parents, h)
		default:
			return nil, plumbing.NewErrMalformedObject(oid, "unknown commit header: "+line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, plumbing.NewErrIo(err)
	}
	if !haveTree {
		return nil, plumbing.NewErrMalformedObject(oid, "missing tree header")
	}
	if headerEnd > len(payload) {
		headerEnd = len(payload)
	}
	c.Message = string(payload[headerEnd:])
	return c, nil
}
