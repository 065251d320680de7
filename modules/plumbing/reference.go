package plumbing

import "strings"

// ReferenceName is a slash-separated ref path, e.g. "refs/heads/master" or
// "HEAD".
type ReferenceName string

const (
	HEAD      ReferenceName = "HEAD"
	MergeHead ReferenceName = "MERGE_HEAD"

	refHeadsPrefix ReferenceName = "refs/heads/"
	refTagsPrefix  ReferenceName = "refs/tags/"
)

func (n ReferenceName) String() string { return string(n) }

// IsBranch reports whether n points into refs/heads/.
func (n ReferenceName) IsBranch() bool { return strings.HasPrefix(string(n), string(refHeadsPrefix)) }

// IsTag reports whether n points into refs/tags/.
func (n ReferenceName) IsTag() bool { return strings.HasPrefix(string(n), string(refTagsPrefix)) }

// Short strips the refs/heads/ or refs/tags/ prefix, leaving the bare
// branch or tag name. Names outside those namespaces are returned as-is.
func (n ReferenceName) Short() string {
	s := string(n)
	switch {
	case strings.HasPrefix(s, string(refHeadsPrefix)):
		return s[len(refHeadsPrefix):]
	case strings.HasPrefix(s, string(refTagsPrefix)):
		return s[len(refTagsPrefix):]
	default:
		return s
	}
}

// NewBranchReferenceName builds refs/heads/<short>.
func NewBranchReferenceName(short string) ReferenceName {
	return refHeadsPrefix + ReferenceName(short)
}

// NewTagReferenceName builds refs/tags/<short>.
func NewTagReferenceName(short string) ReferenceName {
	return refTagsPrefix + ReferenceName(short)
}

// ReferenceType distinguishes a ref pointing directly at an object from one
// pointing at another ref.
type ReferenceType int8

const (
	InvalidReference ReferenceType = iota
	HashReference
	SymbolicReference
)

// RefValue is the on-disk payload of a single ref: either a direct oid or
// a symbolic target, never both. This mirrors original_source's
// RefValue(oid, is_symbolic) namedtuple, rendered as a tagged struct rather
// than relying on a sentinel string prefix at every call site.
type RefValue struct {
	Oid      Hash
	Symbolic bool
	Target   ReferenceName // only meaningful when Symbolic
}

// IsUnborn reports whether the ref is a direct (non-symbolic) ref that has
// never been pointed at a commit — the "branch exists but has no commits
// yet" state produced by Init and by CreateBranch before a first commit.
func (v RefValue) IsUnborn() bool {
	return !v.Symbolic && v.Oid.IsZero()
}

// Reference pairs a name with its resolved value.
type Reference struct {
	Name  ReferenceName
	Value RefValue
}

func NewHashReference(name ReferenceName, oid Hash) *Reference {
	return &Reference{Name: name, Value: RefValue{Oid: oid}}
}

func NewSymbolicReference(name, target ReferenceName) *Reference {
	return &Reference{Name: name, Value: RefValue{Symbolic: true, Target: target}}
}

func (r *Reference) Type() ReferenceType {
	if r == nil {
		return InvalidReference
	}
	if r.Value.Symbolic {
		return SymbolicReference
	}
	return HashReference
}

// ReferenceSlice attaches sort.Interface to a slice of *Reference, ordered
// by name.
type ReferenceSlice []*Reference

func (p ReferenceSlice) Len() int           { return len(p) }
func (p ReferenceSlice) Less(i, j int) bool { return p[i].Name < p[j].Name }
func (p ReferenceSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
