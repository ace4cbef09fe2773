package ident

import "strings"

// MaxDepth bounds how many upgrade branches a path can hold.
const MaxDepth = 15

// Path is a sequence of upgrade-branch choices packed into a small integer
// vector: bit i holds the branch taken at depth i, n counts the branches.
type Path struct {
	bits uint16
	n    uint8
}

// PathOf builds a path from explicit branches. Any non-zero branch counts as 1;
// branches beyond MaxDepth are dropped.
func PathOf(branches ...uint8) Path {
	var p Path
	for _, b := range branches {
		next, ok := p.Child(b)
		if !ok {
			break
		}
		p = next
	}
	return p
}

// ParsePath reads a string over {0,1}. The empty string is the root path.
func ParsePath(s string) (Path, bool) {
	if len(s) > MaxDepth {
		return Path{}, false
	}
	var p Path
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			p.bits |= 1 << i
		default:
			return Path{}, false
		}
	}
	p.n = uint8(len(s))
	return p, true
}

// Len is the depth below the root.
func (p Path) Len() int { return int(p.n) }

// At returns the branch taken at depth i.
func (p Path) At(i int) uint8 {
	if i < 0 || i >= int(p.n) {
		return 0
	}
	return uint8(p.bits>>i) & 1
}

// Child appends a branch. ok is false once MaxDepth is reached.
func (p Path) Child(branch uint8) (Path, bool) {
	if int(p.n) >= MaxDepth {
		return p, false
	}
	if branch != 0 {
		p.bits |= 1 << p.n
	}
	p.n++
	return p, true
}

// Parent drops the last branch. ok is false for the root path.
func (p Path) Parent() (Path, bool) {
	if p.n == 0 {
		return p, false
	}
	p.n--
	p.bits &^= 1 << p.n
	return p, true
}

// Last returns the final branch, or 0 for the root path.
func (p Path) Last() uint8 {
	if p.n == 0 {
		return 0
	}
	return p.At(int(p.n) - 1)
}

func (p Path) String() string {
	var b strings.Builder
	p.appendTo(&b)
	return b.String()
}

func (p Path) appendTo(b *strings.Builder) {
	for i := 0; i < int(p.n); i++ {
		b.WriteByte('0' + p.At(i))
	}
}
