// Package tree provides read-only traversal over troop upgrade trees and the
// registry of every player faction's custom trees.
package tree

import (
	"iter"

	"github.com/talgya/warband/internal/troops"
)

// Children returns the upgrade targets of n (0, 1 or 2 troops).
func Children(n *troops.Troop) []*troops.Troop {
	if n == nil {
		return nil
	}
	return n.Children()
}

// Walk yields the subtree rooted at root in pre-order. The sequence can be
// ranged over any number of times.
func Walk(root *troops.Troop) iter.Seq[*troops.Troop] {
	return func(yield func(*troops.Troop) bool) {
		if root == nil {
			return
		}
		stack := []*troops.Troop{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			kids := n.Children()
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// Contains reports whether t is a node of the subtree rooted at root.
func Contains(root, t *troops.Troop) bool {
	if t == nil {
		return false
	}
	for n := range Walk(root) {
		if n == t || n.ID == t.ID {
			return true
		}
	}
	return false
}

// Find returns the node with the given id below root.
func Find(root *troops.Troop, id string) (*troops.Troop, bool) {
	for n := range Walk(root) {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Depth is the number of levels in the subtree rooted at root.
func Depth(root *troops.Troop) int {
	if root == nil {
		return 0
	}
	d := 0
	for _, c := range root.Children() {
		d = max(d, Depth(c))
	}
	return d + 1
}

// Count is the number of nodes below and including root.
func Count(root *troops.Troop) int {
	n := 0
	for range Walk(root) {
		n++
	}
	return n
}
