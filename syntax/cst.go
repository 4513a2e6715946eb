// Package syntax builds the concrete and abstract syntax trees a held
// chord of MIDI notes denotes, and drives the per-tick note on/off
// state machine that produces them.
package syntax

// CSTNode is one held or released note in a chord, linked into the
// tree a live chord builds as notes are struck and released. A
// note-on while the current tail is still held becomes its child (a
// chord extension or melody step); a note-on after the tail has
// released becomes its sibling (a new parallel voice).
type CSTNode struct {
	Parent  *CSTNode
	Child   *CSTNode
	Sibling *CSTNode
	Note    uint8

	Held             bool
	OutlivesAncestor bool
	ExclBass         bool
	ExclChord        bool
	ExclMelody       bool
	ExclStaccato     bool
}

func (n *CSTNode) HasParent() bool { return n.Parent != nil }
func (n *CSTNode) HasChild() bool { return n.Child != nil }
func (n *CSTNode) HasSibling() bool { return n.Sibling != nil }

// CST is the concrete syntax tree accumulated across one phrase: every
// note struck since the last all-notes-off, with held/released state
// and the exclusion bits that disambiguation reads.
type CST struct {
	Head *CSTNode
	Tail *CSTNode
}

func (c *CST) Reset() {
	c.Head = nil
	c.Tail = nil
}

// NoteOn appends a newly struck note to the tree, becoming a child of
// the tail if the tail is still held, or a sibling otherwise.
func (c *CST) NoteOn(note uint8) {
	node := &CSTNode{Note: note, Held: true}

	if c.Tail != nil {
		if c.Tail.Held {
			node.Parent = c.Tail
			c.Tail.Child = node

			c.Tail.ExclStaccato = true

			if c.Tail.OutlivesAncestor {
				node.ExclChord = true
				c.Tail.ExclChord = true
				for ancestor := c.Tail.Parent; ancestor != nil && !ancestor.Held; ancestor = ancestor.Parent {
					ancestor.ExclChord = true
				}
			}

			if grandparent := c.Tail.Parent; grandparent != nil && grandparent.Held {
				grandparent.ExclMelody = true
			}
		} else {
			parent := c.Tail.Parent
			node.Parent = parent
			c.Tail.Sibling = node

			if parent != nil {
				parent.ExclMelody = true
			}
		}
	}

	if c.Head == nil {
		c.Head = node
	}
	c.Tail = node
}

// NoteOff releases the held node for note, walking up from the tail
// through every still-held node in between (each of which therefore
// outlives this release and is marked ineligible as bass/staccato).
func (c *CST) NoteOff(note uint8) {
	allChildrenOff := true
	node := c.Tail
	for node.Note != note {
		if node.Held {
			allChildrenOff = false
			node.OutlivesAncestor = true
			node.ExclBass = true
			node.ExclStaccato = true
		}
		node = node.Parent
		if node == nil {
			panic("syntax: note-off for a note with no matching held ancestor")
		}
	}

	node.Held = false

	if !node.HasChild() || !allChildrenOff {
		node.ExclBass = true
	}

	if allChildrenOff {
		if !node.OutlivesAncestor || node.HasChild() {
			node.ExclMelody = true
		}

		for c.Tail.HasParent() {
			if c.Tail.Parent.Held {
				break
			}
			c.Tail = c.Tail.Parent
		}
	}
}
