package syntax

import (
	"sort"

	"github.com/mddl-lang/mddl/optable"
)

// SyntaxType classifies a disambiguated AST node.
type SyntaxType uint8

const (
	Unknown SyntaxType = iota
	FunctionDef
	FunctionCall
	Branch
	Operator
	Variable
	ValueLiteral
	SequenceLiteral
	Separator
	SyntaxError
)

func (t SyntaxType) String() string {
	switch t {
	case FunctionDef:
		return "DEF"
	case FunctionCall:
		return "FN"
	case Branch:
		return "BR"
	case Operator:
		return "OP"
	case Variable:
		return "VAR"
	case ValueLiteral:
		return "LIT"
	case SequenceLiteral:
		return "SEQ"
	default:
		return "ERROR"
	}
}

const (
	functionMinIDLen   = 3
	branchIDLen        = 2
	seqLiteralMinIDLen = 3
)

// ASTNode is one disambiguated role in a phrase: a function
// definition/call, branch, operator, variable reference, or literal,
// each identified by a Symbol built from the notes that spelled it.
type ASTNode struct {
	Type      SyntaxType
	Parent    *ASTNode
	Child     *ASTNode
	Sibling   *ASTNode
	ID        string
	NoteStart uint8
}

func (n *ASTNode) HasParent() bool { return n.Parent != nil }
func (n *ASTNode) HasChild() bool { return n.Child != nil }
func (n *ASTNode) HasSibling() bool { return n.Sibling != nil }

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// AST is the disambiguated tree built fresh from a CST once every
// note of a phrase has released.
type AST struct {
	Head    *ASTNode
	IEFCode optable.OpId
	Error   bool
}

func (a *AST) Reset() {
	a.Head = nil
	a.IEFCode = optable.IEF_DEFAULT
	a.Error = false
}

func (a *AST) SetIEFCode(code optable.OpId) { a.IEFCode = code }

// BuildFromCST disambiguates cst into a fresh AST rooted at a.Head.
func (a *AST) BuildFromCST(cst *CST) {
	a.Reset()
	a.Head = a.traverseCST(cst.Head, nil, 0)
}

// notesToSymbol encodes a note run as a symbol: the first note mod an
// octave, then each subsequent note as a signed delta from its
// predecessor, so the symbol is invariant under transposition.
func notesToSymbol(notes []uint8) string {
	b := make([]byte, len(notes))
	b[0] = byte(notes[0]) % optable.Octave
	for i := 1; i < len(notes); i++ {
		b[i] = byte(int8(notes[i]) - int8(notes[i-1]))
	}
	return string(b)
}

// notesToSymbolSorted is notesToSymbol over a pitch-sorted copy,
// making chord and branch identifiers independent of strike order.
func notesToSymbolSorted(notes []uint8) string {
	sorted := append([]uint8(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return notesToSymbol(sorted)
}

func cstIsChordStart(n *CSTNode) bool     { return n != nil && !n.ExclChord && n.HasChild() }
func cstIsChordExtension(n *CSTNode) bool { return n != nil && !n.ExclChord && !n.HasSibling() }
func cstIsBass(n *CSTNode) bool           { return n != nil && !n.ExclBass && n.HasChild() }
func cstIsMelodyStart(n *CSTNode) bool    { return n != nil && !n.ExclMelody && n.HasChild() }
func cstIsMelodyContinuation(n *CSTNode) bool {
	return n != nil && !n.ExclMelody && !n.HasSibling()
}
func cstIsStaccatoAbove(n *CSTNode, split uint8) bool {
	return n != nil && !n.ExclStaccato && !n.HasChild() && n.Note > split
}
func cstIsStaccatoBelow(n *CSTNode, split uint8) bool {
	return n != nil && !n.ExclStaccato && !n.HasChild() && n.Note <= split
}

// traverseCST walks one CST subtree, classifying it by the priority
// order function-def/call > branch > operator > variable > value
// literal > sequence literal > separator > error, then recurses into
// its eventual child and sibling.
func (a *AST) traverseCST(cst *CSTNode, parent *ASTNode, split uint8) *ASTNode {
	if cst == nil {
		return nil
	}

	isRoot := parent == nil
	cstStart := cst
	sibling := cst.Sibling
	var child *CSTNode
	splitStart := split

	node := &ASTNode{NoteStart: cst.Note}
	notes := []uint8{cst.Note}

	resolved := false

	if cstIsChordStart(cst) {
		split = maxU8(split, cst.Note)
		cst = cst.Child

		for cstIsChordExtension(cst) {
			notes = append(notes, cst.Note)
			split = maxU8(split, cst.Note)
			cst = cst.Child
		}

		switch {
		case len(notes) >= functionMinIDLen:
			node.ID = notesToSymbolSorted(notes)
			if isRoot && cst == nil {
				node.Type = FunctionDef
			} else {
				node.Type = FunctionCall
			}
			child = cst
			resolved = true
		case isRoot && len(notes) == branchIDLen:
			node.ID = notesToSymbolSorted(notes)
			node.Type = Branch
			child = cst
			resolved = true
		default:
			cst = cstStart
			split = splitStart
			notes = notes[:1]
		}
	}

	if !resolved && cstIsBass(cst) {
		split = maxU8(split, cst.Note)
		cst = cst.Child

		node.ID = notesToSymbol(notes)
		node.Type = Operator
		child = cst
		resolved = true
	}

	if !resolved && cstIsMelodyStart(cst) {
		cst = cst.Child

		for cstIsMelodyContinuation(cst) {
			notes = append(notes, cst.Note)
			cst = cst.Child
		}

		node.ID = notesToSymbol(notes)
		if cst == nil {
			node.Type = Variable
		} else {
			node.Type = SyntaxError
			a.Error = true
		}
		child = cst
		resolved = true
	}

	if !resolved && cstIsStaccatoAbove(cst, split) {
		cst = cst.Sibling

		for cstIsStaccatoAbove(cst, split) {
			notes = append(notes, cst.Note)
			cst = cst.Sibling
		}

		node.ID = notesToSymbol(notes)
		node.Type = ValueLiteral
		sibling = cst
		resolved = true
	}

	if !resolved && cstIsStaccatoBelow(cst, split) {
		idNote := cst.Note
		cst = cst.Sibling

		for cstIsStaccatoBelow(cst, split) && cst.Note == idNote {
			notes = append(notes, cst.Note)
			cst = cst.Sibling
		}

		if len(notes) >= seqLiteralMinIDLen {
			node.ID = notesToSymbol(notes)
			node.Type = SequenceLiteral
			sibling = cst
			resolved = true
		} else {
			cst = cstStart
			notes = notes[:1]
		}
	}

	if !resolved && cstIsStaccatoBelow(cst, split) {
		// separator: contributes no node of its own
		return a.traverseCST(cst.Sibling, parent, splitStart)
	}

	if !resolved {
		node.Type = SyntaxError
		a.Error = true
	}

	if len(node.ID) == 0 {
		node.Type = SyntaxError
	}

	if node.Type != SyntaxError {
		node.Child = a.traverseCST(child, node, split)
	}
	node.Sibling = a.traverseCST(sibling, parent, splitStart)

	return node
}
