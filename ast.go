package mathvm

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. The tree is
// owned by its root and discarded after compilation.
type node struct {
	kind nodeKind

	// val is the literal value of a nodeNum.
	val float64
	// name is the variable name of a nodeVar or the function name of a
	// nodeCall.
	name string
	// pos is the position of the token that started this node.
	pos Position

	left  *node
	right *node
	// args is the ordered argument list of a nodeCall.
	args []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum // push val
	nodeVar // push lookup(name)

	nodeNeg // evaluate left, then negate

	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right

	nodeCall // name is the function to call on args
)

//go:generate go mod edit -require=golang.org/x/tools@v0.1.0
//go:generate go mod download
//go:generate go run golang.org/x/tools/cmd/stringer -type=nodeKind -trimprefix=node
//go:generate go mod tidy

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes a fully parenthesized rendering of the subtree, which the
// parser tests compare against.
func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeNum:
		b.WriteString(strconv.FormatFloat(n.val, 'g', -1, 64))
	case nodeVar:
		b.WriteString(n.name)
	case nodeNeg:
		b.WriteString("(-")
		n.left.fmt(b)
		b.WriteByte(')')
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteString(opstrs[n.kind])
		n.right.fmt(b)
		b.WriteByte(')')
	case nodeCall:
		b.WriteString(n.name)
		b.WriteByte('(')
		for i, a := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.fmt(b)
		}
		b.WriteByte(')')
	default:
		panic("mathvm: invalid node kind " + n.kind.String())
	}
}

var opstrs = map[nodeKind]string{
	nodeAdd: " + ",
	nodeSub: " - ",
	nodeMul: " * ",
	nodeDiv: " / ",
	nodePow: " ^ ",
}
