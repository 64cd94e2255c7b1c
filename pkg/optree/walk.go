package optree

// Visit tells Walk whether to descend into the children of the node it
// just visited.
type Visit int

const (
	Continue Visit = iota
	Skip
)

// Visitor is called once per node in pre-order. parent is nil for the root.
type Visitor func(n, parent Node) Visit

// Walk visits root and its descendants depth-first, pre-order, following
// First/Sibling links. Children of a node are skipped when the visitor
// returns Skip for it.
func Walk(root Node, visit Visitor) {
	if root == nil {
		return
	}
	walk(root, nil, visit)
}

func walk(n, parent Node, visit Visitor) {
	if visit(n, parent) == Skip {
		return
	}
	for kid := n.First(); kid != nil; kid = kid.Sibling() {
		walk(kid, n, visit)
	}
}

// Kids returns the children of n in order.
func Kids(n Node) []Node {
	var kids []Node
	for kid := n.First(); kid != nil; kid = kid.Sibling() {
		kids = append(kids, kid)
	}
	return kids
}

// Last returns the last child of n, or nil.
func Last(n Node) Node {
	var last Node
	for kid := n.First(); kid != nil; kid = kid.Sibling() {
		last = kid
	}
	return last
}

// FirstExecuted finds the op that runs first when the region rooted at n is
// executed: a pure left-hugging descent that ignores execution links.
func FirstExecuted(n Node) Node {
	for {
		first := n.First()
		if first == nil {
			return n
		}
		n = first
	}
}
