package earthengine

type Kind int

const (
	KindConstant Kind = iota
	KindInvocation
	KindArray
	KindDictionary
	KindArgument
	KindFunction
)

// Node is one vertex of an expression graph.
type Node struct {
	Kind     Kind
	Constant any
	Function string
	Args     map[string]*Node
	Items    []*Node
	Entries  map[string]*Node
	// Name is the referenced argument for KindArgument.
	Name   string
	Params []string
	Body   *Node
}

// Valuer is implemented by every typed wrapper around a Node.
type Valuer interface {
	Node() *Node
}

func (n *Node) Node() *Node { return n }

func Constant(v any) *Node {
	return &Node{Kind: KindConstant, Constant: v}
}

func Invoke(function string, args map[string]*Node) *Node {
	if args == nil {
		args = map[string]*Node{}
	}
	return &Node{Kind: KindInvocation, Function: function, Args: args}
}

func Array(items ...*Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

func Dictionary(entries map[string]*Node) *Node {
	return &Node{Kind: KindDictionary, Entries: entries}
}

func ArgumentRef(name string) *Node {
	return &Node{Kind: KindArgument, Name: name}
}

func Function(params []string, body *Node) *Node {
	return &Node{Kind: KindFunction, Params: params, Body: body}
}

// Arg returns the named argument of an invocation, or nil.
func (n *Node) Arg(name string) *Node {
	if n == nil || n.Args == nil {
		return nil
	}
	return n.Args[name]
}

// Walk visits n and everything reachable from it depth first, lambda bodies
// included. Returning false from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, key := range sortedKeys(n.Args) {
		Walk(n.Args[key], fn)
	}
	for _, item := range n.Items {
		Walk(item, fn)
	}
	for _, key := range sortedKeys(n.Entries) {
		Walk(n.Entries[key], fn)
	}
	Walk(n.Body, fn)
}

// FindInvocations lists every invocation of function reachable from v.
func FindInvocations(v Valuer, function string) []*Node {
	var found []*Node
	Walk(v.Node(), func(n *Node) bool {
		if n.Kind == KindInvocation && n.Function == function {
			found = append(found, n)
		}
		return true
	})
	return found
}

// lambdaDepth is the deepest nesting of function definitions inside n.
func lambdaDepth(n *Node) int {
	depth := 0
	Walk(n, func(c *Node) bool {
		if c.Kind == KindFunction {
			if d := 1 + lambdaDepth(c.Body); d > depth {
				depth = d
			}
			return false
		}
		return true
	})
	return depth
}

// lambda builds a one-argument function. Variable names depend only on nesting
// depth, so equal bodies always encode the same way.
func lambda(build func(arg *Node) *Node) *Node {
	arg := ArgumentRef("")
	body := build(arg)
	arg.Name = mappingVar(lambdaDepth(body))
	return Function([]string{arg.Name}, body)
}
