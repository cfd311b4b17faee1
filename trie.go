package mrtrie

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Node is one position along a token path. The root represents the empty
// prefix.
//
// Fields are exported so that encoders (gob, YAML) can reconstruct the tree.
type Node struct {
	IDs      []string         `yaml:"ids,omitempty"`      // entities ending exactly here, in insertion order
	Children map[string]*Node `yaml:"children,omitempty"` // next token -> child
}

// NewNode returns an empty node.
func NewNode() *Node {
	return &Node{Children: make(map[string]*Node)}
}

// Child returns the child reached by token, if any.
func (n *Node) Child(token string) (*Node, bool) {
	c, ok := n.Children[token]
	return c, ok
}

// childOrInsert returns the child for token, creating it if absent.
// The boolean reports whether a new node was created.
func (n *Node) childOrInsert(token string) (*Node, bool) {
	if c, ok := n.Children[token]; ok {
		return c, false
	}
	if n.Children == nil {
		n.Children = make(map[string]*Node)
	}
	c := NewNode()
	n.Children[token] = c
	return c, true
}

// Lookup follows tokens from n and returns the node at the end of the path.
// An empty token list returns n itself.
func (n *Node) Lookup(tokens []string) (*Node, bool) {
	cur := n
	for _, t := range tokens {
		next, ok := cur.Children[t]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// IsTerminal reports whether at least one entity ends at n.
func (n *Node) IsTerminal() bool {
	return len(n.IDs) > 0
}

// Len returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Len() int {
	count := 1
	for _, c := range n.Children {
		count += c.Len()
	}
	return count
}

// Walk visits n and every descendant depth-first, passing the token path
// from n. Siblings are visited in sorted token order. The path slice is
// reused between calls; copy it to retain it. A non-nil error from fn stops
// the walk and is returned.
func (n *Node) Walk(fn func(path []string, node *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) error) error {
	if err := fn(path, n); err != nil {
		return err
	}
	for _, token := range n.sortedTokens() {
		if err := n.Children[token].walk(append(path, token), fn); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) sortedTokens() []string {
	tokens := make([]string, 0, len(n.Children))
	for t := range n.Children {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Print writes the subtree below n, one child per line, indented by depth.
// Terminal nodes show their ids after the token.
func (n *Node) Print(w io.Writer, indent int) error {
	for _, token := range n.sortedTokens() {
		child := n.Children[token]
		if _, err := fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", indent), token, formatIDs(child.IDs)); err != nil {
			return err
		}
		if err := child.Print(w, indent+4); err != nil {
			return err
		}
	}
	return nil
}

// PrintFrom writes the child of n reached by startToken and its subtree.
func (n *Node) PrintFrom(w io.Writer, startToken string) error {
	child, ok := n.Children[startToken]
	if !ok {
		return fmt.Errorf("no trie entry for token %q", startToken)
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", startToken, formatIDs(child.IDs)); err != nil {
		return err
	}
	return child.Print(w, 4)
}

func formatIDs(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return " [" + strings.Join(ids, " ") + "]"
}

// Builder inserts entities into a token trie.
// It is not safe for concurrent use.
type Builder struct {
	root   *Node
	nodes  int
	tokens int
}

// NewBuilder returns a Builder holding an empty root.
func NewBuilder() *Builder {
	return &Builder{root: NewNode(), nodes: 1}
}

// Insert adds one entity. Shared prefixes reuse existing nodes; the id is
// appended to the node at the end of the token path.
func (b *Builder) Insert(e Entity) {
	node := b.root
	b.tokens += len(e.Tokens)
	for _, token := range e.Tokens {
		var created bool
		node, created = node.childOrInsert(token)
		if created {
			b.nodes++
		}
	}
	node.IDs = append(node.IDs, e.ID)
}

// Root returns the trie built so far. The caller owns it from then on and
// must not keep inserting through b.
func (b *Builder) Root() *Node { return b.root }

// NodeCount returns the number of nodes created, the root included.
func (b *Builder) NodeCount() int { return b.nodes }

// TokenCount returns the number of tokens consumed across all insertions.
func (b *Builder) TokenCount() int { return b.tokens }

// BuildTrie inserts entities in order and returns the root. A nil logger
// falls back to the logrus standard logger.
func BuildTrie(entities []Entity, logger logrus.FieldLogger) *Node {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	b := NewBuilder()
	for _, e := range entities {
		b.Insert(e)
	}
	log := logger.WithField("component", "builder")
	log.Infof("%d tokens", b.TokenCount())
	log.Infof("%d trie nodes", b.NodeCount())
	return b.Root()
}
