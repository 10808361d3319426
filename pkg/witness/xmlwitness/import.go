package xmlwitness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/witness"
)

// Options configures an import.
type Options struct {
	// Root is an XPath expression selecting the element that holds the
	// witness text. Empty means the document element.
	Root string

	// Normalize computes Token.Normalized. Nil means witness.Normalize.
	Normalize witness.NormalizeFunc
}

// variantContainers open a variation point with one branch per element child.
var variantContainers = map[string]bool{
	"subst":  true,
	"app":    true,
	"choice": true,
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+\s*|[^\p{L}\p{N}_\s]+\s*`)

// Tokenize splits text into word and punctuation tokens. Each token keeps
// the whitespace that follows it.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// CompileRoot validates an XPath root expression.
func CompileRoot(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := xpath.Compile(expr); err != nil {
		return fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return nil
}

// Import parses an XML document from r and builds the witness graph.
func Import(sigil string, r io.Reader, opts Options) (*witness.Graph, error) {
	if err := hcerrors.ValidateSigil(sigil); err != nil {
		return nil, err
	}
	if err := CompileRoot(opts.Root); err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidInput, err, "witness %s", sigil)
	}

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidWitness, err, "parse witness %s", sigil)
	}

	root, err := selectRoot(doc, opts.Root)
	if err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidWitness, err, "witness %s", sigil)
	}

	var bopts []witness.BuilderOption
	if opts.Normalize != nil {
		bopts = append(bopts, witness.WithNormalizer(opts.Normalize))
	}
	w := &walker{b: witness.NewBuilder(sigil, bopts...)}
	w.element(root)

	g, err := w.b.Build()
	if err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidWitness, err, "build witness %s", sigil)
	}
	return g, nil
}

// ImportString is a convenience wrapper around Import for in-memory documents.
func ImportString(sigil, xml string, opts Options) (*witness.Graph, error) {
	return Import(sigil, strings.NewReader(xml), opts)
}

// ImportFile reads and imports the XML document at path.
func ImportFile(sigil, path string, opts Options) (*witness.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, hcerrors.Wrap(hcerrors.ErrCodeFileNotFound, err, "witness %s", sigil)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Import(sigil, bytes.NewReader(data), opts)
}

func selectRoot(doc *xmlquery.Node, expr string) (*xmlquery.Node, error) {
	if expr != "" {
		n, err := xmlquery.Query(doc, expr)
		if err != nil {
			return nil, fmt.Errorf("xpath query failed: %w", err)
		}
		if n == nil || n.Type != xmlquery.ElementNode {
			return nil, fmt.Errorf("root %q matched no element", expr)
		}
		return n, nil
	}
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child, nil
		}
	}
	return nil, fmt.Errorf("document has no root element")
}

// walker feeds an XML tree into a witness.Builder.
type walker struct {
	b *witness.Builder
}

func attrs(n *xmlquery.Node) map[string]string {
	if len(n.Attr) == 0 {
		return nil
	}
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Name.Local] = a.Value
	}
	return m
}

func isDelAdd(n *xmlquery.Node) bool {
	return n.Type == xmlquery.ElementNode && (n.Data == "del" || n.Data == "add")
}

func isBlank(n *xmlquery.Node) bool {
	return n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) == ""
}

func hasContent(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			return true
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(c.Data) != "" {
				return true
			}
		}
	}
	return false
}

// element emits n as plain markup, or as a variation point for container tags.
func (w *walker) element(n *xmlquery.Node) {
	w.b.OpenMarkup(n.Data, attrs(n))
	switch {
	case variantContainers[n.Data]:
		w.b.BeginVariation()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode {
				w.branch(c)
			}
		}
		w.b.EndVariation()
	case !hasContent(n):
		w.b.AddToken("")
	default:
		w.children(n)
	}
	w.b.CloseMarkup()
}

// branch emits n as one branch of the innermost variation.
func (w *walker) branch(n *xmlquery.Node) {
	w.b.BeginBranch()
	w.b.OpenMarkup(n.Data, attrs(n))
	w.children(n)
	w.b.CloseMarkup()
	w.b.EndBranch()
}

// children emits the child nodes of n, grouping runs of adjacent
// <del>/<add> siblings into variation points.
func (w *walker) children(n *xmlquery.Node) {
	for c := n.FirstChild; c != nil; {
		if !isDelAdd(c) {
			w.node(c)
			c = c.NextSibling
			continue
		}

		run := []*xmlquery.Node{c}
		next := c.NextSibling
		for s := next; s != nil; s = s.NextSibling {
			if isBlank(s) {
				continue
			}
			if !isDelAdd(s) {
				break
			}
			run = append(run, s)
			next = s.NextSibling
		}

		w.b.BeginVariation()
		for _, r := range run {
			w.branch(r)
		}
		if len(run) == 1 {
			w.b.BeginBranch()
			w.b.EndBranch()
		}
		w.b.EndVariation()
		c = next
	}
}

func (w *walker) node(n *xmlquery.Node) {
	switch n.Type {
	case xmlquery.ElementNode:
		w.element(n)
	case xmlquery.TextNode, xmlquery.CharDataNode:
		for _, tok := range Tokenize(n.Data) {
			w.b.AddToken(tok)
		}
	}
}
