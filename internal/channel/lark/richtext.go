package lark

import (
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// postElement is a single inline element in a Lark post paragraph.
type postElement = map[string]interface{}

// markdownToPost converts markdown into Lark post content paragraphs,
// suitable for the "content" field under "zh_cn".
func markdownToPost(md string) [][]postElement {
	if md == "" {
		return nil
	}

	exts := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock |
		parser.Strikethrough | parser.FencedCode | parser.Autolink | parser.Tables
	doc := parser.NewWithExtensions(exts).Parse([]byte(md))

	b := &postBuilder{}
	b.walk(doc)
	b.flush()
	return b.paragraphs
}

// postBuilder accumulates post paragraphs while walking the markdown AST.
// Styles nest through a stack so bold inside a heading stays deduplicated.
type postBuilder struct {
	paragraphs [][]postElement
	current    []postElement
	styles     []string
}

func (b *postBuilder) flush() {
	if len(b.current) > 0 {
		b.paragraphs = append(b.paragraphs, b.current)
		b.current = nil
	}
}

func (b *postBuilder) text(v string) {
	if v == "" {
		return
	}
	el := postElement{"tag": "text", "text": v}
	if styles := b.activeStyles(); len(styles) > 0 {
		el["style"] = styles
	}
	b.current = append(b.current, el)
}

func (b *postBuilder) link(text, href string) {
	b.current = append(b.current, postElement{"tag": "a", "text": text, "href": href})
}

func (b *postBuilder) activeStyles() []string {
	if len(b.styles) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(b.styles))
	var out []string
	for _, s := range b.styles {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (b *postBuilder) styled(style string, fn func()) {
	b.styles = append(b.styles, style)
	fn()
	b.styles = b.styles[:len(b.styles)-1]
}

func (b *postBuilder) walkChildren(node ast.Node) {
	for _, child := range node.GetChildren() {
		b.walk(child)
	}
}

func (b *postBuilder) walk(node ast.Node) {
	switch n := node.(type) {
	case *ast.Document:
		b.walkChildren(node)
	case *ast.Paragraph:
		b.walkChildren(node)
		b.flush()
	case *ast.Heading:
		b.styled("bold", func() { b.walkChildren(node) })
		b.flush()
	case *ast.BlockQuote:
		b.styled("italic", func() { b.walkChildren(node) })
	case *ast.Strong:
		b.styled("bold", func() { b.walkChildren(node) })
	case *ast.Emph:
		b.styled("italic", func() { b.walkChildren(node) })
	case *ast.Del:
		b.styled("lineThrough", func() { b.walkChildren(node) })
	case *ast.Code:
		// Lark post has no inline code style; underline stands in.
		b.styled("underline", func() { b.text(string(n.Literal)) })
	case *ast.CodeBlock:
		b.flush()
		el := postElement{"tag": "code_block", "text": strings.TrimRight(string(n.Literal), "\n")}
		if lang := codeLang(string(n.Info)); lang != "" {
			el["language"] = lang
		}
		b.paragraphs = append(b.paragraphs, []postElement{el})
	case *ast.Link:
		text := plainText(node)
		if text == "" {
			text = string(n.Destination)
		}
		b.link(text, string(n.Destination))
	case *ast.Text:
		b.text(string(n.Literal))
	case *ast.Softbreak, *ast.Hardbreak:
		b.text("\n")
	case *ast.HorizontalRule:
		b.flush()
		b.paragraphs = append(b.paragraphs, []postElement{{"tag": "hr"}})
	case *ast.List:
		b.walkList(n)
	case *ast.Table:
		b.walkTable(n)
	case *ast.HTMLBlock:
		b.text(strings.TrimRight(string(n.Literal), "\n"))
		b.flush()
	case *ast.HTMLSpan:
		b.text(string(n.Literal))
	default:
		if len(node.GetChildren()) > 0 {
			b.walkChildren(node)
			return
		}
		if leaf := node.AsLeaf(); leaf != nil && len(leaf.Literal) > 0 {
			b.text(string(leaf.Literal))
		}
	}
}

func (b *postBuilder) walkList(list *ast.List) {
	ordered := list.ListFlags&ast.ListTypeOrdered != 0
	index := list.Start
	if index <= 0 {
		index = 1
	}

	for _, child := range list.GetChildren() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}

		if ordered {
			b.text(strconv.Itoa(index) + ". ")
			index++
		} else {
			b.text("• ")
		}

		for _, ic := range item.GetChildren() {
			if p, ok := ic.(*ast.Paragraph); ok {
				b.walkChildren(p)
			} else {
				b.walk(ic)
			}
		}
		b.flush()
	}
}

// walkTable flattens rows into pipe-separated paragraphs; Lark posts have
// no table element.
func (b *postBuilder) walkTable(table *ast.Table) {
	for _, child := range table.GetChildren() {
		switch child.(type) {
		case *ast.TableHeader, *ast.TableBody:
			for _, row := range child.GetChildren() {
				tr, ok := row.(*ast.TableRow)
				if !ok {
					continue
				}
				for i, cell := range tr.GetChildren() {
					if i > 0 {
						b.text(" | ")
					}
					b.walkChildren(cell)
				}
				b.flush()
			}
		}
	}
}

// plainText collects the literal text under a node, dropping formatting.
func plainText(node ast.Node) string {
	var sb strings.Builder
	var rec func(ast.Node)
	rec = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Literal)
		}
		for _, child := range n.GetChildren() {
			rec(child)
		}
	}
	rec(node)
	return sb.String()
}

func codeLang(info string) string {
	if f := strings.Fields(info); len(f) > 0 {
		return f[0]
	}
	return ""
}
