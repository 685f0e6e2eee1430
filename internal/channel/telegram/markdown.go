package telegram

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-telegram/bot/models"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// toEntities converts markdown content into plain text plus Telegram
// message entities. Entity offsets are UTF-16 code units per the Bot API.
func toEntities(md string) (string, []models.MessageEntity) {
	if md == "" {
		return "", nil
	}

	exts := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock |
		parser.Strikethrough | parser.FencedCode | parser.Autolink | parser.Tables
	doc := parser.NewWithExtensions(exts).Parse([]byte(md))

	b := &entityBuilder{}
	b.walk(doc)
	b.sortEntities()

	return b.text.String(), b.entities
}

// entityBuilder accumulates rendered text and the entities spanning it.
type entityBuilder struct {
	text     strings.Builder
	offset16 int
	entities []models.MessageEntity
}

func (b *entityBuilder) write(v string) {
	if v == "" {
		return
	}
	b.text.WriteString(v)
	b.offset16 += len(utf16.Encode([]rune(v)))
}

func (b *entityBuilder) newline() {
	b.write("\n")
}

func (b *entityBuilder) mark(typ models.MessageEntityType, start int, url, language string) {
	length := b.offset16 - start
	if length <= 0 {
		return
	}
	e := models.MessageEntity{
		Type:   typ,
		Offset: start,
		Length: length,
	}
	if url != "" {
		e.URL = url
	}
	if language != "" {
		e.Language = language
	}
	b.entities = append(b.entities, e)
}

func (b *entityBuilder) sortEntities() {
	if len(b.entities) <= 1 {
		return
	}
	sort.SliceStable(b.entities, func(i, j int) bool {
		if b.entities[i].Offset != b.entities[j].Offset {
			return b.entities[i].Offset < b.entities[j].Offset
		}
		return b.entities[i].Length > b.entities[j].Length
	})
}

func (b *entityBuilder) walkChildren(node ast.Node) {
	for _, child := range node.GetChildren() {
		b.walk(child)
	}
}

func (b *entityBuilder) walk(node ast.Node) {
	switch n := node.(type) {
	case *ast.Document:
		b.walkChildren(node)
	case *ast.Paragraph:
		b.walkChildren(node)
		if ast.GetNextNode(node) != nil {
			if _, ok := node.GetParent().(*ast.ListItem); ok {
				b.newline()
			} else {
				b.write("\n\n")
			}
		}
	case *ast.Heading:
		start := b.offset16
		b.walkChildren(node)
		b.mark(models.MessageEntityTypeBold, start, "", "")
		if ast.GetNextNode(node) != nil {
			b.write("\n\n")
		}
	case *ast.BlockQuote:
		start := b.offset16
		b.walkChildren(node)
		b.mark(models.MessageEntityTypeBlockquote, start, "", "")
		if ast.GetNextNode(node) != nil {
			b.write("\n\n")
		}
	case *ast.List:
		b.walkList(n)
		if ast.GetNextNode(node) != nil {
			b.write("\n\n")
		}
	case *ast.ListItem:
		b.walkListItem(n)
	case *ast.Strong:
		start := b.offset16
		b.walkChildren(node)
		b.mark(models.MessageEntityTypeBold, start, "", "")
	case *ast.Emph:
		start := b.offset16
		b.walkChildren(node)
		b.mark(models.MessageEntityTypeItalic, start, "", "")
	case *ast.Del:
		start := b.offset16
		b.walkChildren(node)
		b.mark(models.MessageEntityTypeStrikethrough, start, "", "")
	case *ast.Code:
		start := b.offset16
		b.write(string(n.Literal))
		b.mark(models.MessageEntityTypeCode, start, "", "")
	case *ast.CodeBlock:
		start := b.offset16
		b.write(strings.TrimRight(string(n.Literal), "\n"))
		b.mark(models.MessageEntityTypePre, start, "", codeLang(string(n.Info)))
		if ast.GetNextNode(node) != nil {
			b.write("\n\n")
		}
	case *ast.Link:
		start := b.offset16
		b.walkChildren(node)
		if b.offset16 > start {
			b.mark(models.MessageEntityTypeTextLink, start, string(n.Destination), "")
		} else {
			b.write(string(n.Destination))
		}
	case *ast.Text:
		b.write(string(n.Literal))
	case *ast.Softbreak, *ast.Hardbreak:
		b.newline()
	case *ast.HorizontalRule:
		b.write(strings.Repeat("-", 10))
		if ast.GetNextNode(node) != nil {
			b.write("\n\n")
		}
	case *ast.HTMLBlock:
		b.write(string(n.Literal))
		if ast.GetNextNode(node) != nil {
			b.write("\n\n")
		}
	case *ast.HTMLSpan:
		b.write(string(n.Literal))
	default:
		if len(node.GetChildren()) > 0 {
			b.walkChildren(node)
			return
		}
		if leaf := node.AsLeaf(); leaf != nil && len(leaf.Literal) > 0 {
			b.write(string(leaf.Literal))
		}
	}
}

func (b *entityBuilder) walkList(list *ast.List) {
	ordered := list.ListFlags&ast.ListTypeOrdered != 0
	index := list.Start
	if index <= 0 {
		index = 1
	}

	items := list.GetChildren()
	for i, one := range items {
		item, ok := one.(*ast.ListItem)
		if !ok {
			continue
		}

		if ordered {
			b.write(strconv.Itoa(index))
			b.write(". ")
			index++
		} else {
			b.write("- ")
		}

		b.walkListItem(item)
		if i < len(items)-1 {
			b.newline()
		}
	}
}

func (b *entityBuilder) walkListItem(item *ast.ListItem) {
	children := item.GetChildren()
	for i, child := range children {
		if paragraph, ok := child.(*ast.Paragraph); ok {
			b.walkChildren(paragraph)
		} else {
			b.walk(child)
		}

		if i < len(children)-1 {
			b.newline()
		}
	}
}

func codeLang(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
