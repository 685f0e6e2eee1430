package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func findEntity(entities []models.MessageEntity, typ models.MessageEntityType) *models.MessageEntity {
	for i := range entities {
		if entities[i].Type == typ {
			return &entities[i]
		}
	}
	return nil
}

func TestToEntities_Plain(t *testing.T) {
	text, entities := toEntities("just words")
	if text != "just words" {
		t.Errorf("text: got %q", text)
	}
	if len(entities) != 0 {
		t.Errorf("entities: got %v, want none", entities)
	}
}

func TestToEntities_Empty(t *testing.T) {
	text, entities := toEntities("")
	if text != "" || entities != nil {
		t.Errorf("got %q / %v", text, entities)
	}
}

func TestToEntities_Bold(t *testing.T) {
	text, entities := toEntities("hello **world**")
	if text != "hello world" {
		t.Fatalf("text: got %q", text)
	}
	e := findEntity(entities, models.MessageEntityTypeBold)
	if e == nil {
		t.Fatalf("no bold entity: %v", entities)
	}
	if e.Offset != 6 || e.Length != 5 {
		t.Errorf("bold span: got offset=%d length=%d, want 6/5", e.Offset, e.Length)
	}
}

func TestToEntities_InlineCode(t *testing.T) {
	text, entities := toEntities("run `go vet` now")
	if text != "run go vet now" {
		t.Fatalf("text: got %q", text)
	}
	e := findEntity(entities, models.MessageEntityTypeCode)
	if e == nil {
		t.Fatalf("no code entity: %v", entities)
	}
	if e.Offset != 4 || e.Length != 6 {
		t.Errorf("code span: got offset=%d length=%d, want 4/6", e.Offset, e.Length)
	}
}

func TestToEntities_Link(t *testing.T) {
	text, entities := toEntities("see [docs](https://example.com)")
	if text != "see docs" {
		t.Fatalf("text: got %q", text)
	}
	e := findEntity(entities, models.MessageEntityTypeTextLink)
	if e == nil {
		t.Fatalf("no text_link entity: %v", entities)
	}
	if e.Offset != 4 || e.Length != 4 || e.URL != "https://example.com" {
		t.Errorf("link: got offset=%d length=%d url=%q", e.Offset, e.Length, e.URL)
	}
}

func TestToEntities_CodeBlock(t *testing.T) {
	text, entities := toEntities("```go\na := 1\n```")
	if text != "a := 1" {
		t.Fatalf("text: got %q", text)
	}
	e := findEntity(entities, models.MessageEntityTypePre)
	if e == nil {
		t.Fatalf("no pre entity: %v", entities)
	}
	if e.Language != "go" {
		t.Errorf("language: got %q, want %q", e.Language, "go")
	}
	if e.Offset != 0 || e.Length != 6 {
		t.Errorf("pre span: got offset=%d length=%d, want 0/6", e.Offset, e.Length)
	}
}

func TestToEntities_HeadingIsBold(t *testing.T) {
	text, entities := toEntities("# Title")
	if text != "Title" {
		t.Fatalf("text: got %q", text)
	}
	e := findEntity(entities, models.MessageEntityTypeBold)
	if e == nil || e.Offset != 0 || e.Length != 5 {
		t.Errorf("heading should render as bold over the full text: %v", entities)
	}
}

func TestToEntities_Strikethrough(t *testing.T) {
	text, entities := toEntities("~~gone~~")
	if text != "gone" {
		t.Fatalf("text: got %q", text)
	}
	if findEntity(entities, models.MessageEntityTypeStrikethrough) == nil {
		t.Errorf("no strikethrough entity: %v", entities)
	}
}

// Offsets count UTF-16 code units, so an astral-plane rune shifts
// following entities by two.
func TestToEntities_UTF16Offsets(t *testing.T) {
	text, entities := toEntities("😀 **bold**")
	if text != "😀 bold" {
		t.Fatalf("text: got %q", text)
	}
	e := findEntity(entities, models.MessageEntityTypeBold)
	if e == nil {
		t.Fatalf("no bold entity: %v", entities)
	}
	if e.Offset != 3 || e.Length != 4 {
		t.Errorf("bold span: got offset=%d length=%d, want 3/4", e.Offset, e.Length)
	}
}

func TestToEntities_List(t *testing.T) {
	text, _ := toEntities("- first\n- second")
	if text != "- first\n- second" {
		t.Errorf("text: got %q", text)
	}
}

func TestToEntities_Paragraphs(t *testing.T) {
	text, _ := toEntities("one\n\ntwo")
	if text != "one\n\ntwo" {
		t.Errorf("text: got %q", text)
	}
}
