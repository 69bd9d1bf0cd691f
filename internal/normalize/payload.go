package normalize

import (
	"bytes"
	"encoding/json"
)

type ContentKind int

const (
	ContentAbsent ContentKind = iota
	ContentText
	ContentBlocks
	ContentTagged
	ContentOpaque
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentBlocks:
		return "blocks"
	case ContentTagged:
		return "tagged"
	case ContentOpaque:
		return "opaque"
	default:
		return "absent"
	}
}

type BlockKind int

const (
	BlockString BlockKind = iota
	BlockText
	BlockOther
)

// Block is one item of a list-shaped content value.
type Block struct {
	Kind BlockKind
	Text string
	Raw  json.RawMessage
}

func StringBlock(s string) Block {
	return Block{Kind: BlockString, Text: s}
}

func TextBlock(text string) Block {
	return Block{Kind: BlockText, Text: text}
}

func OtherBlock(raw json.RawMessage) Block {
	return Block{Kind: BlockOther, Raw: raw}
}

func (b Block) String() string {
	if b.Kind == BlockOther {
		return compact(b.Raw)
	}
	return b.Text
}

// Content is the answer-bearing value of a provider payload. Only the field
// matching Kind is meaningful; Raw always holds the original JSON when the
// content was parsed from the wire.
type Content struct {
	Kind   ContentKind
	Text   string
	Blocks []Block
	Tagged Block
	Raw    json.RawMessage
}

// Payload is a provider response reduced to the two places an answer can live:
// a flat top-level text field, or the first content-bearing element.
type Payload struct {
	Flat    string
	HasFlat bool
	Content Content
}

func FromText(s string) Payload {
	raw, _ := json.Marshal(s)
	return Payload{Content: Content{Kind: ContentText, Text: s, Raw: raw}}
}

func FromBlocks(blocks []Block) Payload {
	return Payload{Content: Content{Kind: ContentBlocks, Blocks: blocks}}
}

// flatFields are checked in order; only non-empty strings count.
var flatFields = []string{"output_text", "text", "response"}

var textTags = map[string]bool{
	"output_text": true,
	"text":        true,
}

// Parse classifies a raw provider body. It never fails: bodies that are not
// JSON become plain text content.
func Parse(raw []byte) Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{}
	}
	if !json.Valid(raw) {
		return Payload{Content: Content{Kind: ContentText, Text: string(raw)}}
	}
	if raw[0] != '{' {
		return Payload{Content: classify(raw)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{Content: Content{Kind: ContentOpaque, Raw: raw}}
	}

	var p Payload
	for _, name := range flatFields {
		if s, ok := asString(fields[name]); ok && s != "" {
			p.Flat = s
			p.HasFlat = true
			break
		}
	}

	if content, ok := locateContent(fields); ok {
		p.Content = classify(content)
	}
	return p
}

// locateContent finds the first content-bearing element across the response
// shapes seen in the wild: Responses API output items, chat completion
// choices, and messages-style top-level content.
func locateContent(fields map[string]json.RawMessage) (json.RawMessage, bool) {
	var output []map[string]json.RawMessage
	if err := json.Unmarshal(fields["output"], &output); err == nil {
		for _, item := range output {
			if present(item["content"]) {
				return item["content"], true
			}
		}
	}

	var choices []struct {
		Message map[string]json.RawMessage `json:"message"`
		Text    json.RawMessage            `json:"text"`
	}
	if err := json.Unmarshal(fields["choices"], &choices); err == nil {
		for _, choice := range choices {
			if present(choice.Message["content"]) {
				return choice.Message["content"], true
			}
			if present(choice.Text) {
				return choice.Text, true
			}
		}
	}

	if present(fields["content"]) {
		return fields["content"], true
	}
	return nil, false
}

func classify(raw json.RawMessage) Content {
	switch raw[0] {
	case '"':
		s, _ := asString(raw)
		return Content{Kind: ContentText, Text: s, Raw: raw}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Content{Kind: ContentOpaque, Raw: raw}
		}
		blocks := make([]Block, 0, len(items))
		for _, item := range items {
			blocks = append(blocks, classifyBlock(item))
		}
		return Content{Kind: ContentBlocks, Blocks: blocks, Raw: raw}
	case '{':
		if block := classifyBlock(raw); block.Kind == BlockText {
			return Content{Kind: ContentTagged, Tagged: block, Raw: raw}
		}
	}
	return Content{Kind: ContentOpaque, Raw: raw}
}

func classifyBlock(raw json.RawMessage) Block {
	if s, ok := asString(raw); ok {
		return StringBlock(s)
	}
	var tagged struct {
		Type string          `json:"type"`
		Text json.RawMessage `json:"text"`
	}
	if err := json.Unmarshal(raw, &tagged); err == nil && textTags[tagged.Type] {
		if text, ok := asString(tagged.Text); ok {
			return TextBlock(text)
		}
	}
	return OtherBlock(raw)
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func compact(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
