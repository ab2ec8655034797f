package ghost

import (
	"encoding/json"
	"fmt"
)

// mobiledocVersion is the envelope version emitted for markdown content.
const mobiledocVersion = "0.3.1"

// markdownCardName is the card type carrying raw markdown.
const markdownCardName = "card-markdown"

type mobiledoc struct {
	Version  string          `json:"version"`
	Markups  []interface{}   `json:"markups"`
	Atoms    []interface{}   `json:"atoms"`
	Cards    [][]interface{} `json:"cards"`
	Sections [][]int         `json:"sections"`
}

// MobiledocFromMarkdown wraps raw markdown into a mobiledoc envelope with a
// single markdown card, the representation modern servers require on post
// create and update. The transform is pure and deterministic.
func MobiledocFromMarkdown(markdown string) string {
	doc := mobiledoc{
		Version: mobiledocVersion,
		Markups: []interface{}{},
		Atoms:   []interface{}{},
		Cards: [][]interface{}{
			{markdownCardName, map[string]interface{}{
				"cardName": markdownCardName,
				"markdown": markdown,
			}},
		},
		Sections: [][]int{{10, 0}},
	}

	// The envelope only contains marshalable primitives.
	data, _ := json.Marshal(doc)

	return string(data)
}

// MarkdownFromMobiledoc extracts the markdown text from the first card of a
// mobiledoc payload, the inverse of MobiledocFromMarkdown for single-card
// documents.
func MarkdownFromMobiledoc(doc string) (string, error) {
	var parsed struct {
		Cards [][]json.RawMessage `json:"cards"`
	}

	err := json.Unmarshal([]byte(doc), &parsed)
	if err != nil {
		return "", fmt.Errorf("parsing mobiledoc: %w", err)
	}

	if len(parsed.Cards) == 0 || len(parsed.Cards[0]) < 2 {
		return "", fmt.Errorf("%w: mobiledoc has no cards", ErrInvalidArgument)
	}

	var payload struct {
		Markdown string `json:"markdown"`
	}

	err = json.Unmarshal(parsed.Cards[0][1], &payload)
	if err != nil {
		return "", fmt.Errorf("parsing mobiledoc card: %w", err)
	}

	return payload.Markdown, nil
}
