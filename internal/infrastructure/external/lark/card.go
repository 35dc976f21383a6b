package lark

import (
	"encoding/json"
	"fmt"

	"github.com/garyjia/purchase-bot/internal/application/port"
)

// card header templates
var headerTemplates = map[port.Color]string{
	port.ColorGood:   "green",
	port.ColorDanger: "red",
}

type cardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type cardElement struct {
	Tag  string   `json:"tag"`
	Text cardText `json:"text"`
}

type cardHeader struct {
	Template string   `json:"template"`
	Title    cardText `json:"title"`
}

type card struct {
	Config struct {
		WideScreenMode bool `json:"wide_screen_mode"`
	} `json:"config"`
	Header   cardHeader    `json:"header"`
	Elements []cardElement `json:"elements"`
}

// cardContent renders text under a header coloured after the attachment
func cardContent(text string, attachment *port.Attachment) (string, error) {
	template, ok := headerTemplates[attachment.Color]
	if !ok {
		template = "grey"
	}

	c := card{
		Header: cardHeader{
			Template: template,
			Title:    cardText{Tag: "plain_text", Content: attachment.Text},
		},
		Elements: []cardElement{
			{Tag: "div", Text: cardText{Tag: "plain_text", Content: text}},
		},
	}
	c.Config.WideScreenMode = true

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card content: %w", err)
	}
	return string(data), nil
}
