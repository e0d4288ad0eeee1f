package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codeforequity-at/botium-connector-nuance/core/protocol"
)

type printer struct {
	out  io.Writer
	json bool

	bot    lipgloss.Style
	button lipgloss.Style
	nlp    lipgloss.Style
}

func newPrinter(out io.Writer, jsonOutput bool) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:    out,
		json:   jsonOutput,
		bot:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		button: r.NewStyle().Foreground(lipgloss.Color("42")),
		nlp:    r.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

func (p *printer) print(messages []protocol.Message) error {
	for _, msg := range messages {
		if err := p.printOne(msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) printOne(msg protocol.Message) error {
	if p.json {
		return json.NewEncoder(p.out).Encode(msg)
	}

	var b strings.Builder
	b.WriteString(p.bot.Render("bot>") + " " + msg.MessageText + "\n")
	for _, btn := range msg.Buttons {
		b.WriteString("  " + p.button.Render(fmt.Sprintf("[%s]", btn.Text)))
		if btn.Payload != btn.Text {
			b.WriteString(" " + btn.Payload)
		}
		b.WriteString("\n")
	}
	if nlp := msg.NLP; nlp != nil {
		line := fmt.Sprintf("intent: %s (%.2f)", nlp.Intent.Name, nlp.Intent.Confidence)
		if nlp.Intent.Incomprehension {
			line += " incomprehension"
		}
		b.WriteString("  " + p.nlp.Render(line) + "\n")
		for _, e := range nlp.Entities {
			b.WriteString("  " + p.nlp.Render(fmt.Sprintf("entity: %s = %s (%.2f)", e.Name, e.Value, e.Confidence)) + "\n")
		}
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}
