package textnorm

import (
	"strings"

	"golang.org/x/net/html"
)

// lineBreakTags end a line of flattened text.
var lineBreakTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HasMarkup reports whether text looks like it carries HTML tags.
func HasMarkup(text string) bool {
	i := strings.IndexByte(text, '<')
	return i >= 0 && strings.IndexByte(text[i:], '>') > 0
}

// StripMarkup flattens an HTML fragment to plain text. Block-level and <br>
// tags become line breaks so line-terminated sections (keyword blocks)
// survive. Script and style content is dropped. Text without markup is
// returned unchanged.
func StripMarkup(text string) string {
	if !HasMarkup(text) {
		return text
	}
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	inScript := false
	inStyle := false

	for {
		tokenType := tokenizer.Next()

		switch tokenType {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was recovered.
			return cleanLines(b.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "script":
				inScript = tokenType == html.StartTagToken
			case "style":
				inStyle = tokenType == html.StartTagToken
			default:
				if lineBreakTags[token.Data] {
					b.WriteByte('\n')
				}
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "script":
				inScript = false
			case "style":
				inStyle = false
			default:
				if lineBreakTags[token.Data] {
					b.WriteByte('\n')
				}
			}

		case html.TextToken:
			if !inScript && !inStyle {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// cleanLines collapses runs of spaces inside each line and drops blank lines.
func cleanLines(input string) string {
	lines := strings.Split(input, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
