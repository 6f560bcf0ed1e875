package sentiment

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// maxInputRunes bounds classifier input length. Longer texts are truncated so
// the transformer never sees more tokens than its context window allows.
const maxInputRunes = 512

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern      = regexp.MustCompile(`@\w+`)
)

// RemoveLinks strips markdown links down to their text and deletes bare URLs.
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// RemoveMentions deletes @handle references, which carry no sentiment signal.
func RemoveMentions(input string) string {
	return mentionPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and flattens the result to a single
// line of plain text.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(stripTags(string(output))), " ")

	return RemoveLinks(plainText)
}

// CleanText normalizes a tweet before classification: markdown is flattened,
// URLs and mentions are removed, whitespace is collapsed and the result is
// truncated to maxInputRunes.
func CleanText(input string) string {
	text := ConvertMarkdownToText(input)
	text = RemoveMentions(text)
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}
	return strings.TrimSpace(text)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(input string) string {
	return tagPattern.ReplaceAllString(input, " ")
}
