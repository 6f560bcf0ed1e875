package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const defaultTopWords = 20

// stopwords are excluded from word frequency results. The set leans on
// tweet conventions, so "rt" and bare scheme fragments are filtered too.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "a": {}, "an": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "rt": {}, "https": {}, "http": {},
	"this": {}, "that": {}, "from": {}, "they": {},
	"their": {}, "about": {}, "there": {}, "these": {}, "those": {},
	"just": {}, "very": {}, "more": {}, "most": {}, "some": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "into": {},
	"over": {}, "than": {}, "then": {}, "them": {}, "also": {},
}

// WordCount pairs a word with its frequency over matching tweet content.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TopWords computes the most frequent words across tweets matching the
// filter. Words are lowercased; stop words, words of three or fewer
// characters and anything containing a non-letter are skipped. Terms of the
// filter keyword itself are excluded so results show surrounding language
// rather than the search term.
func (s *Store) TopWords(ctx context.Context, f Filter, limit int) ([]WordCount, error) {
	if limit <= 0 {
		limit = defaultTopWords
	}

	where, args := f.where()
	rows, err := s.db.QueryContext(ctx, "SELECT content FROM tweets"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tweet content: %w", err)
	}
	defer rows.Close()

	excluded := make(map[string]struct{})
	for _, term := range strings.Fields(strings.ToLower(f.Keyword)) {
		excluded[term] = struct{}{}
	}

	freq := make(map[string]int)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		for _, word := range strings.Fields(strings.ToLower(content)) {
			if !countableWord(word) {
				continue
			}
			if _, skip := excluded[word]; skip {
				continue
			}
			freq[word]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make([]WordCount, 0, len(freq))
	for word, count := range freq {
		counts = append(counts, WordCount{Word: word, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

func countableWord(word string) bool {
	if _, stop := stopwords[word]; stop {
		return false
	}
	runes := []rune(word)
	if len(runes) <= 3 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
