package graph

import (
	"strings"
	"unicode"
)

const minTokenLen = 3

// stopwords is a fixed bilingual (Russian + English) set of common
// function words excluded from the graph.
var stopwords = map[string]struct{}{}

func init() {
	words := []string{
		"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все", "она",
		"так", "его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по", "только", "ее",
		"мне", "было", "вот", "от", "меня", "еще", "нет", "о", "из", "ему", "теперь", "когда",
		"даже", "ну", "вдруг", "ли", "если", "уже", "или", "ни", "быть", "был", "него", "до",
		"вас", "нибудь", "опять", "уж", "вам", "ведь", "там", "потом", "себя", "ничего", "ей",
		"может", "они", "тут", "где", "есть", "надо", "ней", "для", "мы", "тебя", "их", "чем",
		"была", "сам", "чтоб", "без", "будто", "чего", "раз", "тоже", "себе", "под", "будет",
		"ж", "тогда", "кто", "этот", "того", "потому", "этого", "какой", "совсем", "ним", "здесь",
		"этом", "один", "почти", "мой", "тем", "чтобы", "нее", "сейчас", "были", "куда", "зачем",
		"сказать", "всех", "никогда", "сегодня", "можно", "при", "наконец", "два", "об", "другой",
		"хоть", "после", "над", "больше", "тот", "через", "эти", "нас", "про", "всего", "них", "какая",
		"много", "разве", "три", "эту", "моя", "впрочем", "хорошо", "свою", "этой", "перед", "иногда",
		"лучше", "чуть", "том", "нельзя", "такой", "им", "более", "всегда", "конечно", "всю", "между",
		"and", "the", "to", "of", "in", "is", "it", "for", "on", "with", "as", "that", "this",
		"are", "be", "or", "an", "by", "from", "at", "was", "were", "but", "not", "we", "you", "your",
		"i", "me", "my", "they", "them", "their", "our", "us", "so", "if", "then", "than", "about",
	}
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

// Tokenize normalizes text into the ordered sequence of graph tokens:
// lowercased, split on single spaces (newlines count as spaces), stripped
// to letters/digits/'-'/'_', minimum three runes, stop-words removed.
// Duplicates are preserved; deduplication happens per text in Build.
func Tokenize(text string) []string {
	out := []string{}
	lowered := strings.ReplaceAll(strings.ToLower(text), "\n", " ")
	for _, raw := range strings.Split(lowered, " ") {
		var b strings.Builder
		runes := 0
		for _, r := range raw {
			if isTokenRune(r) {
				b.WriteRune(r)
				runes++
			}
		}
		if runes < minTokenLen {
			continue
		}
		t := b.String()
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}
