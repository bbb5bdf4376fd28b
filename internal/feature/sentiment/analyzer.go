package sentiment

import (
	"bufio"
	_ "embed"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"

	"secondchance/internal/domain"
)

const (
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelPositive = "positive"

	// 大于该值判为 positive，[0, positiveThreshold] 为 neutral
	positiveThreshold = 0.33
)

//go:embed afinn.txt
var afinnRaw string

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nor": {}, "none": {},
	"nobody": {}, "nothing": {}, "nowhere": {}, "cannot": {}, "can't": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "isn't": {}, "aren't": {},
	"wasn't": {}, "weren't": {}, "won't": {}, "wouldn't": {}, "shouldn't": {},
	"couldn't": {}, "hasn't": {}, "haven't": {}, "hadn't": {},
}

type Result struct {
	Score float64 `json:"sentimentScore"`
	Label string  `json:"sentiment"`
}

// Analyzer 基于 AFINN 词表打分，词表未命中时回退到 snowball 词干
type Analyzer struct {
	words   map[string]int
	stemmed map[string]int
}

func NewAnalyzer() *Analyzer {
	a, err := NewAnalyzerFrom(afinnRaw)
	if err != nil {
		panic("sentiment: embedded lexicon: " + err.Error())
	}
	return a
}

// NewAnalyzerFrom 解析 "word<TAB>score" 行格式的词表，# 开头为注释
func NewAnalyzerFrom(lexicon string) (*Analyzer, error) {
	a := &Analyzer{words: map[string]int{}, stemmed: map[string]int{}}
	sc := bufio.NewScanner(strings.NewReader(lexicon))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.LastIndexAny(line, " \t")
		if i < 0 {
			return nil, &lexiconError{line: line}
		}
		word := strings.ToLower(strings.TrimSpace(line[:i]))
		score, err := strconv.Atoi(line[i+1:])
		if err != nil {
			return nil, &lexiconError{line: line}
		}
		a.words[word] = score
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// 多个词共享词干时：词干本身在词表里则取其分值，否则取字典序第一个
	keys := make([]string, 0, len(a.words))
	for w := range a.words {
		keys = append(keys, w)
	}
	sort.Strings(keys)
	for _, w := range keys {
		stem := english.Stem(w, false)
		if s, ok := a.words[stem]; ok {
			a.stemmed[stem] = s
			continue
		}
		if _, ok := a.stemmed[stem]; !ok {
			a.stemmed[stem] = a.words[w]
		}
	}
	return a, nil
}

type lexiconError struct{ line string }

func (e *lexiconError) Error() string { return "malformed lexicon line: " + e.line }

// Score 返回归一化得分（命中分值之和 / 词数）及标签。
// 否定词之后的命中全部取反。
func (a *Analyzer) Score(sentence string) (Result, error) {
	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return Result{}, domain.ErrMissingInput
	}

	sum, sign := 0, 1
	for _, f := range fields {
		tok := normalize(f)
		if tok == "" {
			continue
		}
		if _, ok := negations[tok]; ok {
			sign = -1
			continue
		}
		if s, ok := a.lookup(tok); ok {
			sum += sign * s
		}
	}

	score := float64(sum) / float64(len(fields))
	return Result{Score: score, Label: Classify(score)}, nil
}

func (a *Analyzer) lookup(tok string) (int, bool) {
	if s, ok := a.words[tok]; ok {
		return s, true
	}
	s, ok := a.stemmed[english.Stem(tok, false)]
	return s, ok
}

func Classify(score float64) string {
	switch {
	case score < 0:
		return LabelNegative
	case score <= positiveThreshold:
		return LabelNeutral
	default:
		return LabelPositive
	}
}

func normalize(tok string) string {
	tok = strings.ToLower(tok)
	tok = strings.ReplaceAll(tok, "’", "'")
	tok = strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	return strings.Trim(tok, "'")
}
