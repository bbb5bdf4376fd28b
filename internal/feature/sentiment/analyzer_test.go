package sentiment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondchance/internal/domain"
)

func TestScore_Labels(t *testing.T) {
	a := NewAnalyzer()

	cases := []struct {
		sentence string
		label    string
	}{
		{"I love this", LabelPositive},
		{"Absolutely fantastic seller!", LabelPositive},
		{"This is terrible and broken", LabelNegative},
		{"this is a table", LabelNeutral},
		{"not good", LabelNegative},
		{"I don't hate it", LabelPositive},
		{"I recommend this seller", LabelPositive},
		{"Item arrived damaged, very disappointed", LabelNegative},
	}
	for _, tc := range cases {
		t.Run(tc.sentence, func(t *testing.T) {
			got, err := a.Score(tc.sentence)
			require.NoError(t, err)
			assert.Equal(t, tc.label, got.Label, "score=%v", got.Score)
		})
	}
}

func TestScore_Value(t *testing.T) {
	a := NewAnalyzer()

	got, err := a.Score("I love this")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.Score, 1e-9)

	// 未命中原词时回退到词干
	got, err = a.Score("loves it")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got.Score, 1e-9)

	got, err = a.Score("Good, GOOD... good!")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got.Score, 1e-9)
}

func TestScore_BlankInput(t *testing.T) {
	a := NewAnalyzer()
	for _, s := range []string{"", "   ", "\n\t"} {
		_, err := a.Score(s)
		assert.True(t, errors.Is(err, domain.ErrMissingInput), "%q", s)
	}
}

func TestClassify_Thresholds(t *testing.T) {
	assert.Equal(t, LabelNegative, Classify(-0.01))
	assert.Equal(t, LabelNeutral, Classify(0))
	assert.Equal(t, LabelNeutral, Classify(0.33))
	assert.Equal(t, LabelPositive, Classify(0.331))
}

func TestNewAnalyzerFrom(t *testing.T) {
	a, err := NewAnalyzerFrom("# comment\nsplendid\t4\n\nmeh -1\n")
	require.NoError(t, err)

	got, err := a.Score("splendid meh")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got.Score, 1e-9)

	_, err = NewAnalyzerFrom("broken-line")
	require.Error(t, err)
	_, err = NewAnalyzerFrom("word notanumber")
	require.Error(t, err)
}

func TestNewAnalyzer_EmbeddedLexicon(t *testing.T) {
	a := NewAnalyzer()

	assert.Greater(t, len(a.words), 3000)
	assert.Equal(t, 2, a.words["recommend"])
	assert.Equal(t, -3, a.words["damaged"])
}
