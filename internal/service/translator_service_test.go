package service

import (
	"context"
	"testing"

	"examgen_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var englishOptions = []string{"1 only", "2 only", "Both 1 and 2", "Neither 1 nor 2"}

const validTranslationJSON = `{
	"question": "निम्नलिखित कथनों पर विचार कीजिए",
	"options": ["केवल 1", "केवल 2", "1 और 2 दोनों", "न तो 1 और न ही 2"],
	"explanation": "अनुच्छेद 280 वित्त आयोग की स्थापना करता है"
}`

func TestTranslateReturnsStructuredHindi(t *testing.T) {
	chat := &scriptedChat{replies: []string{validTranslationJSON}}
	tr := NewTranslatorService(chat, config.AIConfig{Model: "big", TranslationModel: "small"})

	got, err := tr.Translate(context.Background(), "Consider the following statements", englishOptions, "Article 280")
	require.NoError(t, err)

	assert.Len(t, got.Options, 4)
	assert.NotEmpty(t, got.Stem)
	assert.Equal(t, "small", chat.models[0])
}

func TestTranslateFallsBackToPrimaryModel(t *testing.T) {
	chat := &scriptedChat{replies: []string{validTranslationJSON}}
	tr := NewTranslatorService(chat, config.AIConfig{Model: "big"})

	_, err := tr.Translate(context.Background(), "stem", englishOptions, "")
	require.NoError(t, err)
	assert.Equal(t, "big", chat.models[0])
}

func TestTranslateRetriesOnOptionCountMismatch(t *testing.T) {
	truncated := `{"question": "प्रश्न", "options": ["केवल 1", "केवल 2"], "explanation": ""}`
	chat := &scriptedChat{replies: []string{truncated, validTranslationJSON}}
	tr := NewTranslatorService(chat, config.AIConfig{Model: "m"})

	got, err := tr.Translate(context.Background(), "stem", englishOptions, "")
	require.NoError(t, err)
	assert.Equal(t, 2, chat.calls)
	assert.Len(t, got.Options, 4)
}

func TestTranslateSoftFailsAfterTwoAttempts(t *testing.T) {
	chat := &scriptedChat{replies: []string{"not json"}}
	tr := NewTranslatorService(chat, config.AIConfig{Model: "m"})

	got, err := tr.Translate(context.Background(), "stem", englishOptions, "")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, chat.calls)
}

func TestTranslateRejectsEmptyStem(t *testing.T) {
	empty := `{"question": "  ", "options": ["a", "b", "c", "d"], "explanation": ""}`
	chat := &scriptedChat{replies: []string{empty}}
	tr := NewTranslatorService(chat, config.AIConfig{Model: "m"})

	_, err := tr.Translate(context.Background(), "stem", []string{"a", "b", "c", "d"}, "")
	require.Error(t, err)
	assert.Equal(t, 2, chat.calls)
}
