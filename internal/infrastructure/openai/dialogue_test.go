package openai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jestelle/slash-podcast/internal/config"
)

func TestParseDialogue(t *testing.T) {
	client := New(config.OpenAIConfig{APIKey: "test"}, nil)

	dialogue, err := client.parseDialogue(`{
		"scratchpad": "notes",
		"dialogue": [
			{"text": "Hello and welcome.", "speaker": "female-1"},
			{"text": "Thanks for having me.", "speaker": "male-1"}
		]
	}`)

	require.NoError(t, err)
	require.Equal(t, "notes", dialogue.Scratchpad)
	require.Len(t, dialogue.Lines, 2)
	require.Equal(t, "female-1", dialogue.Lines[0].Speaker)
}

func TestParseDialogueRejectsBadPayloads(t *testing.T) {
	client := New(config.OpenAIConfig{APIKey: "test"}, nil)

	cases := []struct {
		name    string
		payload string
	}{
		{"not json", "sure, here is your dialogue"},
		{"empty dialogue", `{"scratchpad": "x", "dialogue": []}`},
		{"unknown speaker", `{"scratchpad": "x", "dialogue": [{"text": "hi", "speaker": "narrator"}]}`},
		{"missing text", `{"scratchpad": "x", "dialogue": [{"speaker": "female-1"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.parseDialogue(tc.payload)
			require.Error(t, err)
		})
	}
}
