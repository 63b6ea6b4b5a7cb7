package inference

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("```markdown\n**Q1:** "),
				genai.Blob{MIMEType: "image/png", Data: []byte{1}},
				genai.Text("$\\boxed{2}$\n```"),
			}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "**Q1:** $\\boxed{2}$", text)
}

func TestResponseTextEmptyAnswerIsNotAnError(t *testing.T) {
	for name, c := range map[string]*genai.Candidate{
		"no content":  {FinishReason: genai.FinishReasonStop},
		"blank text":  {Content: &genai.Content{Parts: []genai.Part{genai.Text("  \n")}}, FinishReason: genai.FinishReasonStop},
		"no metadata": {},
	} {
		t.Run(name, func(t *testing.T) {
			text, err := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{c}})
			require.NoError(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestResponseTextMissingOrBlockedCandidate(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonProhibitedContent}},
	})
	assert.ErrorIs(t, err, ErrBlocked)
	assert.ErrorContains(t, err, "FinishReasonProhibitedContent")
}
