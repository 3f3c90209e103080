package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGradeResponse(t *testing.T) {
	result, err := parseGradeResponse(`{"grade": 8.5, "feedback": "well structured"}`)
	require.NoError(t, err)
	require.Equal(t, 8.5, result.Grade)
	require.Equal(t, "well structured", result.Feedback)
}

func TestParseGradeResponseClampsRange(t *testing.T) {
	result, err := parseGradeResponse(`{"grade": 42, "feedback": "x"}`)
	require.NoError(t, err)
	require.Equal(t, 10.0, result.Grade)

	result, err = parseGradeResponse(`{"grade": -3, "feedback": "x"}`)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Grade)
}

func TestParseGradeResponseInvalidJSON(t *testing.T) {
	_, err := parseGradeResponse("the submission looks fine to me")
	require.Error(t, err)
}

func TestBuildGraderPromptIncludesSubmission(t *testing.T) {
	prompt := buildGraderPrompt(ActivityContext{
		Title:          "Error Handling Essay",
		Instructions:   "Explain wrapped errors.",
		ExpectedFormat: "markdown",
	}, "errors.Is walks the chain")

	require.True(t, strings.Contains(prompt, "Error Handling Essay"))
	require.True(t, strings.Contains(prompt, "Explain wrapped errors."))
	require.True(t, strings.Contains(prompt, "## Expected Format"))
	require.True(t, strings.Contains(prompt, "errors.Is walks the chain"))
}

func TestBuildGraderPromptOmitsEmptyFormatSection(t *testing.T) {
	prompt := buildGraderPrompt(ActivityContext{Title: "T", Instructions: "I"}, "content")
	require.False(t, strings.Contains(prompt, "## Expected Format"))
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.Error(t, err)
}
