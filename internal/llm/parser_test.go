package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestion(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectError bool
		expected    Suggestion // Only checked if expectError is false
	}{
		{
			name:        "Valid JSON",
			input:       `{"work_item_type": "Bug", "title": "Fix login", "description": "Users cannot sign in", "tags": ["auth"]}`,
			expectError: false,
			expected: Suggestion{
				WorkItemType: "Bug",
				Title:        "Fix login",
				Description:  "Users cannot sign in",
				Tags:         []string{"auth"},
			},
		},
		{
			name:        "Invalid JSON - Syntax Error",
			input:       `{"work_item_type": "Bug", "title": "Fix login",}`, // Extra comma
			expectError: true,
		},
		{
			name:        "Missing Title",
			input:       `{"work_item_type": "Bug", "description": "no title here"}`,
			expectError: true, // JSON is valid, but validation should fail
		},
		{
			name:        "Empty Input String",
			input:       "",
			expectError: true,
		},
		{
			name:        "Valid JSON with Extra Keys",
			input:       `{"title": "Fix login", "extra_key": "ignore_me"}`,
			expectError: false,
			expected:    Suggestion{Title: "Fix login"},
		},
		{
			name:        "JSON is just a string",
			input:       `"this is not a json object"`,
			expectError: true,
		},
		{
			name:        "Valid JSON with standard markdown fence",
			input:       "```json\n{\"work_item_type\": \"Task\", \"title\": \"Fence Title\"}\n```",
			expectError: false,
			expected:    Suggestion{WorkItemType: "Task", Title: "Fence Title"},
		},
		{
			name:        "Valid JSON with fence missing specifier",
			input:       "```\n{\"title\": \"No Spec Title\"}\n```",
			expectError: false,
			expected:    Suggestion{Title: "No Spec Title"},
		},
		{
			name:        "Valid JSON with uppercase JSON fence specifier",
			input:       "```JSON\n{\"title\": \"Upper Title\"}\n```",
			expectError: false,
			expected:    Suggestion{Title: "Upper Title"},
		},
		{
			name:        "Valid JSON with leading and trailing whitespace around fences",
			input:       "  \n\n ```json\n{\"title\": \"Whitespace Title\"}\n``` \n ",
			expectError: false,
			expected:    Suggestion{Title: "Whitespace Title"},
		},
		{
			name:        "Bare JSON with surrounding whitespace",
			input:       "  \n {\"title\": \"Bare Title\", \"description\": \"d\"} \n ",
			expectError: false,
			expected:    Suggestion{Title: "Bare Title", Description: "d"},
		},
		{
			name:        "Prose before JSON with no fences",
			input:       "Sure! Here is the work item: title Fix login",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			suggestion, err := ParseSuggestion(tc.input)
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, suggestion)
		})
	}
}

func TestParseSuggestionSentinelErrors(t *testing.T) {
	_, err := ParseSuggestion("no json here at all")
	assert.ErrorIs(t, err, ErrLLMResponseJSONFind)

	_, err = ParseSuggestion(`{"title": }`)
	assert.ErrorIs(t, err, ErrLLMResponseJSONUnmarshal)

	_, err = ParseSuggestion(`{"description": "only a description"}`)
	assert.ErrorIs(t, err, ErrLLMResponseMissingField)
}
