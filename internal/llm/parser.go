package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Suggestion defines the structure expected for the JSON data returned by the
// LLM after processing a user's request for work item creation. The title is
// mandatory; everything else is a hint the create command may override.
type Suggestion struct {
	WorkItemType string   `json:"work_item_type"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags,omitempty"`
}

// Regex to find JSON possibly enclosed in markdown code fences.
// It looks for ``` (optional json specifier) ... ```
// and captures the content starting with { and ending with }.
var jsonRegex = regexp.MustCompile("(?s)`{3}(?:[jJ][sS][oO][nN])?\\s*(\\{.*\\})\\s*`{3}")

// ParseSuggestion takes the raw string response from the LLM, strips potential
// markdown code fences, and unmarshals the resulting JSON into a Suggestion.
// A suggestion without a title is rejected.
func ParseSuggestion(rawResponse string) (Suggestion, error) {
	log.Debug().Str("raw_response", rawResponse).Msg("Attempting to parse LLM response")

	var jsonStr string
	match := jsonRegex.FindStringSubmatch(rawResponse)

	if len(match) == 2 {
		// Found JSON within ```json ... ``` or ``` ... ```
		jsonStr = match[1]
		log.Debug().Str("extracted_json", jsonStr).Msg("Extracted JSON using regex from code fences")
	} else {
		// Fallback: the response might be bare JSON, or the fences malformed.
		trimmed := strings.TrimSpace(rawResponse)
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			jsonStr = trimmed
			log.Debug().Str("trimmed_json", jsonStr).Msg("Using trimmed response as JSON (no valid fences found)")
		} else {
			log.Error().Str("raw_response", rawResponse).Msg("Could not find JSON object within code fences or as a standalone object")
			return Suggestion{}, ErrLLMResponseJSONFind
		}
	}

	jsonStr = strings.TrimSpace(jsonStr)

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(jsonStr), &suggestion); err != nil {
		log.Error().Err(err).Str("json_string", jsonStr).Msg("Failed to unmarshal LLM response JSON")
		return Suggestion{}, fmt.Errorf("%w: %w", ErrLLMResponseJSONUnmarshal, err)
	}
	log.Debug().Interface("parsed_suggestion", suggestion).Msg("Successfully unmarshalled LLM response")

	if suggestion.Title == "" {
		log.Error().Interface("parsed_suggestion", suggestion).Msg("Parsed LLM response is missing 'title'")
		return suggestion, fmt.Errorf("%w: title", ErrLLMResponseMissingField)
	}

	return suggestion, nil
}
