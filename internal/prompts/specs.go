package prompts

const analyzeSpec = `Respond with a JSON object matching this exact structure:

{
  "fieldSuggestions": [
    {
      "fieldId": "<field id>",
      "fieldName": "<field name>",
      "suggestedValue": "<value>",
      "confidence": 0.0,
      "reasoning": "<evidence>"
    }
  ],
  "tagSuggestions": [
    {
      "tagName": "<tag>",
      "confidence": 0.0,
      "reasoning": "<evidence>"
    }
  ]
}

Field constraints:
- fieldId: Must be one of the field ids listed under "availableFields" in
  the contact profile. Suggestions for any other id are discarded.
- fieldName: The display name of that field.
- suggestedValue: The value to store, written as a short phrase.
- confidence: Number between 0 and 1. Use 0.7 or higher only when the
  messages state the fact directly.
- reasoning: One sentence citing the message evidence.
- tagName: Lowercase, one to three words. Do not repeat tags the contact
  already has.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Use empty arrays when nothing is worth suggesting
- Never invent facts that the messages do not support`

var specs = map[Stage]string{
	StageAnalyze: analyzeSpec,
}

// Spec returns the output specification for a stage. Specifications define
// the expected response format and are not overridable.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
