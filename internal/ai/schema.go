package ai

// Response schemas use the OpenAPI subset accepted by responseSchema.

func stringArray(min, max int) map[string]any {
	s := map[string]any{
		"type":  "ARRAY",
		"items": map[string]any{"type": "STRING"},
	}
	if min > 0 {
		s["minItems"] = min
	}
	if max > 0 {
		s["maxItems"] = max
	}
	return s
}

var studyModelSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"word":        map[string]any{"type": "STRING"},
		"definition":  map[string]any{"type": "STRING"},
		"examples":    stringArray(3, 3),
		"synonyms":    stringArray(3, 3),
		"antonyms":    stringArray(3, 3),
		"translation": map[string]any{"type": "STRING"},
	},
	"required": []string{"word", "definition", "examples", "synonyms", "antonyms"},
}

var quizSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"word":         map[string]any{"type": "STRING"},
					"type":         map[string]any{"type": "STRING", "enum": []string{"multiple-choice", "writing"}},
					"question":     map[string]any{"type": "STRING"},
					"options":      stringArray(0, 4),
					"correctIndex": map[string]any{"type": "INTEGER"},
				},
				"required": []string{"word", "type", "question"},
			},
		},
	},
	"required": []string{"questions"},
}

var storySchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"title": map[string]any{"type": "STRING"},
		"body":  map[string]any{"type": "STRING"},
	},
	"required": []string{"title", "body"},
}

var termsSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"terms": stringArray(0, 0),
	},
	"required": []string{"terms"},
}
