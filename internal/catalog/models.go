// Package catalog manages the exercise library trainers pick from when
// building plans.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Exercise is one library entry, e.g. Back Squat or Pull Up.
type Exercise struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	BodyPart            string `json:"bodyPart"`
	DescriptionMarkdown string `json:"description_markdown"`
	IsRepsBased         bool   `json:"is_reps_based"`
}

// bodyParts is the closed vocabulary the generator may classify into.
var bodyParts = []string{
	"Chest",
	"Back",
	"Shoulders",
	"Arms",
	"Legs",
	"Glutes",
	"Core",
	"Full Body",
}

type exerciseJSONSchema struct {
	bodyParts []string
}

func (ejs exerciseJSONSchema) MarshalJSON() ([]byte, error) {
	bodyPartsJSON, err := json.Marshal(ejs.bodyParts)
	if err != nil {
		return nil, fmt.Errorf("marshal body parts: %w", err)
	}

	return []byte(fmt.Sprintf(`{
		  "type": "object",
		  "required": [
			"id",
			"name",
			"bodyPart",
			"description_markdown",
			"is_reps_based"
		  ],
		  "properties": {
			"id": {
			  "type": "integer",
			  "description": "Unique identifier for the exercise, leave as -1 for new exercises"
			},
			"name": {
			  "type": "string",
			  "description": "Name of the exercise"
			},
			"bodyPart": {
			  "type": "string",
			  "description": "Primary body part the exercise trains",
			  "enum": %s
			},
			"description_markdown": {
			  "type": "string",
			  "description": "Markdown description of the exercise"
			},
			"is_reps_based": {
			  "type": "boolean",
			  "description": "True when the exercise is scored by repetition count alone, e.g. bodyweight movements"
			}
		  },
		  "additionalProperties": false
		}`, bodyPartsJSON)), nil
}
