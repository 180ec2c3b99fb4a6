package events

// Schema returns the JSON schema a raw mutation payload must satisfy before
// the dispatcher touches it. All event types share the envelope; the type
// enum is the only per-type variation.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": "string"},
			"type": map[string]any{
				"type": "string",
				"enum": []string{
					string(ContactCreatedEvent),
					string(DealStageChangedEvent),
					string(TaskCompletedEvent),
				},
			},
			"owner":       map[string]any{"type": "string", "minLength": 1},
			"entity_id":   map[string]any{"type": "string", "minLength": 1},
			"data":        map[string]any{"type": "object"},
			"occurred_at": map[string]any{"type": "string"},
		},
		"required": []string{"type", "owner", "entity_id"},
	}
}
