package testutil

import "github.com/roach88/lumos/internal/ldl"

// DemoDocument returns a fully populated project document that passes
// save-mode validation. Every call returns a fresh copy, so tests may mutate it.
//
// Connection endpoint types are explicit and the model version is set, so a
// stored-then-loaded copy compares equal to the original.
func DemoDocument() *ldl.Document {
	return &ldl.Document{
		Project: ldl.Header{
			Name:        "Demo",
			Version:     "1.0.0",
			Description: "research assistant crew",
			Authors:     []string{"ada", "grace"},
		},
		Agents: []ldl.Agent{
			{
				ID:          "a1",
				Name:        "Researcher",
				Description: "finds sources",
				Type:        "llm",
				Subtype:     "react",
				Position:    &ldl.Position{X: 10, Y: 20},
				Model: &ldl.Model{
					LLMType:  "chat",
					Name:     "gpt-4o",
					Version:  "2024-08-06",
					Provider: "openai",
					Parameters: ldl.Object{
						"temperature": ldl.Float(0.2),
						"max_tokens":  ldl.Int(2048),
						"stop":        ldl.Array{ldl.String("###")},
					},
				},
				Capabilities: []string{"search", "summarize"},
			},
			{
				ID:       "a2",
				Name:     "Writer",
				Type:     "llm",
				Position: &ldl.Position{X: 200.5, Y: 20},
			},
		},
		Tools: []ldl.Tool{
			{
				ID:          "t1",
				Name:        "web_search",
				Description: "searches the web",
				Type:        "function",
				Subtype:     "http",
				Position:    &ldl.Position{X: 10, Y: 120},
				Parameters: ldl.Object{
					"query":    ldl.String("golang"),
					"limit":    ldl.Int(5),
					"score":    ldl.Float(0.75),
					"safe":     ldl.Bool(true),
					"headers":  ldl.Object{"accept": ldl.String("text/html")},
					"fallback": ldl.Null{},
				},
			},
		},
		Tasks: []ldl.Task{
			{
				ID:       "k1",
				Name:     "draft report",
				Type:     "sequential",
				Position: &ldl.Position{X: 200.5, Y: 120},
				Parameters: ldl.Object{
					"words":    ldl.Int(800),
					"markdown": ldl.Bool(false),
				},
			},
		},
		Interactions: []ldl.Interaction{
			{
				ID:           "i1",
				Type:         "conversation",
				Subtype:      "turn-based",
				Pattern:      "round-robin",
				Participants: []string{"a1", "a2"},
				Protocol: &ldl.Protocol{
					Type:         "chat",
					MessageTypes: []string{"request", "response"},
				},
			},
		},
		Connections: []ldl.Connection{
			{ID: "c1", Source: "a1", SourceType: ldl.EndpointAgent, Target: "t1", TargetType: ldl.EndpointTool, Label: "uses"},
			{ID: "c2", Source: "a1", SourceType: ldl.EndpointAgent, Target: "a2", TargetType: ldl.EndpointAgent},
			{ID: "c3", Source: "a2", SourceType: ldl.EndpointAgent, Target: "k1", TargetType: ldl.EndpointTask, Label: "performs"},
		},
	}
}

// MinimalDocument returns a document with only a project name and one agent
// at the given position.
func MinimalDocument(name string) *ldl.Document {
	return &ldl.Document{
		Project: ldl.Header{Name: name},
		Agents: []ldl.Agent{
			{ID: "a1", Name: "solo", Position: &ldl.Position{X: 10, Y: 20}},
		},
	}
}
