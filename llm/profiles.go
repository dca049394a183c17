package llm

import (
	"strings"
	"time"
)

// Profile is the per-model configuration bundle governing request timeout and
// the maximum transcript size the model can take in a single call. Transcripts
// over MaxTranscriptChars are chunked.
type Profile struct {
	Timeout            time.Duration
	MaxTranscriptChars int
	Description        string
}

// profiles holds presets for known models. Budgets are conservative: large
// local models get long timeouts and small input windows.
var profiles = map[string]Profile{
	// Ollama models
	"gemma:3b":      {Timeout: 180 * time.Second, MaxTranscriptChars: 20000, Description: "Lightweight 3B model, good for basic summaries"},
	"gemma:7b":      {Timeout: 240 * time.Second, MaxTranscriptChars: 15000, Description: "Medium 7B model, balanced performance"},
	"gemma3:1b":     {Timeout: 180 * time.Second, MaxTranscriptChars: 20000, Description: "Lightweight Gemma 3 1B model, good for basic summaries"},
	"gemma3:12b":    {Timeout: 600 * time.Second, MaxTranscriptChars: 8000, Description: "Large 12B model, better quality but slower"},
	"qwen3:30b-a3b": {Timeout: 480 * time.Second, MaxTranscriptChars: 15000, Description: "Large 30B model, high quality with good performance"},
	"llama3:8b":     {Timeout: 240 * time.Second, MaxTranscriptChars: 15000, Description: "Medium 8B model, good all-around performance"},
	"llama3:70b":    {Timeout: 600 * time.Second, MaxTranscriptChars: 10000, Description: "Very large 70B model, high quality but very slow"},

	// OpenAI models
	"gpt-3.5-turbo": {Timeout: 60 * time.Second, MaxTranscriptChars: 25000, Description: "Fast OpenAI model with good performance"},
	"gpt-4":         {Timeout: 120 * time.Second, MaxTranscriptChars: 20000, Description: "High-quality OpenAI model"},

	// Gemini models
	"gemini-pro":               {Timeout: 120 * time.Second, MaxTranscriptChars: 20000, Description: "Google's Gemini Pro model"},
	"gemini-2.5-flash-preview": {Timeout: 120 * time.Second, MaxTranscriptChars: 25000, Description: "Google's Gemini 2.5 Flash Preview model"},
}

// defaultProfile is used for models with no exact or substring match.
var defaultProfile = Profile{
	Timeout:            180 * time.Second,
	MaxTranscriptChars: 15000,
	Description:        "Default configuration for unknown models",
}

// profileOrder fixes the scan order for substring matching; map iteration
// order would make the fallback nondeterministic.
var profileOrder = []string{
	"gemma:3b", "gemma:7b", "gemma3:1b", "gemma3:12b", "qwen3:30b-a3b",
	"llama3:8b", "llama3:70b",
	"gpt-3.5-turbo", "gpt-4",
	"gemini-pro", "gemini-2.5-flash-preview",
}

// LookupProfile resolves a model name to its Profile: exact match first, then
// the first known key containing the requested name (case-insensitive), then
// the default.
func LookupProfile(model string) Profile {
	if p, ok := profiles[model]; ok {
		return p
	}

	if lower := strings.ToLower(model); lower != "" {
		for _, name := range profileOrder {
			if strings.Contains(strings.ToLower(name), lower) {
				return profiles[name]
			}
		}
	}

	return defaultProfile
}
