package model

// ModelSpec describes one selectable completion model. API-less entries are
// local models the service cannot serve; they stay listed so clients can
// render them as unavailable.
type ModelSpec struct {
	Key           string `json:"key"`
	Name          string `json:"name"` // wire identifier sent to the provider
	Description   string `json:"description"`
	ContextLength int    `json:"context_length"`
	Size          string `json:"size"`
	API           string `json:"api,omitempty"` // provider flag; empty means local-only
}

// Personality is a selectable assistant persona. Prompt text can be
// overridden by a stored template named "personality_<key>".
type Personality struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"-"`
}

const (
	DefaultModelKey       = "Groq-LLaMA3-8B"
	DefaultPersonalityKey = "friendly"
)

const memoryContinuity = " IMPORTANT: You have memory of the entire conversation history provided to you. " +
	"You should acknowledge and remember details shared by the user throughout the conversation. " +
	"Never claim that you don't remember previous parts of the conversation or that each interaction is new. " +
	"Maintain context and continuity throughout the conversation."

var builtinModels = []ModelSpec{
	{Key: "TinyLlama-Chat", Name: "PY007/TinyLlama-1.1B-Chat-v0.3", Description: "Fast and efficient chat model", ContextLength: 512, Size: "small"},
	{Key: "Phi-2", Name: "susnato/phi-2", Description: "Good performance and speed", ContextLength: 512, Size: "small"},
	{Key: "Groq-LLaMA3-8B", Name: "llama3-8b-8192", Description: "Fast LLaMA3 8B model", ContextLength: 8192, Size: "medium", API: "groq"},
	{Key: "Groq-Mixtral-8x7B", Name: "mixtral-8x7b-32768", Description: "Powerful Mixtral 8x7B model", ContextLength: 32768, Size: "large", API: "groq"},
	{Key: "Groq-Gemma-7B", Name: "gemma-7b-it", Description: "Google's Gemma 7B model", ContextLength: 8192, Size: "medium", API: "groq"},
	{Key: "Gemini-Flash", Name: "gemini-2.0-flash", Description: "Google's fast Gemini model", ContextLength: 32768, Size: "large", API: "gemini"},
}

var builtinPersonalities = []Personality{
	{
		Key:         "friendly",
		Name:        "Friendly",
		Description: "Warm and conversational",
		Prompt: "You are a friendly and helpful mental health AI assistant. " +
			"Express yourself in a warm and approachable way while maintaining accuracy." + memoryContinuity,
	},
	{
		Key:         "professional",
		Name:        "Professional",
		Description: "Direct and clear",
		Prompt: "You are a professional mental health AI assistant. " +
			"Be direct and clear in your responses." + memoryContinuity,
	},
	{
		Key:         "therapeutic",
		Name:        "Therapeutic",
		Description: "Supportive and empathetic",
		Prompt: "You are a therapeutic mental health AI assistant focused on providing emotional support. " +
			"Respond with empathy and understanding while offering constructive guidance." + memoryContinuity,
	},
}

// Models returns the registry in stable order. When apiEnabled is false the
// hosted entries are filtered out, mirroring a deployment without any
// provider credential.
func Models(apiEnabled bool) []ModelSpec {
	out := make([]ModelSpec, 0, len(builtinModels))
	for _, m := range builtinModels {
		if m.API != "" && !apiEnabled {
			continue
		}
		out = append(out, m)
	}
	return out
}

func ModelByKey(key string) (ModelSpec, bool) {
	for _, m := range builtinModels {
		if m.Key == key {
			return m, true
		}
	}
	return ModelSpec{}, false
}

func Personalities() []Personality {
	out := make([]Personality, len(builtinPersonalities))
	copy(out, builtinPersonalities)
	return out
}

func PersonalityByKey(key string) (Personality, bool) {
	for _, p := range builtinPersonalities {
		if p.Key == key {
			return p, true
		}
	}
	return Personality{}, false
}
