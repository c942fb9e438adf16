package app

import "strings"

// Intent categories, checked in order. Anything that matches none of the
// small-talk sets is academic and goes through retrieval.
const (
	IntentGreeting = "greeting"
	IntentThanks   = "thanks"
	IntentFarewell = "farewell"
	IntentIdentity = "identity"
	IntentAcademic = "academic"
)

type smallTalkSet struct {
	category string
	words    []string
	phrases  []string
	reply    string
}

// IntentClassifier short-circuits conversational filler before retrieval
// so small talk never spends a model call or gets a "no information"
// reply. Pure and stateless.
type IntentClassifier struct {
	sets []smallTalkSet
}

func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		sets: []smallTalkSet{
			{
				category: IntentGreeting,
				words:    []string{"hello", "hi", "hey", "kumusta", "yo"},
				phrases:  []string{"good morning", "good afternoon", "good evening"},
				reply:    "Hello! How can I help you today? You can ask me about courses, enrollment, policies, deadlines, and other student services.",
			},
			{
				category: IntentThanks,
				words:    []string{"thanks", "thank", "salamat", "ty"},
				phrases:  []string{"thank you", "thanks a lot", "much appreciated"},
				reply:    "You're welcome! Let me know if there's anything else you need.",
			},
			{
				category: IntentFarewell,
				words:    []string{"bye", "goodbye", "paalam"},
				phrases:  []string{"see you", "talk to you later", "good night"},
				reply:    "Goodbye! Feel free to come back any time you have questions.",
			},
			{
				category: IntentIdentity,
				phrases: []string{
					"who are you", "what are you", "are you a bot", "are you human",
					"are you real", "what can you do", "how are you",
				},
				reply: "I'm the student support assistant! I answer questions about courses, policies, and student services based on official documents. How can I help?",
			},
		},
	}
}

// Classification is either a small-talk fast answer or academic.
type Classification struct {
	Category string
	Reply    string
}

func (c Classification) SmallTalk() bool {
	return c.Category != IntentAcademic
}

// Classify matches the question against the phrase sets in order;
// first match wins. Single words match whole tokens, multi-word phrases
// match as substrings, both case-insensitive.
func (ic *IntentClassifier) Classify(question string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(question))
	tokens := tokenize(normalized)

	for _, set := range ic.sets {
		for _, phrase := range set.phrases {
			if strings.Contains(normalized, phrase) {
				return Classification{Category: set.category, Reply: set.reply}
			}
		}
		for _, word := range set.words {
			for _, token := range tokens {
				if token == word {
					return Classification{Category: set.category, Reply: set.reply}
				}
			}
		}
	}
	return Classification{Category: IntentAcademic}
}

// tokenize lower-cases, strips punctuation at token edges, and splits on
// whitespace.
func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.Trim(f, ".,!?;:'\"()[]")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
