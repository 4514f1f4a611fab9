package suggestion

// Suggestion is one tappable prompt chip offered before the conversation
// gets going.
type Suggestion struct {
	Text string `json:"text"`
}

// Seed provides the default chips the widget ships with.
func Seed() []Suggestion {
	return []Suggestion{
		{Text: "What's popular here?"},
		{Text: "Need help finding something?"},
		{Text: "How's my order doing?"},
		{Text: "What is your shipping policy?"},
	}
}
