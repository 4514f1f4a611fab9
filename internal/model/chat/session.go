package chat

// Session binds a generated identity to its ordered message log. Exactly
// one session is active per store at a time; a stale session is replaced,
// never repaired.
type Session struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}
