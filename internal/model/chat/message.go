package chat

// Roles a message can carry. The stored wire name for the role field is
// "type", matching the log format the widget has always written.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one turn of a conversation. Content stays raw and unparsed;
// renderable segments are recomputed from it on every render. Once created
// a message is never mutated or reordered.
type Message struct {
	Role      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // millis since epoch
}
