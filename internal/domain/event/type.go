package event

// Type identifies the kind of inbound chat event
type Type string

const (
	TypeMessagePosted  Type = "message.posted"
	TypeMessageEdited  Type = "message.edited"
	TypeMessageDeleted Type = "message.deleted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeMessagePosted,
		TypeMessageEdited,
		TypeMessageDeleted:
		return true
	default:
		return false
	}
}

// Subtypes reported for posted messages that are not plain user text
const (
	SubtypeBotMessage = "bot_message"
	SubtypeNonText    = "non_text"
)
