package domain

// Channel is the delivery channel for one-time codes.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ParseChannel validates a raw channel string.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelSMS:
		return Channel(s), nil
	default:
		return "", ErrBadRequest
	}
}

// Verification is a pending one-time code, keyed by normalized target so at
// most one valid code exists per target at a time. ExpiresAt doubles as the
// DynamoDB TTL attribute (Unix seconds).
type Verification struct {
	Target    string  `json:"target" dynamodbav:"target"` // lowercased email or phone
	Channel   Channel `json:"channel" dynamodbav:"channel"`
	Code      string  `json:"code" dynamodbav:"code"`
	Attempts  int     `json:"attempts" dynamodbav:"attempts"`
	IssuedAt  int64   `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt int64   `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
