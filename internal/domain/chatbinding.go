package domain

// ChatBinding links a user to an external messaging chat for notification
// delivery. ChatID starts empty and is filled exactly once when the bot relay
// exchanges the pairing code; after that the code is spent.
type ChatBinding struct {
	UserID string `json:"user_id" db:"user_id"`
	ChatID string `json:"chat_id" db:"chat_id"`
	Code   string `json:"code" db:"code"`
}

// IsPaired reports whether the code exchange already happened.
func (b *ChatBinding) IsPaired() bool {
	return b.ChatID != ""
}

// PairChatBindingRequest is the body of PUT /chat-bindings, sent by the bot
// relay (gated by the X-Requested-By header, not the identity provider).
type PairChatBindingRequest struct {
	ChatID string `json:"chat_id"`
	Code   string `json:"code"`
}
