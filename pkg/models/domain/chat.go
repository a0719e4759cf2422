package domain

const (
	ChatRoleUser = "user"
	ChatRoleBot  = "bot"
)

type ChatMessage struct {
	Role    string
	Content string
}
