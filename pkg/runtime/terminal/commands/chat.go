package commands

import (
	"bufio"
	"strings"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

const (
	ChatGreeting   = "Hi! I'm your AWS Pricing Assistant. Ask me about AWS pricing, cost optimization, or how to use this app."
	ChatNoResponse = "Sorry, I couldn't get a response."
	ChatError      = "There was an error contacting Gemini API."
)

type ChatCmd struct {
	api      APIFactory
	reporter *export.Reporter
}

// NewChatCmd sends MESSAGE as one turn, or reads one turn per line from
// stdin when no message is given. Failures become a bot message in the
// transcript; the command itself never fails.
func NewChatCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	cc := &ChatCmd{api: apiFactory, reporter: reporter}
	return &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Ask the pricing assistant a question",
		RunE:  cc.run,
	}
}

func (cc *ChatCmd) run(cmd *cobra.Command, args []string) error {
	transcript := []api.ChatMessage{{Role: domain.ChatRoleBot, Content: ChatGreeting}}

	if len(args) > 0 {
		cc.send(cmd, transcript, strings.Join(args, " "))
		return nil
	}

	_ = cc.reporter.Message(ChatGreeting)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		transcript = cc.send(cmd, transcript, text)
	}
	return nil
}

func (cc *ChatCmd) send(cmd *cobra.Command, transcript []api.ChatMessage, text string) []api.ChatMessage {
	transcript = append(transcript, api.ChatMessage{Role: domain.ChatRoleUser, Content: text})

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	reply, err := cc.api().Chat(ctx, transcript)
	switch {
	case err != nil:
		reply = ChatError
	case reply == "":
		reply = ChatNoResponse
	}

	_ = cc.reporter.Message(reply)
	return append(transcript, api.ChatMessage{Role: domain.ChatRoleBot, Content: reply})
}
