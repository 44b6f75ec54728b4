package pipeline

import "github.com/zulandar/textline/internal/command"

// Command replies. Subscription state (STOP/START) and persona preference
// (CONFIG) are not tracked, so those commands return fixed copy.
const (
	stopReply = "You have been unsubscribed. Text START to resume service. We're sorry to see you go! 👋"

	startReply = "Welcome back! I'm here to help with questions, directions, recipes, and more. What can I help you with? 🤖"

	statusReply = "Service is active. Text HELP for commands or just ask me anything! ✅"

	configReply = "Configuration coming soon! For now, I adapt my responses to your questions automatically. 🔧"

	helpReply = "Hi! I'm your AI text assistant. Just text me questions like:\n" +
		"• \"Weather today?\"\n" +
		"• \"Recipe for soup?\"\n" +
		"• \"Is this email a scam?\"\n\n" +
		"Commands:\n" +
		"• HELP - This message\n" +
		"• STOP - End service\n" +
		"• MORE - Get full answer\n\n" +
		"Text any question to get started! 🤖"
)

// handleCommand produces the reply for a parsed control command. No command
// reaches the completion service.
func (p *Pipeline) handleCommand(parsed command.Parsed, identityHash string) string {
	switch parsed.Kind {
	case command.Help:
		return helpReply
	case command.Stop:
		return stopReply
	case command.Start:
		return startReply
	case command.More:
		return p.generator.Continue(identityHash)
	case command.Status:
		return statusReply
	case command.Config:
		return configReply
	default:
		return helpReply
	}
}
