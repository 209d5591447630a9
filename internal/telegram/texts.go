package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
)

const (
	helpText = "Available Commands:\n" +
		"- /test: Check if the bot is running smoothly.\n" +
		"- /exempt @username: Exempt a user from daily updates.\n" +
		"- /add @username: Manually add a user to the daily updates list.\n" +
		"- /removeexempt @username: Remove a user from the exemption list.\n" +
		"- /list: List all users and exempted users.\n" +
		"- /update: Submit your GitHub pull request link.\n" +
		"- /help: Show this help message."
	healthText = "Health check: Bot is running smoothly!"

	invalidLinkFmt   = "%s, your message should contain a valid GitHub pull request link."
	notFoundFmt      = "%s, I could not find that pull request on GitHub."
	recordedFmt      = "%s, your pull request has been recorded."
	noUsernameFmt    = "%s, please set a Telegram username so I can track your updates."
	exemptedFmt      = "%s has been exempted from daily updates."
	addedFmt         = "%s has been added to the list."
	removedExemptFmt = "%s has been removed from the exemption list."
	storeErrorText   = "Something went wrong, please try again later."

	noUsersText  = "No users added."
	noExemptText = "No exempted users."
)

// listText renders the /list reply in Markdown; handles are escaped so
// underscores in usernames do not break formatting.
func listText(s domain.Snapshot) string {
	var b strings.Builder
	b.WriteString("*Employees:*\n")
	writeHandles(&b, s.Tracked, noUsersText)
	b.WriteString("\n\n*Exempted from daily updates:*\n")
	writeHandles(&b, s.Exempt, noExemptText)
	return b.String()
}

func writeHandles(b *strings.Builder, handles []string, empty string) {
	if len(handles) == 0 {
		b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, empty))
		return
	}
	for i, h := range handles {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, domain.Mention(h)))
	}
}
