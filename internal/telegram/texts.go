package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/scheduler"
)

// UI texts
const (
	reminderHeader  = "🔔 መስራታችውን እባክህ አረጋግጥ"
	checklistHeader = "📋 መስራታችውን እባክህ አረጋግጥ"

	helpFmt = "👋 Hello %s! I'm your Checklist Reminder Bot!\n\n" +
		"Available commands:\n" +
		"/start - Show this help message\n" +
		"/show_checklist - Show interactive checklist"
	helpAdmin = "\n\nAdmin commands:\n" +
		"/add_user <user_id> - Authorize a new user (numeric Telegram ID)\n" +
		"/add_admin <user_id> - Make a user an admin (numeric Telegram ID)\n" +
		"/add_item <text> - Add new checklist item\n" +
		"/remove_item <number> - Remove checklist item\n" +
		"/add_to_group <user_id> <group> - Add a user to a reminder group\n" +
		"/show_groups - Show groups and schedules\n" +
		"/show_jobs - Show scheduled reminders"

	notAuthorizedText  = "You are not authorized to use this bot."
	emptyChecklistText = "Your checklist is empty!"
	unknownCommandText = "Unknown command. Send /start to see what I can do."

	addItemAdminOnly  = "Only admins can add items."
	addItemUsage      = "Please provide an item to add!\nExample: /add_item Check microphone"
	removeAdminOnly   = "Only admins can remove items."
	removeUsage       = "Please provide the item number to remove!\nExample: /remove_item 1"
	invalidNumberText = "Please provide a valid number!"
	invalidItemText   = "Invalid item number!"

	addUserAdminOnly  = "❌ Only admins can authorize new users."
	addUserUsage      = "Please provide the numeric Telegram user ID to authorize\nExample: /add_user 123456789"
	addAdminAdminOnly = "❌ Only existing admins can add new admins."
	addAdminUsage     = "Please provide the numeric Telegram user ID to make admin\nExample: /add_admin 123456789"
	badUserIDText     = "User ID must be a number (the numeric Telegram account ID)."
	alreadyAuthorized = "User already authorized"
	alreadyAdmin      = "User is already an admin"

	groupAdminOnly     = "Only admins can add users to groups."
	groupUsage         = "Usage: /add_to_group <user_id> <group_name>"
	mustAuthorizeFirst = "User must be authorized first."
	alreadyInGroup     = "User already in group"
	viewGroupsOnly     = "Only admins can view groups."

	noJobsText       = "No jobs scheduled"
	toggleFailedText = "Failed to update checklist"
	saveFailedText   = "Something went wrong, please try again."
)

// checklistKeyboard renders one button per item, one item per row, in list order.
func checklistKeyboard(opts []domain.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Token),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func helpText(firstName string, admin bool) string {
	if firstName == "" {
		firstName = "there"
	}
	text := fmt.Sprintf(helpFmt, firstName)
	if admin {
		text += helpAdmin
	}
	return text
}

func jobsText(jobs []scheduler.JobInfo, loc *time.Location) string {
	if len(jobs) == 0 {
		return noJobsText
	}
	var sb strings.Builder
	sb.WriteString("Scheduled jobs:\n")
	for _, j := range jobs {
		kind := "once"
		if j.Weekly {
			kind = "weekly"
		}
		fmt.Fprintf(&sb, "- %s (%s, chat %d): Next run at %s\n", j.Name, kind, j.Dest, domain.LocalizeTime(j.Next, loc))
	}
	return sb.String()
}

func groupsText(groups domain.Groups) string {
	var sb strings.Builder
	sb.WriteString("📋 Group Information:\n\n")
	for _, name := range groups.Names() {
		grp := groups[name]
		users := "No users"
		if len(grp.Users) > 0 {
			users = strings.Join(grp.Users, ", ")
		}
		fmt.Fprintf(&sb, "🔸 Group: %s\n", name)
		fmt.Fprintf(&sb, "👥 Users: %s\n", users)
		sb.WriteString("⏰ Schedules:\n")
		for _, s := range grp.Schedules {
			fmt.Fprintf(&sb, "   • %s at %s\n", s.DayName(), s.Clock())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
