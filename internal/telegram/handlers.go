package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/service"
)

// --- Core commands ---

func (r *Router) handleStart(msg *tgbotapi.Message, caller string) {
	chatID := msg.Chat.ID
	if !r.svc.IsAuthorized(caller) {
		r.sendText(chatID, notAuthorizedText)
		return
	}
	r.sendText(chatID, helpText(msg.From.FirstName, r.svc.IsAdmin(caller)))

	next, err := r.svc.Start(caller, chatID)
	if err != nil {
		r.log.Error("arm reminders failed", zap.Int64("chatID", chatID), zap.Error(err))
		return
	}
	r.log.Info("self-test reminder armed", zap.Int64("chatID", chatID), zap.Time("next", next))
}

func (r *Router) handleShowChecklist(chatID int64, caller string) {
	c, err := r.svc.Checklist(caller)
	if err != nil {
		r.sendText(chatID, notAuthorizedText)
		return
	}
	if len(c) == 0 {
		r.sendText(chatID, emptyChecklistText)
		return
	}
	if err := r.sendChecklist(chatID, checklistHeader, c.Render()); err != nil {
		r.log.Warn("send checklist failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

// --- Checklist editing ---

func (r *Router) handleAddItem(ctx context.Context, msg *tgbotapi.Message, caller string) {
	chatID := msg.Chat.ID
	if !r.svc.IsAdmin(caller) {
		r.sendText(chatID, addItemAdminOnly)
		return
	}
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		r.sendText(chatID, addItemUsage)
		return
	}
	it, err := r.svc.AddItem(ctx, caller, text)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		r.sendText(chatID, addItemUsage)
		return
	default:
		r.replyError(chatID, "add_item", err)
		return
	}
	r.sendText(chatID, "✅ Added: "+it.Text)
	r.handleShowChecklist(chatID, caller)
}

func (r *Router) handleRemoveItem(ctx context.Context, msg *tgbotapi.Message, caller string) {
	chatID := msg.Chat.ID
	if !r.svc.IsAdmin(caller) {
		r.sendText(chatID, removeAdminOnly)
		return
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		r.sendText(chatID, removeUsage)
		return
	}
	it, err := r.svc.RemoveItem(ctx, caller, args[0])
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrParse):
		r.sendText(chatID, invalidNumberText)
		return
	case errors.Is(err, domain.ErrOutOfRange):
		r.sendText(chatID, invalidItemText)
		return
	default:
		r.replyError(chatID, "remove_item", err)
		return
	}
	r.sendText(chatID, "❌ Removed: "+it.Text)
	r.handleShowChecklist(chatID, caller)
}

func (r *Router) handleToggle(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	c, err := r.svc.ToggleItem(ctx, cb.Data)
	if err != nil {
		r.log.Warn("toggle failed", zap.String("data", cb.Data), zap.Error(err))
		r.answerCallback(cb.ID, toggleFailedText)
		return
	}
	r.answerCallback(cb.ID, "")
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	if err := r.editChecklist(cb.Message.Chat.ID, cb.Message.MessageID, c.Render()); err != nil {
		r.log.Warn("edit checklist failed", zap.Int64("chatID", cb.Message.Chat.ID), zap.Error(err))
	}
}

// --- Users ---

func (r *Router) handleAddUser(ctx context.Context, msg *tgbotapi.Message, caller string) {
	chatID := msg.Chat.ID
	if !r.svc.IsAdmin(caller) {
		r.sendText(chatID, addUserAdminOnly)
		return
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		r.sendText(chatID, addUserUsage)
		return
	}
	added, err := r.svc.AuthorizeUser(ctx, caller, args[0])
	switch {
	case err == nil && added:
		r.sendText(chatID, fmt.Sprintf("✅ User %s authorized", args[0]))
	case err == nil:
		r.sendText(chatID, alreadyAuthorized)
	case errors.Is(err, domain.ErrParse):
		r.sendText(chatID, badUserIDText)
	default:
		r.replyError(chatID, "add_user", err)
	}
}

func (r *Router) handleAddAdmin(ctx context.Context, msg *tgbotapi.Message, caller string) {
	chatID := msg.Chat.ID
	if !r.svc.IsAdmin(caller) {
		r.sendText(chatID, addAdminAdminOnly)
		return
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		r.sendText(chatID, addAdminUsage)
		return
	}
	added, err := r.svc.AddAdmin(ctx, caller, args[0])
	switch {
	case err == nil && added:
		r.sendText(chatID, fmt.Sprintf("✅ User %s is now an admin", args[0]))
	case err == nil:
		r.sendText(chatID, alreadyAdmin)
	case errors.Is(err, domain.ErrParse):
		r.sendText(chatID, badUserIDText)
	default:
		r.replyError(chatID, "add_admin", err)
	}
}

// --- Groups & jobs ---

func (r *Router) handleAddToGroup(ctx context.Context, msg *tgbotapi.Message, caller string) {
	chatID := msg.Chat.ID
	if !r.svc.IsAdmin(caller) {
		r.sendText(chatID, groupAdminOnly)
		return
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		r.sendText(chatID, groupUsage)
		return
	}
	userID, group := args[0], args[1]
	added, err := r.svc.AddToGroup(ctx, caller, userID, group)
	switch {
	case err == nil && added:
		r.sendText(chatID, fmt.Sprintf("✅ Added user %s to group %s", userID, group))
	case err == nil:
		r.sendText(chatID, alreadyInGroup)
	case errors.Is(err, service.ErrUnknownGroup):
		r.sendText(chatID, fmt.Sprintf("Group %s does not exist. Available groups: %s",
			group, strings.Join(r.svc.GroupNames(), ", ")))
	case errors.Is(err, service.ErrUserNotAuthorized):
		r.sendText(chatID, mustAuthorizeFirst)
	case errors.Is(err, domain.ErrParse):
		r.sendText(chatID, badUserIDText)
	default:
		r.replyError(chatID, "add_to_group", err)
	}
}

func (r *Router) handleShowGroups(chatID int64, caller string) {
	groups, err := r.svc.Groups(caller)
	if err != nil {
		r.sendText(chatID, viewGroupsOnly)
		return
	}
	r.sendText(chatID, groupsText(groups))
}

func (r *Router) handleShowJobs(chatID int64, caller string) {
	jobs, err := r.svc.Jobs(caller)
	if err != nil {
		return // admins only; stay silent for everyone else
	}
	r.sendText(chatID, jobsText(jobs, r.svc.Location()))
}

// replyError covers failures that have no dedicated message.
func (r *Router) replyError(chatID int64, op string, err error) {
	r.log.Error("command failed", zap.String("op", op), zap.Int64("chatID", chatID), zap.Error(err))
	r.sendText(chatID, saveFailedText)
}
