package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
	"github.com/ykvlv/checklist-bot/internal/service"
)

// Router wires Telegram updates to handlers.
type Router struct {
	*Messenger
	svc *service.Service
}

// NewRouter creates a new Telegram router.
func NewRouter(m *Messenger, svc *service.Service) *Router {
	return &Router{Messenger: m, svc: svc}
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Text messages
	if upd.Message != nil {
		msg := upd.Message
		if msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
			return
		}
		caller := domain.UserKey(msg.From.ID)
		r.log.Debug("command",
			zap.String("cmd", msg.Command()),
			zap.String("user", caller),
			zap.Int64("chatID", msg.Chat.ID),
		)

		switch msg.Command() {
		case "start", "help":
			r.handleStart(msg, caller)
		case "show_checklist":
			r.handleShowChecklist(msg.Chat.ID, caller)
		case "add_item":
			r.handleAddItem(ctx, msg, caller)
		case "remove_item":
			r.handleRemoveItem(ctx, msg, caller)
		case "add_user":
			r.handleAddUser(ctx, msg, caller)
		case "add_admin":
			r.handleAddAdmin(ctx, msg, caller)
		case "show_jobs":
			r.handleShowJobs(msg.Chat.ID, caller)
		case "add_to_group":
			r.handleAddToGroup(ctx, msg, caller)
		case "show_groups":
			r.handleShowGroups(msg.Chat.ID, caller)
		default:
			if r.svc.IsAuthorized(caller) {
				r.sendText(msg.Chat.ID, unknownCommandText)
			}
		}
		return
	}

	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		switch {
		case domain.IsToggleToken(cb.Data):
			r.handleToggle(ctx, cb)
		default:
			// Unknown callback: stop the spinner and ignore
			r.answerCallback(cb.ID, "")
		}
	}
}
