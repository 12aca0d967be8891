package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pantry-chef/internal/app"
	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/config"
	"pantry-chef/internal/logging"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recognition"
)

const (
	// WebhookPath is where the bot receives updates.
	WebhookPath = "/telegram/webhook"

	maxMatches     = 3
	maxPhotoBytes  = 5 << 20
	processTimeout = time.Minute
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot answers Telegram messages with recipe matches.
type Bot struct {
	api        API
	app        *app.App
	allowed    map[int64]bool
	httpClient *http.Client
	wg         sync.WaitGroup
}

// Connect authorizes against the Bot API and registers the webhook.
func Connect(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logging.Info().Str("account", bot.Self.UserName).Msg("Authorized on Telegram")

	wh, err := tgbotapi.NewWebhook(cfg.WebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.WebhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.WebhookURL, err)
	}
	logging.Info().Str("response", resp.Description).Msg("Webhook set")
	return bot, nil
}

// NewBot creates a bot. An empty allow-list admits every user.
func NewBot(api API, a *app.App, allowedUserIDs []int64) *Bot {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &Bot{
		api:        api,
		app:        a,
		allowed:    allowed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ServeHTTP acknowledges a webhook update and processes it in the background.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Error parsing update")
		metrics.TelegramUpdates.WithLabelValues("invalid").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), processTimeout)
		defer cancel()
		b.HandleUpdate(ctx, update)
	}()
}

// Wait blocks until background updates have been processed.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate processes one update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		metrics.TelegramUpdates.WithLabelValues("ignored").Inc()
		return
	}
	if len(b.allowed) > 0 && !b.allowed[msg.From.ID] {
		logging.Warn().Int64("user_id", msg.From.ID).Str("username", msg.From.UserName).Msg("Unauthorized access attempt")
		metrics.TelegramUpdates.WithLabelValues("unauthorized").Inc()
		return
	}

	switch {
	case msg.IsCommand():
		metrics.TelegramUpdates.WithLabelValues("command").Inc()
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		metrics.TelegramUpdates.WithLabelValues("photo").Inc()
		b.handlePhoto(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		metrics.TelegramUpdates.WithLabelValues("text").Inc()
		b.handleIngredients(ctx, msg.Chat.ID, msg.Text)
	default:
		metrics.TelegramUpdates.WithLabelValues("ignored").Inc()
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, helpText)
	case "suggest":
		suggestions, err := b.app.Suggestions(ctx)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, formatMatches("💡 *Suggestions for you*", suggestions, len(suggestions)))
	case "recipe":
		if len(args) != 1 {
			b.reply(chatID, "Usage: /recipe <id>")
			return
		}
		rec, err := b.app.Recipe(args[0])
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, formatRecipe(rec))
	case "fav":
		if len(args) != 1 {
			b.reply(chatID, "Usage: /fav <id>")
			return
		}
		favorites, err := b.app.ToggleFavorite(ctx, args[0])
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, formatFavoriteToggle(args[0], favorites))
	case "rate":
		if len(args) != 2 {
			b.reply(chatID, "Usage: /rate <id> <1-5>")
			return
		}
		rating, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			b.reply(chatID, "Usage: /rate <id> <1-5>")
			return
		}
		ratings, err := b.app.Rate(ctx, app.RateRequest{RecipeID: args[0], Rating: &rating})
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, formatRatingSaved(args[0], ratings))
	case "usage":
		b.handleUsage(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Send /help for the list of commands.")
	}
}

func (b *Bot) handleIngredients(ctx context.Context, chatID int64, text string) {
	ingredients := app.ParseIngredients(text)
	results, err := b.app.Search(ctx, app.SearchRequest{Ingredients: ingredients})
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, formatMatches("🍳 *Recipes you can cook*", results, maxMatches))
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	// Telegram sends several sizes, largest last.
	photo := msg.Photo[len(msg.Photo)-1]
	image, err := b.download(ctx, photo.FileID)
	if err != nil {
		logging.Err(err).Str("file_id", photo.FileID).Msg("Failed to download photo")
		b.reply(msg.Chat.ID, "❌ Could not download the photo. Please try again.")
		return
	}

	preds, err := b.app.AnalyzeImage(ctx, image)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	labels := recognition.Labels(preds)
	if len(labels) == 0 {
		b.reply(msg.Chat.ID, "🤔 I could not recognize any ingredients in that photo.")
		return
	}

	// Captions add typed ingredients to the recognized ones.
	resp, err := b.app.Generate(ctx, app.GenerateRequest{
		Ingredients:           app.ParseIngredients(msg.Caption),
		RecognizedIngredients: labels,
	})
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	header := "📷 *I see:* " + escape(strings.Join(labels, ", "))
	b.reply(msg.Chat.ID, formatMatches(header, resp.Matches, maxMatches))
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPhotoBytes {
		return nil, errors.New("photo exceeds the 5 MiB limit")
	}
	return data, nil
}

func (b *Bot) handleUsage(ctx context.Context, chatID int64) {
	usage, err := b.app.RecognitionUsage(ctx, 7)
	if err != nil {
		logging.Err(err).Msg("Failed to fetch recognition usage")
		b.reply(chatID, "❌ Error fetching usage.")
		return
	}
	var storePath string
	if cfg := b.app.Config(); cfg != nil {
		storePath = cfg.Store.Path
	}
	b.reply(chatID, formatUsage(usage, metrics.GetSysHealth(storePath)))
}

func (b *Bot) replyError(chatID int64, err error) {
	if appErr, ok := apperrors.As(err); ok && appErr.Code != apperrors.CodeInternal {
		b.reply(chatID, "❌ "+escape(appErr.Message))
		return
	}
	logging.Err(err).Int64("chat_id", chatID).Msg("Telegram request failed")
	b.reply(chatID, "❌ Something went wrong. Please try again later.")
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		logging.Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
