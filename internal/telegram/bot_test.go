package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/app"
	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/config"
	"pantry-chef/internal/matching"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recipe"
	"pantry-chef/internal/recognition"
	"pantry-chef/internal/userstate"
)

// fakeAPI records outgoing messages.
type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	fileURL string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("no file")
	}
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type stubClassifier struct {
	preds []recognition.Prediction
	err   error
	got   []byte
}

func (s *stubClassifier) Classify(_ context.Context, image []byte) ([]recognition.Prediction, error) {
	s.got = image
	return s.preds, s.err
}

func newTestBot(t *testing.T, classifier recognition.Classifier, allowed ...int64) (*Bot, *fakeAPI) {
	t.Helper()
	catalog, err := recipe.LoadCatalog("")
	require.NoError(t, err)
	a := app.NewApp(catalog, userstate.NewService(userstate.NewMemoryStore(), catalog), classifier, nil, config.Default())
	api := &fakeAPI{}
	return NewBot(api, a, allowed), api
}

func textMessage(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "cook"},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func TestIngredientsMessage(t *testing.T) {
	bot, api := newTestBot(t, &stubClassifier{})
	bot.HandleUpdate(context.Background(), textMessage(7, "chickpeas, coconut milk\nonion"))

	msg := api.last(t)
	assert.Equal(t, int64(7), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "*Coconut Chickpea Curry*")
	assert.Contains(t, msg.Text, "/recipe chickpea-curry")
	assert.LessOrEqual(t, strings.Count(msg.Text, "/recipe "), maxMatches)
}

func TestNoMatches(t *testing.T) {
	bot, api := newTestBot(t, &stubClassifier{})
	bot.HandleUpdate(context.Background(), textMessage(7, "unobtainium"))
	assert.Contains(t, api.last(t).Text, "No matching recipes")
}

func TestAllowList(t *testing.T) {
	bot, api := newTestBot(t, &stubClassifier{}, 42)
	bot.HandleUpdate(context.Background(), textMessage(7, "egg"))
	assert.Empty(t, api.sent)

	bot.HandleUpdate(context.Background(), textMessage(42, "egg"))
	assert.Len(t, api.sent, 1)
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	bot, api := newTestBot(t, &stubClassifier{})

	t.Run("Help", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/start"))
		assert.Contains(t, api.last(t).Text, "/suggest")
	})

	t.Run("Recipe", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/recipe greek-salad"))
		text := api.last(t).Text
		assert.Contains(t, text, "Greek")
		assert.Contains(t, text, "kalamata olives")

		bot.HandleUpdate(ctx, textMessage(1, "/recipe nope"))
		assert.Contains(t, api.last(t).Text, "Recipe not found")

		bot.HandleUpdate(ctx, textMessage(1, "/recipe"))
		assert.Contains(t, api.last(t).Text, "Usage: /recipe")
	})

	t.Run("FavoriteToggle", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/fav lentil-soup"))
		assert.Contains(t, api.last(t).Text, "Saved")

		bot.HandleUpdate(ctx, textMessage(1, "/fav lentil-soup"))
		assert.Contains(t, api.last(t).Text, "Removed")
	})

	t.Run("Rate", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/rate shakshuka 3.5"))
		assert.Contains(t, api.last(t).Text, "★★★ (3.5/5)")

		bot.HandleUpdate(ctx, textMessage(1, "/rate shakshuka 9"))
		assert.Contains(t, api.last(t).Text, "★★★★★ (5/5)")

		bot.HandleUpdate(ctx, textMessage(1, "/rate shakshuka great"))
		assert.Contains(t, api.last(t).Text, "Usage: /rate")
	})

	t.Run("Suggest", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/suggest"))
		assert.Contains(t, api.last(t).Text, "/recipe shakshuka")
	})

	t.Run("Usage", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/usage"))
		text := api.last(t).Text
		assert.Contains(t, text, "No data yet")
		assert.Contains(t, text, "Goroutines")
	})

	t.Run("Unknown", func(t *testing.T) {
		bot.HandleUpdate(ctx, textMessage(1, "/plan"))
		assert.Contains(t, api.last(t).Text, "Unknown command")
	})
}

func TestPhoto(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("photo-bytes"))
	}))
	defer files.Close()

	photoUpdate := func() tgbotapi.Update {
		u := textMessage(3, "")
		u.Message.Caption = "avocado"
		u.Message.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}
		return u
	}

	t.Run("RecognizesAndSearches", func(t *testing.T) {
		classifier := &stubClassifier{preds: []recognition.Prediction{{Label: "black_beans", Confidence: 0.7}}}
		bot, api := newTestBot(t, classifier)
		api.fileURL = files.URL

		bot.HandleUpdate(context.Background(), photoUpdate())

		assert.Equal(t, []byte("photo-bytes"), classifier.got)
		text := api.last(t).Text
		assert.Contains(t, text, "black beans")
		assert.Contains(t, text, "/recipe black-bean-tacos")
	})

	t.Run("NotConfigured", func(t *testing.T) {
		classifier := &stubClassifier{err: apperrors.Wrap(apperrors.CodeNotConfigured,
			"HF_API_TOKEN is not configured.", recognition.ErrNotConfigured)}
		bot, api := newTestBot(t, classifier)
		api.fileURL = files.URL

		bot.HandleUpdate(context.Background(), photoUpdate())
		assert.Contains(t, api.last(t).Text, "HF\\_API\\_TOKEN is not configured")
	})

	t.Run("DownloadFails", func(t *testing.T) {
		classifier := &stubClassifier{}
		bot, api := newTestBot(t, classifier)

		bot.HandleUpdate(context.Background(), photoUpdate())
		assert.Contains(t, api.last(t).Text, "Could not download")
		assert.Nil(t, classifier.got)
	})
}

func TestWebhook(t *testing.T) {
	bot, api := newTestBot(t, &stubClassifier{})

	req := httptest.NewRequest(http.MethodPost, WebhookPath,
		strings.NewReader(`{"update_id":5,"message":{"message_id":1,"from":{"id":9},"chat":{"id":9},"text":"egg, spinach"}}`))
	w := httptest.NewRecorder()
	bot.ServeHTTP(w, req)
	bot.Wait()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), api.last(t).ChatID)

	w = httptest.NewRecorder()
	bot.ServeHTTP(w, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFormatMatches(t *testing.T) {
	r := recipe.Recipe{ID: "pasta_1", Title: "Pasta *Deluxe*", Cuisine: "Italian", CookingTime: 20, Difficulty: recipe.DifficultyEasy}
	res := matching.NewResult(r, 0.666)
	res.MissingIngredients = []string{"basil"}

	out := formatMatches("header", []matching.Result{res, res, res, res}, 3)
	assert.Equal(t, 3, strings.Count(out, "Pasta \\*Deluxe\\*"))
	assert.Contains(t, out, "(67% match)")
	assert.Contains(t, out, "Missing: basil")
	assert.Contains(t, out, "/recipe pasta\\_1")
}

func TestFormatUsage(t *testing.T) {
	out := formatUsage([]metrics.DailyUsage{{Date: "2026-10-01", Calls: 4, Failures: 1, AvgLatencyMS: 250}}, metrics.SysHealth{Goroutines: 3, DataDiskSize: "1.0 KB"})
	assert.Contains(t, out, "*2026-10-01*: 4 calls (1 failed, avg 250ms)")
	assert.Contains(t, out, "Disk Data: 1.0 KB")
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "", formatQuantity(0))
	assert.Equal(t, "2", formatQuantity(2))
	assert.Equal(t, "0.5", formatQuantity(0.5))
	assert.Equal(t, "1.25", formatQuantity(1.25))
}
