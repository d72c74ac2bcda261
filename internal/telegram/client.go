// Package telegram provides a client for sending notifications via Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dealhawk/internal/models"
	"dealhawk/internal/pipeline"
	"dealhawk/internal/trends"
)

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and handles bot commands.
// It returns immediately; the goroutine stops when ctx is cancelled.
func (c *Client) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(update.Message)
				}
			}
		}
	}()
}

func (c *Client) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		c.bot.Send(reply) //nolint:errcheck
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendError sends a hunt error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	text := fmt.Sprintf("⚠️ *Hunt error*\n`%s`", escapeMarkdownV2(cycleErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notification after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Hunt recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

// SendListings sends a notification with the newly admitted listings.
func (c *Client) SendListings(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	return c.sendMarkdownV2(c.formatListings(listings))
}

// SendSummary sends the end-of-cycle digest.
func (c *Client) SendSummary(stats pipeline.CycleStats, listings []models.Listing) error {
	return c.sendMarkdownV2(c.formatSummary(stats, listings))
}

// SendNothingFound tells the chat an otherwise healthy cycle admitted nothing.
func (c *Client) SendNothingFound() error {
	return c.sendMarkdownV2("🔍 Hunt finished: no new listings this cycle")
}

// SendExpired notifies the chat about listings that lapsed this cycle
// and were removed from tracking.
func (c *Client) SendExpired(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	return c.sendMarkdownV2(c.formatExpired(listings))
}

func (c *Client) formatExpired(listings []models.Listing) string {
	message := "⏰ *Expired Listings*\n\n"

	for i, l := range listings {
		titleLink := escapeMarkdownV2(l.Title)
		if l.Link != "" {
			titleLink = fmt.Sprintf("[%s](%s)", escapeMarkdownV2(l.Title), l.Link)
		}
		message += fmt.Sprintf("%d\\. %s\n", i+1, titleLink)

		price := "N/A"
		if l.Price != nil {
			price = fmt.Sprintf("₹%.0f", *l.Price)
		}
		message += fmt.Sprintf("   💰 %s\n", escapeMarkdownV2(price))

		if l.Verdict != nil {
			message += fmt.Sprintf("   🎯 %s\n",
				escapeMarkdownV2(strings.ToUpper(string(l.Verdict.Decision))))
		}

		message += "\n"
	}

	message += fmt.Sprintf("%d listing\\(s\\) removed from tracking\n", len(listings))
	return message
}

// SendPriceMoves sends one alert per significant tracked price change.
func (c *Client) SendPriceMoves(moves []trends.Move, linkOf func(identity string) string) error {
	if len(moves) == 0 {
		return nil
	}

	message := "💹 *Price Movements*\n\n"
	for _, m := range moves {
		emoji := "📈"
		if m.Current < m.Previous {
			emoji = "📉"
		}

		title := escapeMarkdownV2(m.Title)
		if link := linkOf(m.IdentityKey); link != "" {
			title = fmt.Sprintf("[%s](%s)", title, link)
		}

		change := escapeMarkdownV2(fmt.Sprintf("%+.1f%%", m.ChangePct))
		prev := escapeMarkdownV2(fmt.Sprintf("₹%.0f", m.Previous))
		curr := escapeMarkdownV2(fmt.Sprintf("₹%.0f", m.Current))
		message += fmt.Sprintf("%s %s *%s* \\(%s → %s\\)\n", emoji, title, change, prev, curr)
	}

	return c.sendMarkdownV2(message)
}

// formatListings formats admitted listings into a Telegram MarkdownV2 message.
func (c *Client) formatListings(listings []models.Listing) string {
	message := "🚨 *New Listings*\n\n"

	dateStr := escapeMarkdownV2(listings[0].DiscoveredAt.Format("2006-01-02 15:04:05"))
	message += fmt.Sprintf("📅 Discovered: %s\n\n", dateStr)

	for i, l := range listings {
		titleLink := escapeMarkdownV2(l.Title)
		if l.Link != "" {
			titleLink = fmt.Sprintf("[%s](%s)", escapeMarkdownV2(l.Title), l.Link)
		}
		message += fmt.Sprintf("%d\\. %s\n", i+1, titleLink)

		if l.Company != "" {
			message += fmt.Sprintf("   🏷️ %s\n", escapeMarkdownV2(l.Company))
		}

		var parts []string
		if l.Price != nil {
			parts = append(parts, fmt.Sprintf("₹%.0f", *l.Price))
		}
		if l.Discount > 0 {
			parts = append(parts, fmt.Sprintf("%.0f%% off", l.Discount))
		}
		if l.Rating > 0 {
			parts = append(parts, fmt.Sprintf("%.1f/5", l.Rating))
		}
		if len(parts) > 0 {
			message += fmt.Sprintf("   💰 %s\n", escapeMarkdownV2(strings.Join(parts, " · ")))
		}

		if l.Verdict != nil {
			verdictEmoji := "🟡"
			if l.Verdict.Decision == models.DecisionAccept {
				verdictEmoji = "🟢"
			}
			message += fmt.Sprintf("   %s *%s* \\(%d%%\\): %s\n",
				verdictEmoji,
				escapeMarkdownV2(strings.ToUpper(string(l.Verdict.Decision))),
				l.Verdict.Confidence,
				escapeMarkdownV2(l.Verdict.Reason))
		}

		message += "\n"
	}

	return message
}

// formatSummary formats the cycle digest.
func (c *Client) formatSummary(stats pipeline.CycleStats, listings []models.Listing) string {
	message := "📊 *Cycle Summary*\n\n"
	message += fmt.Sprintf("Fetched: %d\n", stats.Fetched)
	message += fmt.Sprintf("Relevant: %d\n", stats.Relevant)
	message += fmt.Sprintf("Admitted: %d\n", stats.Admitted)
	message += fmt.Sprintf("Refreshed: %d\n", stats.Refreshed)
	message += fmt.Sprintf("Expired: %d\n", stats.Expired)

	var bestDiscount float64
	var ratingSum float64
	var rated int
	for _, l := range listings {
		if l.Discount > bestDiscount {
			bestDiscount = l.Discount
		}
		if l.Rating > 0 {
			ratingSum += l.Rating
			rated++
		}
	}
	if bestDiscount > 0 {
		message += escapeMarkdownV2(fmt.Sprintf("Best discount: %.0f%%", bestDiscount)) + "\n"
	}
	if rated > 0 {
		message += escapeMarkdownV2(fmt.Sprintf("Avg rating: %.1f/5", ratingSum/float64(rated))) + "\n"
	}

	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
