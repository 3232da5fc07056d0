package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/signal"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotifySignal NotificationType = "signal"
	NotifyError  NotificationType = "error"
	NotifyInfo   NotificationType = "info"
)

// Notification represents a notification message
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Pair      string
	Price     float64
	Timestamp time.Time
	Fields    []Field
}

// Field is one labeled value in a rich notification.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Notifier interface for different notification providers
type Notifier interface {
	Send(notification *Notification) error
	Name() string
	IsEnabled() bool
}

// Manager fans notifications out to every enabled provider.
type Manager struct {
	notifiers []Notifier
	enabled   bool
	logger    zerolog.Logger
}

// NewManager creates a new notification manager
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		notifiers: make([]Notifier, 0),
		enabled:   true,
		logger:    logger.With().Str("component", "notifications").Logger(),
	}
}

// AddNotifier adds a notification provider
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Send sends a notification to all enabled providers. Provider failures are
// logged and the last one is returned after the fan-out completes.
func (m *Manager) Send(notification *Notification) error {
	if !m.enabled {
		return nil
	}

	var lastErr error
	for _, n := range m.notifiers {
		if !n.IsEnabled() {
			continue
		}
		if err := n.Send(notification); err != nil {
			m.logger.Error().Err(err).Str("provider", n.Name()).Msg("notification failed")
			lastErr = err
		}
	}
	return lastErr
}

// SendSignal formats and sends a generated trading signal.
func (m *Manager) SendSignal(sig *signal.Signal) error {
	emoji := "🟢"
	if sig.Direction == market.DirectionSell {
		emoji = "🔴"
	}

	var tps []string
	for i, tp := range sig.TakeProfits {
		tps = append(tps, fmt.Sprintf("TP%d: %.2f (%s, %.0f%%)", i+1, tp.Price, tp.Kind, tp.Percentage))
	}
	var confs []string
	for _, c := range sig.Confirmations {
		confs = append(confs, strings.ReplaceAll(string(c), "_", " "))
	}

	fields := []Field{
		{Name: "Entry", Value: fmt.Sprintf("%.2f (%s)", sig.Entry, sig.EntryReason), Inline: true},
		{Name: "Stop Loss", Value: fmt.Sprintf("%.2f (%s)", sig.StopLoss, sig.StopReason), Inline: true},
		{Name: "Position", Value: fmt.Sprintf("%.2f lots", sig.Position.Lots), Inline: true},
		{Name: "Take Profits", Value: strings.Join(tps, "\n")},
		{Name: "Confidence", Value: fmt.Sprintf("%.0f%% (%s)", sig.Confidence*100, sig.Quality), Inline: true},
		{Name: "Weighted R:R", Value: fmt.Sprintf("%.2f", sig.RiskReward.WeightedRR), Inline: true},
		{Name: "Confirmations", Value: strings.Join(confs, "\n")},
	}
	if sig.InKillZone {
		fields = append(fields, Field{Name: "Kill Zone", Value: sig.KillZoneName, Inline: true})
	}

	return m.Send(&Notification{
		Type:      NotifySignal,
		Title:     fmt.Sprintf("%s %s Signal: %s", emoji, sig.Direction, sig.Pair),
		Message:   fmt.Sprintf("%s alignment, %s primary trend", sig.Alignment, sig.PrimaryTrend),
		Pair:      sig.Pair,
		Price:     sig.Entry,
		Timestamp: sig.Timestamp,
		Fields:    fields,
	})
}

// SendError sends an error notification
func (m *Manager) SendError(title, message string) error {
	return m.Send(&Notification{
		Type:      NotifyError,
		Title:     fmt.Sprintf("⚠️ %s", title),
		Message:   message,
		Timestamp: time.Now(),
	})
}

// SendInfo sends an informational notification
func (m *Manager) SendInfo(title, message string) error {
	return m.Send(&Notification{
		Type:      NotifyInfo,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// =============================================================================
// TELEGRAM NOTIFIER
// =============================================================================

// TelegramNotifier sends notifications via Telegram
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	client   *http.Client
}

// TelegramConfig holds Telegram configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: config.BotToken,
		chatID:   config.ChatID,
		enabled:  config.Enabled && config.BotToken != "" && config.ChatID != "",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

func (t *TelegramNotifier) IsEnabled() bool {
	return t.enabled
}

func (t *TelegramNotifier) Send(notification *Notification) error {
	if !t.enabled {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n%s", notification.Title, notification.Message)
	for _, f := range notification.Fields {
		fmt.Fprintf(&b, "\n\n*%s*\n%s", f.Name, f.Value)
	}

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       b.String(),
		"parse_mode": "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// =============================================================================
// DISCORD NOTIFIER
// =============================================================================

// DiscordNotifier sends notifications via Discord webhook
type DiscordNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// DiscordConfig holds Discord configuration
type DiscordConfig struct {
	WebhookURL string
	Enabled    bool
}

// NewDiscordNotifier creates a new Discord notifier
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: config.WebhookURL,
		enabled:    config.Enabled && config.WebhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordNotifier) Name() string {
	return "discord"
}

func (d *DiscordNotifier) IsEnabled() bool {
	return d.enabled
}

func (d *DiscordNotifier) Send(notification *Notification) error {
	if !d.enabled {
		return nil
	}

	color := 0x00FF00
	if notification.Type == NotifyError {
		color = 0xFF0000
	}

	embed := map[string]interface{}{
		"title":       notification.Title,
		"description": notification.Message,
		"color":       color,
		"timestamp":   notification.Timestamp.Format(time.RFC3339),
	}

	if len(notification.Fields) > 0 {
		fields := make([]map[string]interface{}, 0, len(notification.Fields))
		for _, f := range notification.Fields {
			fields = append(fields, map[string]interface{}{
				"name": f.Name, "value": f.Value, "inline": f.Inline,
			})
		}
		embed["fields"] = fields
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	resp, err := d.client.Post(d.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("discord API returned status %d", resp.StatusCode)
	}

	return nil
}
