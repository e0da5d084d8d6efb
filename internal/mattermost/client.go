// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

const botUsername = "HR Portal"

// UserLookup resolves request owners for message text.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	portalURL  string
	enabled    bool
	httpClient *http.Client
	users      UserLookup
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		portalURL:  strings.TrimRight(cfg.PortalURL, "/"),
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.Component("mattermost"),
	}
}

// SetUserLookup lets the client resolve owner names for events that only carry an ID.
func (c *Client) SetUserLookup(users UserLookup) {
	c.users = users
}

// SetHTTPClient replaces the HTTP client used for webhook calls.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback  string  `json:"fallback,omitempty"`
	Color     string  `json:"color,omitempty"`
	Pretext   string  `json:"pretext,omitempty"`
	Title     string  `json:"title,omitempty"`
	TitleLink string  `json:"title_link,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = botUsername
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// SendSimpleMessage sends a simple text message.
func (c *Client) SendSimpleMessage(ctx context.Context, text string) error {
	return c.SendMessage(ctx, &Message{Text: text})
}

// RequestSubmitted announces a new request to approvers.
func (c *Client) RequestSubmitted(ctx context.Context, ev requests.Event) error {
	if !c.enabled {
		return nil
	}

	owner := c.ownerName(ctx, ev)
	return c.SendMessage(ctx, &Message{
		Attachments: []Attachment{{
			Fallback:  fmt.Sprintf("New %s request from %s", kindLabel(ev.Kind), owner),
			Color:     "#F0AD4E",
			Pretext:   fmt.Sprintf("📝 New %s request awaiting approval", kindLabel(ev.Kind)),
			Title:     fmt.Sprintf("%s #%d", titleCase(kindLabel(ev.Kind)), ev.RequestID),
			TitleLink: c.requestLink(ev.Kind),
			Fields: []Field{
				{Short: true, Title: "Employee", Value: owner},
				{Short: true, Title: "Details", Value: ev.Summary},
			},
		}},
	})
}

// RequestDecided reports the outcome of a decision.
func (c *Client) RequestDecided(ctx context.Context, ev requests.Event) error {
	if !c.enabled {
		return nil
	}

	fields := []Field{
		{Short: true, Title: "Employee", Value: c.ownerName(ctx, ev)},
		{Short: true, Title: "Status", Value: string(ev.Status)},
		{Short: false, Title: "Details", Value: ev.Summary},
	}
	if ev.Comment != "" {
		fields = append(fields, Field{Title: "Comment", Value: ev.Comment})
	}

	return c.SendMessage(ctx, &Message{
		Attachments: []Attachment{{
			Fallback:  fmt.Sprintf("%s request #%d %s", titleCase(kindLabel(ev.Kind)), ev.RequestID, ev.Status),
			Color:     statusColor(ev.Status),
			Title:     fmt.Sprintf("%s #%d %s", titleCase(kindLabel(ev.Kind)), ev.RequestID, strings.ToLower(string(ev.Status))),
			TitleLink: c.requestLink(ev.Kind),
			Fields:    fields,
		}},
	})
}

// PendingItem is one undecided request in a reminder.
type PendingItem struct {
	Kind        models.RequestKind
	RequestID   uint
	Owner       string
	Manager     string
	Summary     string
	SubmittedAt time.Time
}

// SendPendingReminder posts the list of requests still waiting for a decision.
func (c *Client) SendPendingReminder(ctx context.Context, items []PendingItem, now time.Time) error {
	if len(items) == 0 {
		c.log.Debug().Msg("No pending requests, skipping reminder")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### 📋 Pending Approvals\n\nThere are **%d** requests waiting for a decision:\n\n", len(items))

	for _, item := range items {
		age := now.Sub(item.SubmittedAt)
		ageStr := fmt.Sprintf("%.1f hours", age.Hours())
		if age.Hours() > 24 {
			ageStr = fmt.Sprintf("%.1f days", age.Hours()/24)
		}

		icon := "•"
		if age.Hours() > 72 {
			icon = "⚠️"
		}

		approver := "admin"
		if item.Manager != "" {
			approver = item.Manager
		}

		fmt.Fprintf(&b, "%s %s #%d by %s: %s (approver: %s, %s old)\n",
			icon, titleCase(kindLabel(item.Kind)), item.RequestID, item.Owner, item.Summary, approver, ageStr)
	}

	if c.portalURL != "" {
		fmt.Fprintf(&b, "\n[Open approvals](%s/approvals)", c.portalURL)
	}

	return c.SendMessage(ctx, &Message{Text: b.String()})
}

func (c *Client) ownerName(ctx context.Context, ev requests.Event) string {
	if ev.Owner != nil && ev.Owner.FullName != "" {
		return ev.Owner.FullName
	}
	if c.users != nil {
		u, err := c.users.GetByID(ctx, ev.OwnerID)
		if err == nil {
			return u.FullName
		}
		c.log.Debug().Err(err).Uint("user_id", ev.OwnerID).Msg("Could not resolve request owner")
	}
	return fmt.Sprintf("user #%d", ev.OwnerID)
}

func (c *Client) requestLink(kind models.RequestKind) string {
	if c.portalURL == "" {
		return ""
	}
	if kind == models.KindOvertime {
		return c.portalURL + "/overtime"
	}
	return c.portalURL + "/leaves"
}

func kindLabel(kind models.RequestKind) string {
	if kind == models.KindOvertime {
		return "overtime"
	}
	return "leave"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func statusColor(status models.RequestStatus) string {
	switch status {
	case models.StatusApproved:
		return "#5CB85C"
	case models.StatusRejected:
		return "#D9534F"
	}
	return "#777777"
}
