package datachat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"pricingdesk/internal/config"
)

// Answer is one reply from the data space: a text attachment, a tabular
// query result, or both.
type Answer struct {
	Text    string     `json:"text,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Client converses with a workspace data space: natural-language
// questions about warehouse tables come back as tabular results. Message
// processing is asynchronous on the server, so each turn posts the
// question and polls the message until it settles.
type Client struct {
	base     string
	token    string
	http     *http.Client
	interval time.Duration
	log      *zap.SugaredLogger
}

// NewClient builds the data chat client. Returns nil when no data space
// is configured; the feature is optional.
func NewClient(cfg config.WarehouseConfig, log *zap.SugaredLogger) *Client {
	if cfg.DataSpace == "" {
		return nil
	}
	return &Client{
		base:     fmt.Sprintf("https://%s/api/2.0/data-spaces/%s", cfg.Host, url.PathEscape(cfg.DataSpace)),
		token:    cfg.Token,
		http:     &http.Client{Timeout: 60 * time.Second},
		interval: 2 * time.Second,
		log:      log,
	}
}

type messageRef struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

type message struct {
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Attachments []struct {
		AttachmentID string `json:"attachment_id"`
		Text         *struct {
			Content string `json:"content"`
		} `json:"text,omitempty"`
		Query *struct {
			Description string `json:"description,omitempty"`
		} `json:"query,omitempty"`
	} `json:"attachments"`
}

type queryResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"data_array"`
}

// Ask sends one question. An empty conversationID starts a new
// conversation; the returned id keys the follow-up turns.
func (c *Client) Ask(ctx context.Context, conversationID, question string) (string, *Answer, error) {
	ref, err := c.send(ctx, conversationID, question)
	if err != nil {
		return conversationID, nil, err
	}

	msg, err := c.await(ctx, ref)
	if err != nil {
		return ref.ConversationID, nil, err
	}

	answer := &Answer{}
	for _, att := range msg.Attachments {
		if att.Text != nil && answer.Text == "" {
			answer.Text = att.Text.Content
		}
		if att.Query != nil {
			result, err := c.fetchResult(ctx, ref, att.AttachmentID)
			if err != nil {
				return ref.ConversationID, nil, err
			}
			answer.Columns = result.Columns
			answer.Rows = result.Rows
			if answer.Text == "" {
				answer.Text = att.Query.Description
			}
		}
	}
	return ref.ConversationID, answer, nil
}

func (c *Client) send(ctx context.Context, conversationID, question string) (messageRef, error) {
	u := c.base + "/start-conversation"
	if conversationID != "" {
		u = fmt.Sprintf("%s/conversations/%s/messages", c.base, url.PathEscape(conversationID))
	}

	body, err := json.Marshal(map[string]string{"content": question})
	if err != nil {
		return messageRef{}, fmt.Errorf("encode question: %w", err)
	}
	var ref messageRef
	if err := c.do(ctx, http.MethodPost, u, body, &ref); err != nil {
		return messageRef{}, fmt.Errorf("send question: %w", err)
	}
	if ref.ConversationID == "" {
		ref.ConversationID = conversationID
	}
	return ref, nil
}

// await polls the message until it leaves the processing states. The
// caller's context bounds the wait.
func (c *Client) await(ctx context.Context, ref messageRef) (*message, error) {
	u := fmt.Sprintf("%s/conversations/%s/messages/%s",
		c.base, url.PathEscape(ref.ConversationID), url.PathEscape(ref.MessageID))

	for {
		var msg message
		if err := c.do(ctx, http.MethodGet, u, nil, &msg); err != nil {
			return nil, fmt.Errorf("poll message: %w", err)
		}
		switch msg.Status {
		case "COMPLETED":
			return &msg, nil
		case "FAILED", "CANCELLED":
			if msg.Error != "" {
				return nil, fmt.Errorf("message %s: %s", msg.Status, msg.Error)
			}
			return nil, fmt.Errorf("message %s", msg.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.interval):
		}
	}
}

func (c *Client) fetchResult(ctx context.Context, ref messageRef, attachmentID string) (*queryResult, error) {
	u := fmt.Sprintf("%s/conversations/%s/messages/%s/attachments/%s/query-result",
		c.base, url.PathEscape(ref.ConversationID), url.PathEscape(ref.MessageID), url.PathEscape(attachmentID))

	var result queryResult
	if err := c.do(ctx, http.MethodGet, u, nil, &result); err != nil {
		return nil, fmt.Errorf("fetch query result: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("data space %s %s: %s: %s", method, req.URL.Path, resp.Status, raw)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
