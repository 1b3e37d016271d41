// Package mailer sends transactional mail through a Resend-compatible HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type Attachment struct {
	Filename string
	Content  []byte
}

type Message struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// APIError is a non-2xx answer from the mail API
type APIError struct {
	Status  int
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailer: %d %s: %s", e.Status, e.Name, e.Message)
}

type Client struct {
	*http.Client // [Embedded]
	Conf         *Conf
}

func NewClient(httpClient *http.Client, conf *Conf) *Client {
	if conf.Endpoint == "" {
		conf.Endpoint = DefaultEndpoint
	}
	return &Client{Client: httpClient, Conf: conf}
}

type sendRequest struct {
	From        string           `json:"from"`
	To          []string         `json:"to"`
	Subject     string           `json:"subject"`
	HTML        string           `json:"html"`
	Attachments []sendAttachment `json:"attachments,omitempty"`
}

type sendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

// Send posts msg and returns the provider's message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", errors.New("mailer: no recipients")
	}
	payload := sendRequest{
		From:    c.Conf.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, sendAttachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	if c.Conf.TimeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.Conf.TimeoutS)*time.Second)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Conf.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Conf.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailer: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Printf("[WARN][MAILER] %v", closeErr)
		}
	}()
	resBody, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("mailer: read response: %w", err)
	}
	if res.StatusCode/100 != 2 {
		apiErr := &APIError{Status: res.StatusCode}
		if json.Unmarshal(resBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(resBody)
		}
		return "", apiErr
	}
	var ok struct {
		ID string `json:"id"`
	}
	if err = json.Unmarshal(resBody, &ok); err != nil {
		return "", fmt.Errorf("mailer: decode response: %w", err)
	}
	log.Printf("[INFO][MAILER] sent %q to %v id=%s", msg.Subject, msg.To, ok.ID)
	return ok.ID, nil
}
