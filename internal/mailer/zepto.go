package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Zepto sends mail through the ZeptoMail HTTP API. All fields come from
// config at startup; the zero value is unusable.
type Zepto struct {
	APIURL   string
	APIKey   string
	From     string
	FromName string
	Client   *http.Client
}

func NewZepto(apiURL, apiKey, from, fromName string) *Zepto {
	return &Zepto{
		APIURL:   apiURL,
		APIKey:   apiKey,
		From:     from,
		FromName: fromName,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HTMLBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type toRecipient struct {
	Email emailAddress `json:"email_address"`
}

// Verify checks that the transport is configured and the API endpoint is
// reachable. The response status is deliberately ignored: the API answers
// method-not-allowed to a bare GET, which still proves connectivity.
func (z *Zepto) Verify(ctx context.Context) error {
	if z.APIURL == "" || z.APIKey == "" || z.From == "" {
		return errors.New("mailer not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, z.APIURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", z.APIKey)

	resp, err := z.Client.Do(req)
	if err != nil {
		return fmt.Errorf("mail endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

func (z *Zepto) Send(ctx context.Context, to, name, subject, html string) error {
	payload := emailRequest{
		From: emailAddress{Address: z.From, Name: z.FromName},
		To: []toRecipient{
			{Email: emailAddress{Address: to, Name: name}},
		},
		Subject:  subject,
		HTMLBody: html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", z.APIKey)

	resp, err := z.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail API error: %s", resp.Status)
	}
	return nil
}
