package lib

import (
	"bytes"
	"cinco/src/config"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tidwall/gjson"
)

// SMSSender delivers a text message to one already-normalized number.
type SMSSender interface {
	Name() string
	SendSMS(ctx context.Context, to, message string) error
}

// CampaignSMSClient talks to the campaign SMS HTTP API.
type CampaignSMSClient struct {
	url      string
	username string
	password string
	senderID string
	client   *http.Client
}

func NewCampaignSMSClient(url, username, password, senderID string, client *http.Client) *CampaignSMSClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &CampaignSMSClient{
		url:      url,
		username: username,
		password: password,
		senderID: senderID,
		client:   client,
	}
}

func (c *CampaignSMSClient) Name() string { return "Campaign" }

type campaignSMSBody struct {
	SenderID   string   `json:"sender_id"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

func (c *CampaignSMSClient) SendSMS(ctx context.Context, to, message string) error {
	b, err := json.Marshal(&campaignSMSBody{
		SenderID:   c.senderID,
		Recipients: []string{to},
		Message:    message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := gjson.GetBytes(body, "message").String()
		if detail == "" {
			detail = http.StatusText(res.StatusCode)
		}
		return fmt.Errorf("sms api returned %d: %s", res.StatusCode, detail)
	}
	return nil
}

var smsSender SMSSender

func GetSMSSender() SMSSender {
	if smsSender != nil {
		return smsSender
	}
	if config.SMSProvider() != "campaign" {
		log.Printf("[SMS] No sender registered for provider %s\n", config.SMSProvider())
		return nil
	}
	smsSender = NewCampaignSMSClient(
		config.SMSAPIURL(),
		config.SMSAPIUsername(),
		config.SMSAPIPassword(),
		config.SMSSenderID(),
		nil,
	)
	return smsSender
}

// NewSMSSender Replace sms sender instance with custom implementation
func NewSMSSender(s SMSSender) {
	smsSender = s
}
