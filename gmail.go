package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Mailbox is the record source and outbound message collaborator. The
// pipeline depends on this interface so tests can run against fakes.
type Mailbox interface {
	FetchRecords() ([]RawRecord, error)
	AttachLabel(threadID, label string) error
	SendMessage(to, subject, body string) error
}

const defaultGmailBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

// GmailClient speaks the Gmail REST API with a bearer token. Thin I/O
// wrapper: no retry, no pagination beyond the result cap.
type GmailClient struct {
	Token      string
	BaseURL    string
	Query      string // e.g. "newer_than:1d in:inbox"
	MaxResults int
	ExcerptMax int
	HTTPClient *http.Client

	labelIDs map[string]string // name -> id, lazily populated
}

func NewGmailClient(cfg Config) *GmailClient {
	return &GmailClient{
		Token:      cfg.GmailAccessToken,
		BaseURL:    defaultGmailBaseURL,
		Query:      fmt.Sprintf("newer_than:%s in:inbox", cfg.SearchWindow),
		MaxResults: cfg.MaxResults,
		ExcerptMax: cfg.ExcerptMaxChars,
		HTTPClient: externalHTTPClient,
	}
}

type gmailMessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type gmailListResponse struct {
	Messages []gmailMessageRef `json:"messages"`
}

type gmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type gmailMessage struct {
	ID           string `json:"id"`
	ThreadID     string `json:"threadId"`
	Snippet      string `json:"snippet"`
	InternalDate string `json:"internalDate"` // unix millis as string
	Payload      struct {
		Headers []gmailHeader `json:"headers"`
	} `json:"payload"`
}

// FetchRecords lists messages matching the configured window query and
// returns one RawRecord per message, correlation ids assigned in list order
// ("e1", "e2", ...).
func (g *GmailClient) FetchRecords() ([]RawRecord, error) {
	listURL := fmt.Sprintf("%s/messages?q=%s&maxResults=%d",
		g.BaseURL, url.QueryEscape(g.Query), g.MaxResults)

	var list gmailListResponse
	if err := g.getJSON(listURL, &list); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	log.Printf("gmail fetch query=%q matched=%d", g.Query, len(list.Messages))

	var records []RawRecord
	for i, ref := range list.Messages {
		msgURL := fmt.Sprintf("%s/messages/%s?format=metadata&metadataHeaders=From&metadataHeaders=Subject",
			g.BaseURL, ref.ID)
		var msg gmailMessage
		if err := g.getJSON(msgURL, &msg); err != nil {
			return nil, fmt.Errorf("fetching message %s: %w", ref.ID, err)
		}

		excerpt := strings.TrimSpace(msg.Snippet)
		if g.ExcerptMax > 0 && len(excerpt) > g.ExcerptMax {
			excerpt = excerpt[:g.ExcerptMax]
		}

		var date time.Time
		if millis, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil {
			date = time.UnixMilli(millis)
		}

		records = append(records, RawRecord{
			ID:       fmt.Sprintf("e%d", i+1),
			ThreadID: msg.ThreadID,
			Date:     date,
			From:     headerValue(msg.Payload.Headers, "From"),
			Subject:  headerValue(msg.Payload.Headers, "Subject"),
			Excerpt:  excerpt,
		})
	}
	return records, nil
}

func headerValue(headers []gmailHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

type gmailLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type gmailLabelList struct {
	Labels []gmailLabel `json:"labels"`
}

// AttachLabel adds the named label to a thread, creating the label on first
// use.
func (g *GmailClient) AttachLabel(threadID, label string) error {
	id, err := g.ensureLabel(label)
	if err != nil {
		return err
	}
	body := map[string]any{"addLabelIds": []string{id}}
	modURL := fmt.Sprintf("%s/threads/%s/modify", g.BaseURL, threadID)
	if err := g.postJSON(modURL, body, nil); err != nil {
		return fmt.Errorf("attaching label %q to thread %s: %w", label, threadID, err)
	}
	return nil
}

func (g *GmailClient) ensureLabel(name string) (string, error) {
	if id, ok := g.labelIDs[name]; ok {
		return id, nil
	}

	var list gmailLabelList
	if err := g.getJSON(g.BaseURL+"/labels", &list); err != nil {
		return "", fmt.Errorf("listing labels: %w", err)
	}
	if g.labelIDs == nil {
		g.labelIDs = make(map[string]string)
	}
	for _, l := range list.Labels {
		g.labelIDs[l.Name] = l.ID
	}
	if id, ok := g.labelIDs[name]; ok {
		return id, nil
	}

	var created gmailLabel
	if err := g.postJSON(g.BaseURL+"/labels", map[string]any{"name": name}, &created); err != nil {
		return "", fmt.Errorf("creating label %q: %w", name, err)
	}
	log.Printf("gmail label created name=%q id=%s", name, created.ID)
	g.labelIDs[name] = created.ID
	return created.ID, nil
}

// SendMessage sends a plain-text mail via the Gmail send endpoint.
func (g *GmailClient) SendMessage(to, subject, body string) error {
	rfc822 := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		to, subject, body)
	payload := map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(rfc822)),
	}
	if err := g.postJSON(g.BaseURL+"/messages/send", payload, nil); err != nil {
		return fmt.Errorf("sending message to %s: %w", to, err)
	}
	return nil
}

func (g *GmailClient) getJSON(apiURL string, out any) error {
	req, err := http.NewRequest("GET", apiURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return g.do(req, out)
}

func (g *GmailClient) postJSON(apiURL string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequest("POST", apiURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *GmailClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+g.Token)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gmail api status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
