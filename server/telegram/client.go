// Package telegram implements the Bot API transport: a long-poll client
// and the owner-only bot loop that turns messages into calendar actions.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const telegramAPIBase = "https://api.telegram.org"

// longPollTimeout is the getUpdates hold time in seconds.
const longPollTimeout = 50

// Update is one item from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming Telegram message, limited to the fields the bot
// reads.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	Voice     *Voice `json:"voice"`
}

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// Voice describes a voice note attachment.
type Voice struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Duration     int    `json:"duration"`
}

// File is the getFile result used to build a download path.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// Client is a minimal Bot API client. Outbound calls are paced with a
// shared limiter to stay under the Bot API per-chat rate limits.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a Bot API client for the given token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		// Long polls hold the connection open, so the client timeout
		// has to exceed the poll hold time.
		httpClient: &http.Client{Timeout: (longPollTimeout + 10) * time.Second},
		baseURL:    telegramAPIBase,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) methodURL(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// GetUpdates long-polls for updates after the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(longPollTimeout))
	form.Set("allowed_updates", `["message"]`)

	var updates []Update
	if err := c.call(ctx, "getUpdates", form, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a plain text message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	return c.call(ctx, "sendMessage", form, nil)
}

// SendVoice uploads an OGG/Opus voice note.
func (c *Client) SendVoice(ctx context.Context, chatID int64, voice []byte, filename string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return errors.Wrap(err, "write chat_id")
	}
	part, err := writer.CreateFormFile("voice", filename)
	if err != nil {
		return errors.Wrap(err, "create voice part")
	}
	if _, err := part.Write(voice); err != nil {
		return errors.Wrap(err, "write voice data")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendVoice"), &body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, nil)
}

// GetFile resolves a file_id to a download path.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	form := url.Values{}
	form.Set("file_id", fileID)

	var file File
	if err := c.call(ctx, "getFile", form, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DownloadFile fetches a file's content by the path from GetFile.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := c.baseURL + "/file/bot" + c.token + "/" + filePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download file: status=%d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) call(ctx context.Context, method string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewBufferString(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if !api.OK {
		return errors.Errorf("telegram API: %s", api.Description)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(api.Result, out); err != nil {
		return errors.Wrap(err, "decode result")
	}
	return nil
}
