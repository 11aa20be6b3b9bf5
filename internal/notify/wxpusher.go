package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/cloudsign/internal/shared"
)

const (
	defaultWxPusherEndpoint = "https://wxpusher.zjiecode.com/api/send/message"

	wxContentText = 1
	wxCodeOK      = 1000
)

type wxPusherMessage struct {
	AppToken    string   `json:"appToken"`
	ContentType int      `json:"contentType"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	UIDs        []string `json:"uids"`
}

type wxPusherResponse struct {
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Success bool            `json:"success"`
	Data    wxPusherRecords `json:"data"`
}

// wxPusherRecord is the per-uid send result.
type wxPusherRecord struct {
	UID    string `json:"uid"`
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// wxPusherRecords accepts data as either a list of per-uid results or a single object.
type wxPusherRecords []wxPusherRecord

func (r *wxPusherRecords) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*r = nil
		return nil
	case data[0] == '{':
		var one wxPusherRecord
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*r = wxPusherRecords{one}
		return nil
	}

	var many []wxPusherRecord
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

// WxPusher sends messages to a single WxPusher uid.
type WxPusher struct {
	appToken string
	uid      string
	endpoint string
	client   *http.Client
}

// NewWxPusher creates the WxPusher channel.
func NewWxPusher(c shared.WxPusherConfig, transport http.RoundTripper) *WxPusher {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = defaultWxPusherEndpoint
	}
	return &WxPusher{
		appToken: c.AppToken,
		uid:      c.UID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: c.Timeout(), Transport: transport},
	}
}

func (w *WxPusher) Name() string  { return "wxpusher" }
func (w *WxPusher) Enabled() bool { return w.appToken != "" && w.uid != "" }

// Send posts a plain-text message. Delivery succeeds only when data carries at least one record
// and every record has code 1000. The top-level code is only reported in errors.
func (w *WxPusher) Send(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(wxPusherMessage{
		AppToken:    w.appToken,
		ContentType: wxContentText,
		Summary:     title,
		Content:     body,
		UIDs:        []string{w.uid},
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", shared.ErrPushTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: wxpusher status %d", shared.ErrPushTransport, resp.StatusCode)
	}

	var result wxPusherResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("%w: wxpusher: %w", shared.ErrResponseInvalid, err)
	}
	if len(result.Data) == 0 {
		return fmt.Errorf("%w: wxpusher returned no data (code %d: %s)", shared.ErrPushPayload, result.Code, result.Msg)
	}
	for _, rec := range result.Data {
		if rec.Code != wxCodeOK {
			return fmt.Errorf("%w: wxpusher data code %d: %s", shared.ErrPushPayload, rec.Code, firstNonEmpty(rec.Status, result.Msg))
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
