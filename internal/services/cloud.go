// Cloud189 implementation of [models.CloudClient]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWebURL  = "https://cloud.189.cn"
	defaultAuthURL = "https://open.e.189.cn"
	defaultAPIURL  = "https://api.cloud.189.cn"

	userAgent = "Mozilla/5.0 (Linux; U; Android 11; SM-G930K Build/NRD90M) Ecloud/8.6.3 Android/30 clientId/355325117317828 clientModel/SM-G930K imsi/460071114317824 clientChannelId/qq proVersion/1.0.6"
)

// CloudOpts configures a [CloudService].
type CloudOpts struct {
	WebURL    string
	AuthURL   string
	APIURL    string
	RateLimit float64 // requests per second; 0 disables pacing
	Burst     int
	Timeout   time.Duration
	Transport http.RoundTripper // nil uses http.DefaultTransport
}

// CloudOptsFromConfig maps the [shared.CloudConfig] table onto [CloudOpts].
func CloudOptsFromConfig(c shared.CloudConfig, burst int) CloudOpts {
	return CloudOpts{
		WebURL:    c.WebURL,
		AuthURL:   c.AuthURL,
		APIURL:    c.APIURL,
		RateLimit: c.RateLimit,
		Burst:     burst,
		Timeout:   c.Timeout(),
	}
}

// CloudService implements [models.CloudClient] for one Cloud189 account.
//
// Every instance owns a cookie jar, so sessions are never shared between accounts.
type CloudService struct {
	username string
	password string

	webURL  string
	authURL string
	apiURL  string

	httpClient *http.Client
	limiter    *rate.Limiter

	accessToken string
}

// NewCloudService creates a client for the given credentials. No request is made until [CloudService.Login].
func NewCloudService(username, password string, opts CloudOpts) *CloudService {
	if opts.WebURL == "" {
		opts.WebURL = defaultWebURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = defaultAuthURL
	}
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: opts.Timeout, Transport: opts.Transport}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &CloudService{
		username:   username,
		password:   password,
		webURL:     strings.TrimRight(opts.WebURL, "/"),
		authURL:    strings.TrimRight(opts.AuthURL, "/"),
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(limit, opts.Burst),
	}
}

// NewCloudFactory returns a [models.ClientFactory] producing [CloudService] instances.
func NewCloudFactory(opts CloudOpts) models.ClientFactory {
	return func(username, password string) models.CloudClient {
		return NewCloudService(username, password, opts)
	}
}

type userSignResponse struct {
	IsSign       flag  `json:"isSign"`
	NetdiskBonus int64 `json:"netdiskBonus"`
}

type familySignResponse struct {
	SignStatus flag  `json:"signStatus"`
	BonusSpace int64 `json:"bonusSpace"`
}

type familyInfo struct {
	FamilyID   json.Number `json:"familyId"`
	RemarkName string      `json:"remarkName"`
}

type familyListResponse struct {
	FamilyInfoResp []familyInfo `json:"familyInfoResp"`
}

type capacityInfo struct {
	TotalSize int64 `json:"totalSize"`
	UsedSize  int64 `json:"usedSize"`
	FreeSize  int64 `json:"freeSize"`
}

type userSizeResponse struct {
	CloudCapacityInfo  capacityInfo `json:"cloudCapacityInfo"`
	FamilyCapacityInfo capacityInfo `json:"familyCapacityInfo"`
}

// UserSign performs one personal cloud sign-in.
func (s *CloudService) UserSign(ctx context.Context) (models.SignInOutcome, error) {
	q := url.Values{}
	q.Set("rand", strconv.FormatInt(time.Now().UnixMilli(), 10))
	q.Set("clientType", "TELEANDROID")
	q.Set("version", "8.6.3")
	q.Set("model", "SM-G930K")

	var resp userSignResponse
	if err := s.getJSON(ctx, s.webURL+"/mkt/userSign.action?"+q.Encode(), nil, &resp); err != nil {
		return models.SignInOutcome{}, fmt.Errorf("%w: %w", shared.ErrSignAttempt, err)
	}
	return models.SignInOutcome{Bonus: resp.NetdiskBonus, AlreadySigned: bool(resp.IsSign)}, nil
}

// FamilyList returns the families the account belongs to.
func (s *CloudService) FamilyList(ctx context.Context) ([]models.Family, error) {
	var resp familyListResponse
	if err := s.getJSON(ctx, s.apiURL+"/open/family/manage/getFamilyList.action", s.signedHeaders(nil), &resp); err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}

	families := make([]models.Family, 0, len(resp.FamilyInfoResp))
	for _, f := range resp.FamilyInfoResp {
		families = append(families, models.Family{ID: f.FamilyID.String(), Name: f.RemarkName})
	}
	return families, nil
}

// FamilyUserSign performs one family cloud sign-in.
func (s *CloudService) FamilyUserSign(ctx context.Context, familyID string) (models.SignInOutcome, error) {
	params := map[string]string{"familyId": familyID}
	endpoint := s.apiURL + "/open/family/manage/exeFamilyUserSign.action?familyId=" + url.QueryEscape(familyID)

	var resp familySignResponse
	if err := s.getJSON(ctx, endpoint, s.signedHeaders(params), &resp); err != nil {
		return models.SignInOutcome{}, fmt.Errorf("%w: %w", shared.ErrSignAttempt, err)
	}
	return models.SignInOutcome{Bonus: resp.BonusSpace, AlreadySigned: bool(resp.SignStatus)}, nil
}

// UserSizeInfo queries personal and family capacity.
func (s *CloudService) UserSizeInfo(ctx context.Context) (models.CapacitySnapshot, error) {
	var resp userSizeResponse
	if err := s.getJSON(ctx, s.webURL+"/api/portal/getUserSizeInfo.action", nil, &resp); err != nil {
		return models.CapacitySnapshot{}, fmt.Errorf("%w: %w", shared.ErrCapacityQuery, err)
	}
	return models.CapacitySnapshot{
		PersonalTotal: resp.CloudCapacityInfo.TotalSize,
		FamilyTotal:   resp.FamilyCapacityInfo.TotalSize,
	}, nil
}

func newGet(ctx context.Context, fullURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (s *CloudService) getJSON(ctx context.Context, fullURL string, headers map[string]string, result any) error {
	req, err := newGet(ctx, fullURL)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.do(req, result)
}

func (s *CloudService) postForm(ctx context.Context, fullURL string, form url.Values, headers map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.do(req, result)
}

// do paces, sends and decodes a request. result may be nil to discard the body.
func (s *CloudService) do(req *http.Request, result any) error {
	if err := s.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req.Header.Set("Accept", "application/json;charset=UTF-8")
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %w: %s status %d", shared.ErrAPIRequest, shared.ErrServiceUnavailable, req.URL.Path, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s status %d: %s", shared.ErrAPIRequest, req.URL.Path, resp.StatusCode, truncate(body, 200))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %w", shared.ErrAPIRequest, req.URL.Path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// flag decodes the service's mixed boolean encodings: true/false, 0/1 and their string forms.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "null", "false", "0":
		*f = false
	case "true":
		*f = true
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid flag value %q", s)
		}
		*f = n != 0
	}
	return nil
}
