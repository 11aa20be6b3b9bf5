package services

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cloudsign/internal/shared"
)

const (
	appKey        = "cloud"
	accessAppKey  = "600100422"
	loginRedirect = "https://cloud.189.cn/web/redirect.html?returnURL=/main.action"
)

// resultCode accepts the auth server's numeric and string result codes.
type resultCode string

func (r *resultCode) UnmarshalJSON(data []byte) error {
	*r = resultCode(strings.Trim(strings.TrimSpace(string(data)), `"`))
	return nil
}

func (r resultCode) ok() bool { return r == "0" }

type appConfResponse struct {
	Result resultCode `json:"result"`
	Msg    string     `json:"msg"`
	Data   struct {
		ReturnURL string `json:"returnUrl"`
		ParamID   string `json:"paramId"`
	} `json:"data"`
}

type encryptConfResponse struct {
	Result resultCode `json:"result"`
	Data   struct {
		PubKey string `json:"pubKey"`
		Pre    string `json:"pre"`
	} `json:"data"`
}

type loginSubmitResponse struct {
	Result resultCode `json:"result"`
	Msg    string     `json:"msg"`
	ToURL  string     `json:"toUrl"`
}

type briefInfoResponse struct {
	SessionKey string `json:"sessionKey"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// loginContext carries the values the auth server hands out on the redirect to its login page.
type loginContext struct {
	lt      string
	reqID   string
	referer string
}

// Login signs in with the account password and establishes the web and API sessions.
func (s *CloudService) Login(ctx context.Context) error {
	if s.username == "" || s.password == "" {
		return fmt.Errorf("%w: %w", shared.ErrLoginFailed, shared.ErrMissingCredentials)
	}

	lc, err := s.loginPage(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrLoginFailed, err)
	}

	headers := map[string]string{"lt": lc.lt, "reqId": lc.reqID, "REQID": lc.reqID, "Referer": lc.referer}

	var conf appConfResponse
	form := url.Values{"version": {"2.0"}, "appKey": {appKey}}
	if err := s.postForm(ctx, s.authURL+"/api/logbox/oauth2/appConf.do", form, headers, &conf); err != nil {
		return fmt.Errorf("%w: app config: %w", shared.ErrLoginFailed, err)
	}
	if !conf.Result.ok() {
		return fmt.Errorf("%w: app config: %s", shared.ErrLoginFailed, conf.Msg)
	}

	var enc encryptConfResponse
	if err := s.postForm(ctx, s.authURL+"/api/logbox/config/encryptConf.do", url.Values{"appId": {appKey}}, headers, &enc); err != nil {
		return fmt.Errorf("%w: encrypt config: %w", shared.ErrLoginFailed, err)
	}
	if !enc.Result.ok() {
		return fmt.Errorf("%w: encrypt config result %s", shared.ErrLoginFailed, enc.Result)
	}

	user, err := encryptCredential(enc.Data.PubKey, enc.Data.Pre, s.username)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrLoginFailed, err)
	}
	pass, err := encryptCredential(enc.Data.PubKey, enc.Data.Pre, s.password)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrLoginFailed, err)
	}

	submit := url.Values{
		"appKey":       {appKey},
		"accountType":  {"01"},
		"userName":     {user},
		"password":     {pass},
		"validateCode": {""},
		"captchaToken": {""},
		"returnUrl":    {conf.Data.ReturnURL},
		"mailSuffix":   {"@189.cn"},
		"dynamicCheck": {"FALSE"},
		"clientType":   {"1"},
		"cb_SaveName":  {"1"},
		"isOauth2":     {"false"},
		"state":        {""},
		"paramId":      {conf.Data.ParamID},
	}

	var result loginSubmitResponse
	if err := s.postForm(ctx, s.authURL+"/api/logbox/oauth2/loginSubmit.do", submit, headers, &result); err != nil {
		return fmt.Errorf("%w: submit: %w", shared.ErrLoginFailed, err)
	}
	if !result.Result.ok() || result.ToURL == "" {
		return fmt.Errorf("%w: %s", shared.ErrLoginFailed, result.Msg)
	}

	// Following toUrl sets the web session cookies.
	if err := s.getJSON(ctx, result.ToURL, nil, nil); err != nil {
		return fmt.Errorf("%w: session redirect: %w", shared.ErrLoginFailed, err)
	}

	if err := s.fetchAccessToken(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrLoginFailed, err)
	}
	return nil
}

// loginPage follows the portal redirect to the auth server and extracts lt and reqId from the final URL.
func (s *CloudService) loginPage(ctx context.Context) (*loginContext, error) {
	q := url.Values{"redirectURL": {loginRedirect}}
	startURL := s.webURL + "/api/portal/loginUrl.action?" + q.Encode()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := newGet(ctx, startURL)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	resp.Body.Close()

	final := resp.Request.URL
	lc := &loginContext{
		lt:      final.Query().Get("lt"),
		reqID:   final.Query().Get("reqId"),
		referer: final.String(),
	}
	if lc.lt == "" || lc.reqID == "" {
		return nil, fmt.Errorf("%w: login page did not provide lt/reqId", shared.ErrAPIRequest)
	}
	return lc, nil
}

// fetchAccessToken exchanges the web session key for an API access token used by family endpoints.
func (s *CloudService) fetchAccessToken(ctx context.Context) error {
	var brief briefInfoResponse
	if err := s.getJSON(ctx, s.webURL+"/api/portal/v2/getUserBriefInfo.action", nil, &brief); err != nil {
		return fmt.Errorf("session info: %w", err)
	}
	if brief.SessionKey == "" {
		return fmt.Errorf("%w: empty session key", shared.ErrAPIRequest)
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	headers := map[string]string{
		"AppKey":    accessAppKey,
		"Timestamp": ts,
		"Sign-Type": "1",
		"Signature": signature(map[string]string{"AppKey": accessAppKey, "Timestamp": ts, "sessionKey": brief.SessionKey}),
	}

	var token accessTokenResponse
	endpoint := s.apiURL + "/open/oauth2/getAccessTokenBySsKey.action?sessionKey=" + url.QueryEscape(brief.SessionKey)
	if err := s.getJSON(ctx, endpoint, headers, &token); err != nil {
		return fmt.Errorf("access token: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrAPIRequest)
	}
	s.accessToken = token.AccessToken
	return nil
}

// signedHeaders returns the AccessToken signature headers for an API call with the given query params.
func (s *CloudService) signedHeaders(params map[string]string) map[string]string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signed := map[string]string{"AccessToken": s.accessToken, "Timestamp": ts}
	for k, v := range params {
		signed[k] = v
	}
	return map[string]string{
		"Accesstoken": s.accessToken,
		"Timestamp":   ts,
		"Sign-Type":   "1",
		"Signature":   signature(signed),
	}
}

// signature is the hex MD5 of the params sorted by key and joined as k=v&k=v.
func signature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := md5.Sum([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(sum[:])
}

// encryptCredential RSA-encrypts value with the server's base64 public key and prefixes it with pre.
func encryptCredential(pubKey, pre, value string) (string, error) {
	block, _ := pem.Decode([]byte("-----BEGIN PUBLIC KEY-----\n" + pubKey + "\n-----END PUBLIC KEY-----"))
	if block == nil {
		return "", fmt.Errorf("%w: invalid public key", shared.ErrAPIRequest)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("%w: public key is not RSA", shared.ErrAPIRequest)
	}

	out, err := rsa.EncryptPKCS1v15(rand.Reader, key, []byte(value))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credential: %w", err)
	}
	return pre + hex.EncodeToString(out), nil
}
