package main

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	allClaimedMessage = "All rewards have already been claimed."

	// claim answers are kept for errors and mails only
	maxAnswerSize = 64 << 10
)

type pair struct {
	name  string
	value string
}

var requestHeaders = []pair{
	{name: "Accept", value: "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"},
	{name: "User-Agent", value: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"},
}

var postHeaders = []pair{
	{name: "Accept", value: "application/json, text/javascript, */*; q=0.01"},
	{name: "Content-Type", value: "application/x-www-form-urlencoded; charset=UTF-8"},
	{name: "User-Agent", value: requestHeaders[1].value},
	{name: "X-Requested-With", value: "XMLHttpRequest"},
}

// ClaimTarget is what a caller asks for
type ClaimTarget struct {
	Email  string
	Server int
	ItemID string
}

// ClaimedReward summary of one successful claim
type ClaimedReward struct {
	Day      int    `json:"day"`
	ItemName string `json:"item_name"`
	// same as Day, the site gives no running total
	TotalClaimed int `json:"total_claimed"`
}

// ClaimResult is returned to the caller when there was something to claim
type ClaimResult struct {
	Email          string          `json:"email"`
	AccountInfo    string          `json:"account_info"`
	Server         int             `json:"server"`
	ClaimedRewards []ClaimedReward `json:"claimed_rewards"`
}

// DailyResult is either "everything claimed" or a ClaimResult
type DailyResult struct {
	AllClaimed bool
	Claim      *ClaimResult
}

// MarshalJSON renders the message form or the claim form
func (r DailyResult) MarshalJSON() ([]byte, error) {
	if r.AllClaimed || r.Claim == nil {
		return json.Marshal(map[string]string{"message": allClaimedMessage})
	}
	return json.Marshal(r.Claim)
}

// Session is the cookie set issued by the login shortcut. Lives for one claim.
type Session struct {
	jar http.CookieJar
}

// TheBot claims the daily reward on the event page for one target
type TheBot struct {
	site      SiteConfig
	transport http.RoundTripper

	log    zerolog.Logger
	errlog zerolog.Logger
}

// NewBot makes a bot for a single claim. A nil transport means http.DefaultTransport.
func NewBot(site SiteConfig, transport http.RoundTripper) *TheBot {
	return &TheBot{
		site:      site,
		transport: transport,
		log:       stdlog,
		errlog:    errlog,
	}
}

func (b *TheBot) bindLogger(target ClaimTarget) {
	trace := uuid.NewString()
	b.log = stdlog.With().Str("trace", trace).Str("email", target.Email).Int("server", target.Server).Logger()
	b.errlog = errlog.With().Str("trace", trace).Str("email", target.Email).Int("server", target.Server).Logger()
}

func (b *TheBot) do(ctx context.Context, sess *Session, method, uri string, body io.Reader, headers []pair) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}

	for _, h := range headers {
		req.Header.Add(h.name, h.value)
	}

	client := &http.Client{
		Jar:       sess.jar,
		Transport: b.transport,
		Timeout:   b.site.timeout(),
		// a redirect is an answer of its own, cookies from it still reach the jar
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client.Do(req)
}

// visit requests a page only for the cookies it sets
func (b *TheBot) visit(ctx context.Context, sess *Session, uri string) error {
	resp, err := b.do(ctx, sess, http.MethodGet, uri, nil, requestHeaders)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

func (b *TheBot) getDocument(ctx context.Context, sess *Session, uri string) (*goquery.Document, error) {
	resp, err := b.do(ctx, sess, http.MethodGet, uri, nil, requestHeaders)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return goquery.NewDocumentFromReader(resp.Body)
}

func (b *TheBot) loginURL(email string) (string, error) {
	loginURL, err := url.Parse(b.site.LoginURL)
	if err != nil {
		return "", err
	}

	q := loginURL.Query()
	q.Set("fbid", email)
	q.Set("selserver", b.site.LoginServer)
	loginURL.RawQuery = q.Encode()

	return loginURL.String(), nil
}

// acquireSession returns sess when there is one, otherwise logs in through the shortcut.
// Status codes of both calls are ignored, only transport errors count.
func (b *TheBot) acquireSession(ctx context.Context, email string, sess *Session) (*Session, error) {
	if sess != nil {
		return sess, nil
	}

	jar, err := cookiejar.New(&cookiejar.Options{})
	if err != nil {
		return nil, err
	}
	sess = &Session{jar: jar}

	if err = b.visit(ctx, sess, b.site.EventURL); err != nil {
		return nil, errors.Wrap(err, "open event page")
	}

	login, err := b.loginURL(email)
	if err != nil {
		return nil, errors.Wrap(err, "build login url")
	}

	if err = b.visit(ctx, sess, login); err != nil {
		return nil, errors.Wrap(err, "login shortcut")
	}

	b.log.Info().Msg("cookies reserved")
	return sess, nil
}

func (b *TheBot) claimReward(ctx context.Context, sess *Session, entry *RewardEntry, server int) (*ClaimedReward, error) {
	params := url.Values{}
	params.Add("itemId", entry.ID)
	params.Add("periodId", entry.Period)
	params.Add("selserver", strconv.Itoa(server))

	resp, err := b.do(ctx, sess, http.MethodPost, b.site.ClaimURL, strings.NewReader(params.Encode()), postHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "claim request")
	}
	defer resp.Body.Close()

	answer, err := io.ReadAll(io.LimitReader(resp.Body, maxAnswerSize))
	if err != nil {
		return nil, errors.Wrap(err, "claim answer")
	}

	if resp.StatusCode != http.StatusOK {
		claimErr := &ClaimError{ItemID: entry.ID, StatusCode: resp.StatusCode, Body: string(answer)}
		b.errlog.Error().Str("item", entry.ID).Int("status", resp.StatusCode).Str("answer", claimErr.Body).Msg("claim failed")
		return nil, claimErr
	}

	b.log.Info().Str("item", entry.ID).Str("name", entry.Name).Int("day", entry.Day).Msg("reward claimed")
	return &ClaimedReward{Day: entry.Day, ItemName: entry.Name, TotalClaimed: entry.Day}, nil
}

// CheckDaily logs in (unless sess is given), reads the event page and claims target.ItemID when it is
// among the unclaimed rewards. Unknown item id is not an error: the claimed list is just empty.
func (b *TheBot) CheckDaily(ctx context.Context, target ClaimTarget, sess *Session) (*DailyResult, error) {
	b.bindLogger(target)

	sess, err := b.acquireSession(ctx, target.Email, sess)
	if err != nil {
		return nil, err
	}

	doc, err := b.getDocument(ctx, sess, b.site.EventURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetch event page")
	}

	account, err := parseAccountLabel(doc, target.Server)
	if err != nil {
		return nil, err
	}

	rewards := doc.Find(rewardQuery)
	if rewards.Length() == 0 {
		b.log.Info().Msg(allClaimedMessage)
		return &DailyResult{AllClaimed: true}, nil
	}
	b.log.Debug().Int("rewards", rewards.Length()).Str("account", account).Msg("event page parsed")

	entry, err := findReward(rewards, target.ItemID)
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{
		Email:          target.Email,
		AccountInfo:    account,
		Server:         target.Server,
		ClaimedRewards: make([]ClaimedReward, 0, 1),
	}

	if entry == nil {
		b.log.Info().Str("item", target.ItemID).Msg("no unclaimed reward with this id")
		return &DailyResult{Claim: result}, nil
	}

	b.log.Info().Str("item", entry.ID).Str("name", entry.Name).Msg("claiming reward")
	claimed, err := b.claimReward(ctx, sess, entry, target.Server)
	if err != nil {
		return nil, err
	}
	result.ClaimedRewards = append(result.ClaimedRewards, *claimed)

	return &DailyResult{Claim: result}, nil
}
