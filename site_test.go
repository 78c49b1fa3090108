package main

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type testReward struct {
	id, period, name, point string
}

// eventPage renders the markup the event page uses for the server select and daily rewards
func eventPage(options [][2]string, rewards []testReward) string {
	var sb strings.Builder
	sb.WriteString("<html><body><form>\n<select name=\"selserver\" class=\"form-control\">\n")
	for _, o := range options {
		fmt.Fprintf(&sb, "  <option value=\"%s\" data-server=\"%s\">%s</option>\n", o[0], html.EscapeString(o[1]), html.EscapeString(o[1]))
	}
	sb.WriteString("</select>\n</form>\n<div class=\"reward-list\">\n")
	for _, r := range rewards {
		fmt.Fprintf(&sb, "  <div class=\"reward-content dailyClaim reward-star\" data-id=\"%s\" data-period=\"%s\" data-name=\"%s\">\n", r.id, r.period, html.EscapeString(r.name))
		sb.WriteString("    <div class=\"reward-img\"><img src=\"/img/item.png\"></div>\n")
		fmt.Fprintf(&sb, "    <div class=\"reward-point\">%s</div>\n  </div>\n", r.point)
	}
	// claimed rewards carry another class set and must be ignored
	sb.WriteString("  <div class=\"reward-content reward-star claimed\" data-id=\"old\" data-period=\"1\" data-name=\"Old\"><div class=\"reward-point\">Day-1</div></div>\n")
	sb.WriteString("</div></body></html>")
	return sb.String()
}

// fakeSite imitates the event page, the login shortcut and the claim endpoint
type fakeSite struct {
	*httptest.Server

	mu          sync.Mutex
	page        string
	claimStatus int
	claimBody   string

	claimRedirect bool
	loginRedirect bool

	logins      []string
	eventHits   int
	authedHits  int
	claims      []url.Values
	claimCookie bool
}

func newFakeSite(t *testing.T, page string) *fakeSite {
	t.Helper()

	s := &fakeSite{page: page, claimStatus: http.StatusOK, claimBody: `{"status":"success"}`}

	mux := http.NewServeMux()
	mux.HandleFunc("/event/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.eventHits++
		http.SetCookie(w, &http.Cookie{Name: "_track", Value: "1", Path: "/"})
		if _, err := r.Cookie("PHPSESSID"); err == nil {
			s.authedHits++
			fmt.Fprint(w, s.page)
			return
		}
		fmt.Fprint(w, "<html><body>please log in</body></html>")
	})
	mux.HandleFunc("/payment/server_.php", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.logins = append(s.logins, r.URL.Query().Get("fbid")+"|"+r.URL.Query().Get("selserver"))
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "sess-" + r.URL.Query().Get("fbid"), Path: "/"})
		if s.loginRedirect {
			http.Redirect(w, r, "/event/?event=daily", http.StatusFound)
			return
		}
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/event/index_.php", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, err := r.Cookie("PHPSESSID")
		s.claimCookie = err == nil
		_ = r.ParseForm()
		s.claims = append(s.claims, r.PostForm)
		if s.claimRedirect {
			http.Redirect(w, r, "/event/?event=daily", http.StatusFound)
			return
		}
		w.WriteHeader(s.claimStatus)
		fmt.Fprint(w, s.claimBody)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *fakeSite) siteConfig() SiteConfig {
	return SiteConfig{
		EventURL:    s.URL + "/event/?event=daily",
		LoginURL:    s.URL + "/payment/server_.php",
		ClaimURL:    s.URL + "/event/index_.php?act=daily",
		LoginServer: defaultLoginServer,
		TimeoutSec:  5,
	}
}

func (s *fakeSite) claimCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

var (
	testOptions = [][2]string{{"1", "Alpha"}, {"2", "Beta"}}
	testRewards = []testReward{
		{id: "101", period: "55", name: "Gold Chest", point: "Day-6"},
		{id: "102", period: "55", name: "Silver Key", point: "Day-7"},
	}
)

func (s *fakeSite) loginList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logins...)
}

func (s *fakeSite) claimList() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.claims...)
}

func (s *fakeSite) hits() (event, authed int, claimCookie bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventHits, s.authedHits, s.claimCookie
}

func (s *fakeSite) setClaimAnswer(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimStatus, s.claimBody = status, body
}

func (s *fakeSite) redirect(claim, login bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimRedirect, s.loginRedirect = claim, login
}
