package main

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	serverSelectQuery = `select[name="selserver"]`
	// class attribute must match exactly, same as a plain class string lookup
	rewardQuery      = `div[class="reward-content dailyClaim reward-star"]`
	rewardPointQuery = "div.reward-point"
)

// RewardEntry is one unclaimed daily reward found on the event page
type RewardEntry struct {
	ID     string
	Period string
	Name   string
	Day    int
}

// parseAccountLabel returns data-server of the selserver option matching server.
// No match is not an error, the label stays empty.
func parseAccountLabel(doc *goquery.Document, server int) (label string, err error) {
	sel := doc.Find(serverSelectQuery).First()
	if sel.Length() == 0 {
		return "", botErrorf("no server select on event page")
	}

	want := strconv.Itoa(server)
	sel.Find("option").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value, ok := s.Attr("value")
		if !ok {
			err = botErrorf("server option without value")
			return false
		}

		if value != want {
			return true
		}

		label, ok = s.Attr("data-server")
		if !ok {
			err = botErrorf("server option %s without data-server", value)
		}
		return false
	})

	return
}

// parseDay takes the number after the first '-' of a reward point label ("Day-7" -> 7)
func parseDay(text string) (int, error) {
	parts := strings.Split(text, "-")
	if len(parts) < 2 {
		return 0, botErrorf("no day separator in reward point %q", text)
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, botErrorf("bad day number in reward point %q", text)
	}

	return day, nil
}

func parseRewardEntry(s *goquery.Selection) (entry RewardEntry, err error) {
	var ok bool
	if entry.ID, ok = s.Attr("data-id"); !ok {
		return entry, botErrorf("reward without data-id")
	}
	if entry.Period, ok = s.Attr("data-period"); !ok {
		return entry, botErrorf("reward %s without data-period", entry.ID)
	}
	if entry.Name, ok = s.Attr("data-name"); !ok {
		return entry, botErrorf("reward %s without data-name", entry.ID)
	}

	point := s.Find(rewardPointQuery).First()
	if point.Length() == 0 {
		return entry, botErrorf("reward %s without reward point", entry.ID)
	}

	entry.Day, err = parseDay(point.Text())
	return
}

// findReward walks reward nodes in page order and stops at the first one with itemID.
// Every node before the match must parse. nil entry means no match.
func findReward(rewards *goquery.Selection, itemID string) (found *RewardEntry, err error) {
	rewards.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		entry, perr := parseRewardEntry(s)
		if perr != nil {
			err = perr
			return false
		}

		if entry.ID == itemID {
			found = &entry
			return false
		}
		return true
	})

	return
}
