package main

import (
	"context"
	"net/http"
	"os"
)

// Request of the serverless claim function. Fields are pointers so a missing key
// can be told from an empty one, same as the query string of /claim_rewards.
type Request struct {
	Email  *string `json:"email"`
	Server *int    `json:"server"`
	ItemID *string `json:"itemid"`
}

func (r *Request) target() (target ClaimTarget, msg string) {
	switch {
	case r.Email == nil:
		return target, "missing query parameter: email"
	case r.Server == nil:
		return target, "missing query parameter: server"
	case r.ItemID == nil:
		return target, "missing query parameter: itemid"
	}

	return ClaimTarget{Email: *r.Email, Server: *r.Server, ItemID: *r.ItemID}, ""
}

// Response of the serverless claim function. Body is what /claim_rewards would answer.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// RunClaimFunc claims one reward without the http server.
// Requirements for execution:
// Set KAGEBOT_CONFIG to a config file, or rely on defaults and KAGEBOT_* / MAILER_* variables
func RunClaimFunc(ctx context.Context, req *Request) (*Response, error) {
	config, err := ReadConfiguration(os.Getenv("KAGEBOT_CONFIG"))
	if err != nil {
		return nil, err
	}

	target, msg := req.target()
	if msg != "" {
		return jsonResponse(http.StatusUnprocessableEntity, detail{msg})
	}

	bot := NewBot(config.Site, nil)
	result, err := bot.CheckDaily(ctx, target, nil)
	if err != nil {
		errlog.Error().Err(err).Str("email", target.Email).Str("item", target.ItemID).Msg("claim function failed")
		_ = NewNotifier(config.MailSettings).ClaimFailed(target, err)
	}

	return jsonResponse(resultPayload(result, err))
}

func jsonResponse(status int, v interface{}) (*Response, error) {
	body, err := encodeJSON(v)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: status, Body: string(body)}, nil
}
