package main

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

type detail struct {
	Detail string `json:"detail"`
}

func asClaimError(err error, target **ClaimError) bool {
	return errors.As(err, target)
}

// resultPayload maps the outcome of CheckDaily to a status code and a JSON body.
// Claim errors keep the upstream status, everything else is a plain 500.
func resultPayload(result *DailyResult, err error) (int, interface{}) {
	if err == nil {
		return http.StatusOK, result
	}

	var claimErr *ClaimError
	if asClaimError(err, &claimErr) {
		status := claimErr.StatusCode
		if status < 100 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, detail{claimErr.Error()}
	}

	return http.StatusInternalServerError, detail{http.StatusText(http.StatusInternalServerError)}
}

func encodeJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := encodeJSON(v)
	if err != nil {
		errlog.Error().Err(err).Msg("can't encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"detail":"Internal Server Error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{msg})
}
