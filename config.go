// package config works with settings and returns named pairs

package main

import (
	"os"

	json "github.com/goccy/go-json"
)

// ReadConfig read from file (uri) settings
func ReadConfig(uri string, c interface{}) (err error) {
	raw, err := os.ReadFile(uri)
	if err != nil {
		return
	}

	return json.Unmarshal(raw, c)
}
