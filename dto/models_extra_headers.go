package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtraHeaders is a comma separated key=value string defined for use with
// Viper appconfig parsing; the values ride along on every request.
type ExtraHeaders map[string]string

func (e ExtraHeaders) String() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// Set Value should be a comma separated key=value string
func (e ExtraHeaders) Set(s string) error {
	for _, header := range strings.Split(s, ",") {
		key, value, found := strings.Cut(header, "=")
		if !found || key == "" {
			return fmt.Errorf("malformed header pair %q", header)
		}
		e[key] = value
	}
	return nil
}

func (e ExtraHeaders) Type() string {
	return "ExtraHeaders"
}
