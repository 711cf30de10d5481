package utils

import "net/http"

// MapToHeader folds a plain string map into canonical http.Header form.
func MapToHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
