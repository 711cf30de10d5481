package swiftclient

import (
	"context"
	"testing"
)

func TestContainerPath_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		container string
		want      string
	}{
		{name: "plain", container: "photos", want: "/photos"},
		{name: "trailing slash trimmed", container: "photos/", want: "/photos"},
		{name: "leading slash preserved", container: "/photos", want: "/photos"},
		{name: "spaces escaped", container: "my photos", want: "/my%20photos"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ContainerPath(tt.container); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestObjectPath_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		container string
		object    string
		want      string
	}{
		{name: "plain", container: "c", object: "o", want: "/c/o"},
		{name: "nested object keeps slashes", container: "c", object: "a/b/c", want: "/c/a/b/c"},
		{name: "object trailing slash preserved", container: "c", object: "dir/", want: "/c/dir/"},
		{name: "unicode escaped", container: "c", object: "café.txt", want: "/c/caf%C3%A9.txt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ObjectPath(tt.container, tt.object); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestStoreRequestConfig_NewRequest_Isolation(t *testing.T) {
	t.Parallel()

	cfg := DefaultStoreRequestConfig()
	cfg.WithPath("/c/o").
		WithQuery(map[string]string{"format": "json"}).
		WithHeaders(map[string]string{"X-Base": "1"})

	raw, err := cfg.NewRequest(context.Background())
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	r, ok := raw.(*StoreRequest)
	if !ok {
		t.Fatalf("request type %T", raw)
	}

	r.SetHeader("X-Base", "changed")
	r.Query["format"] = "xml"

	if cfg.Headers["X-Base"] != "1" {
		t.Fatalf("mutating the request must not touch the config headers")
	}
	if cfg.Query["format"] != "json" {
		t.Fatalf("mutating the request must not touch the config query")
	}
}

func TestStoreRequest_Headers(t *testing.T) {
	t.Parallel()

	r := &StoreRequest{}
	if got := r.Header("missing"); got != "" {
		t.Fatalf("got %q want empty", got)
	}
	r.SetHeader("X-Test", "v")
	if got := r.Header("X-Test"); got != "v" {
		t.Fatalf("got %q want v", got)
	}
}
