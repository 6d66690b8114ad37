package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNotifySendsMessage(t *testing.T) {
	t.Parallel()

	var gotChat, gotText, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	n := NewNotifier(" token ", "42").WithAPIBase(srv.URL + "/")
	if err := n.Notify(context.Background(), "Published: Fast wins"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotPath != "/bottoken/sendMessage" || gotChat != "42" || gotText != "Published: Fast wins" {
		t.Fatalf("unexpected request: path=%q chat=%q text=%q", gotPath, gotChat, gotText)
	}
}

func TestNotifyTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	long := strings.Repeat("é", maxMessageRunes+10)
	if err := NewNotifier("token", "42").WithAPIBase(srv.URL).Notify(context.Background(), long); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n := utf8.RuneCountInString(gotText); n != maxMessageRunes {
		t.Fatalf("expected %d runes, got %d", maxMessageRunes, n)
	}
}

func TestNotifyErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "42").Notify(context.Background(), "x"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api description", status: http.StatusBadRequest, body: `{"ok":false,"description":"Bad Request: chat not found"}`, wantErr: "chat not found"},
		{name: "plain failure", status: http.StatusUnauthorized, body: "nope", wantErr: "401"},
		{name: "not ok without description", status: http.StatusOK, body: `{"ok":false}`, wantErr: "200"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := NewNotifier("token", "42").WithAPIBase(srv.URL).Notify(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
