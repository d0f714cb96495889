package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/umarovdev/konkurs-backend/internal/service"
	"go.uber.org/zap"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL("test-token", srv.URL, srv.Client(), zap.NewNop())
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   service.MembershipStatus
	}{
		{"member", "member", service.StatusMember},
		{"administrator", "administrator", service.StatusMember},
		{"creator", "creator", service.StatusMember},
		{"left", "left", service.StatusNotMember},
		{"kicked", "kicked", service.StatusNotMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/bottest-token/getChatMember" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprintf(w, `{"ok":true,"result":{"status":%q}}`, tt.status)
			})
			got, err := c.StatusOf(context.Background(), "-100200", 1)
			if err != nil {
				t.Fatalf("status of: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestStatusOfAPIError(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"chat not found"}`)
	})
	got, err := c.StatusOf(context.Background(), "-100200", 1)
	if err == nil {
		t.Fatalf("expected an error for ok=false")
	}
	if got != service.StatusUnknown {
		t.Fatalf("API errors must report unknown, got %v", got)
	}
}

func TestSendMessage(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("chat_id") != "42" {
			t.Errorf("chat_id=%s", r.URL.Query().Get("chat_id"))
		}
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	})
	if err := c.SendMessage(context.Background(), 42, "salom"); err != nil {
		t.Fatalf("send message: %v", err)
	}
}

func TestSendMessageBlocked(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"bot was blocked by the user"}`)
	})
	if err := c.SendMessage(context.Background(), 42, "salom"); err == nil {
		t.Fatalf("expected delivery error")
	}
}
