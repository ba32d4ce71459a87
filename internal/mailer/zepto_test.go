package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestZepto(url string) *Zepto {
	z := NewZepto(url, "Zoho-enczapikey test", "noreply@ledgerpro.test", "CDS LedgerPro")
	return z
}

func TestZeptoSend(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Zoho-enczapikey test" {
			t.Errorf("missing auth header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	z := newTestZepto(srv.URL)
	err := z.Send(context.Background(), "ada@example.com", "Ada", "subject", "<p>hi</p>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.From.Address != "noreply@ledgerpro.test" {
		t.Fatalf("from = %s", got.From.Address)
	}
	if len(got.To) != 1 || got.To[0].Email.Address != "ada@example.com" || got.To[0].Email.Name != "Ada" {
		t.Fatalf("to = %+v", got.To)
	}
	if got.Subject != "subject" || got.HTMLBody != "<p>hi</p>" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestZeptoSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	z := newTestZepto(srv.URL)
	if err := z.Send(context.Background(), "ada@example.com", "Ada", "s", "b"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestZeptoVerify(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		z := &Zepto{Client: http.DefaultClient}
		if err := z.Verify(context.Background()); err == nil {
			t.Fatal("expected error when unconfigured")
		}
	})

	t.Run("reachable even when method not allowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}))
		defer srv.Close()

		z := newTestZepto(srv.URL)
		if err := z.Verify(context.Background()); err != nil {
			t.Fatalf("Verify: %v", err)
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // closed on purpose

		z := newTestZepto(srv.URL)
		if err := z.Verify(context.Background()); err == nil {
			t.Fatal("expected error for unreachable endpoint")
		}
	})
}
