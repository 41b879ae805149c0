package httpserver

import (
	"net/http"
	"testing"
)

func TestNewSetsConnectionTimeouts(t *testing.T) {
	srv := New(":0", http.NewServeMux())

	if srv.Addr != ":0" {
		t.Fatalf("expected addr :0, got %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 || srv.ReadTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Fatalf("expected every connection timeout set, got %+v", srv)
	}
}
