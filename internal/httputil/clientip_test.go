package httputil

import (
	"net/http"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"remote addr", false, "", "", "192.168.1.1:12345", "192.168.1.1"},
		{"ipv6 remote addr", false, "", "", "[::1]:12345", "::1"},
		{"bare remote addr", false, "", "", "192.168.1.1", "192.168.1.1"},
		{"xff ignored without trust", false, "1.2.3.4", "", "10.0.0.1:1234", "10.0.0.1"},
		{"xff single", true, "1.2.3.4", "", "10.0.0.1:1234", "1.2.3.4"},
		{"xff chain", true, " 1.2.3.4 , 5.6.7.8", "", "10.0.0.1:1234", "1.2.3.4"},
		{"real ip", true, "", "9.9.9.9", "10.0.0.1:1234", "9.9.9.9"},
		{"empty xff entry", true, " ,5.6.7.8", "9.9.9.9", "10.0.0.1:1234", "9.9.9.9"},
		{"trust without headers", true, "", "", "10.0.0.1:1234", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tt.remoteAddr, Header: http.Header{}}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r, tt.trust); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
