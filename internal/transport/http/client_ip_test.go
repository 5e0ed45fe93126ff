package http

import (
	"net/http/httptest"
	"testing"
)

func TestClientKey(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		trust      bool
		want       string
	}{
		{name: "peer address", remoteAddr: "10.1.2.3:5555", want: "10.1.2.3"},
		{name: "forwarded ignored when untrusted", remoteAddr: "10.1.2.3:5555", xff: "203.0.113.7", want: "10.1.2.3"},
		{name: "first forwarded hop", remoteAddr: "10.1.2.3:5555", xff: " 203.0.113.7 , 10.0.0.1", trust: true, want: "203.0.113.7"},
		{name: "blank forwarded header", remoteAddr: "10.1.2.3:5555", xff: " , 10.0.0.1", trust: true, want: "10.1.2.3"},
		{name: "ipv6 peer", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "address without port", remoteAddr: "10.9.9.9", want: "10.9.9.9"},
		{name: "no address", remoteAddr: "", want: "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := clientKey(req, tc.trust); got != tc.want {
				t.Fatalf("clientKey() = %q, want %q", got, tc.want)
			}
		})
	}
}
