package utils

import "testing"

func TestIsPrivateHost(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"metadata.google.internal", true},
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"192.168.1.5", true},
		{"169.254.169.254", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, c := range cases {
		if got := IsPrivateHost(c.host); got != c.want {
			t.Errorf("IsPrivateHost(%q) = %v, want %v", c.host, got, c.want)
		}
	}
}
