package smtpclient

import "testing"

func TestDotStuff(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"hello\r\nworld\r\n", "hello\r\nworld\r\n"},
		{".leading\r\n", "..leading\r\n"},
		{"a\r\n.\r\nb\r\n", "a\r\n..\r\nb\r\n"},
		{"..double\r\n", "...double\r\n"},
		{"no newline at end.", "no newline at end."},
	}
	for _, c := range cases {
		got := string(dotStuff([]byte(c.in)))
		if got != c.want {
			t.Errorf("dotStuff(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
