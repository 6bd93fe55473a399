package response

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want Line
		err  bool
	}{
		{"220 ready", Line{220, false, "ready"}, false},
		{"250-AUTH PLAIN", Line{250, true, "AUTH PLAIN"}, false},
		{"250 HELP", Line{250, false, "HELP"}, false},
		{"235 ok", Line{235, false, "ok"}, false},
		// Byte 4 is neither '-' nor ' ': treated as payload, terminal.
		{"250xHELP", Line{250, false, "xHELP"}, false},
		{"25", Line{}, true},
		{"334", Line{}, true},
		{"ab 123", Line{}, true},
	}
	for _, c := range cases {
		got, err := Parse(c.line)
		if c.err {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %+v", c.line, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", c.line, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", c.line, diff)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		code int
		want ServerCode
	}{
		{403, InvalidTlsHandshake},
		{421, ServiceNotAvailable},
		{450, TemporaryMailboxNotAvailable},
		{451, ErrorInProcessing},
		{452, InsufficientStorage},
		{454, TemporaryAuthFailure},
		{455, UnableToAccommodateParameter},
		{500, SyntaxErrorOrCommandNotFound},
		{501, InvalidParameter},
		{502, CommandNotImplemented},
		{503, InvalidCommandSequence},
		{504, ParameterNotImplemented},
		{530, AuthenticationRequired},
		{534, AuthMethodTooWeak},
		{535, InvalidCredentials},
		{538, EncryptionRequiredForAuthMethod},
		{550, MailboxNotAvailable},
		{551, UserNotLocal},
		{552, ExceededStorageAllocation},
		{553, MailboxNotAllowed},
		{554, TransactionFailed},
		{555, InvalidFromOrRecptParameter},
		{250, UnexpectedServerResponse},
		{199, UnexpectedServerResponse},
		{599, UnknownServerResponse},
		{999, UnknownServerResponse},
	}
	for _, c := range cases {
		if got := Classify(c.code); got != c.want {
			t.Errorf("Classify(%d) = %v, want %v", c.code, got, c.want)
		}
	}
}
