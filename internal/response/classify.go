package response

import "fmt"

// ServerCode is a closed taxonomy of named SMTP server reply codes, per
// RFC 5321's enhanced status conventions. Classify is a total function:
// every possible 16-bit code maps to one of these.
type ServerCode int

const (
	UnexpectedServerResponse ServerCode = iota // code < 400, not the one expected for this step
	UnknownServerResponse                      // code >= 400, not in the named set below

	InvalidTlsHandshake // 403

	ServiceNotAvailable // 421

	TemporaryMailboxNotAvailable     // 450
	ErrorInProcessing                // 451
	InsufficientStorage              // 452
	TemporaryAuthFailure             // 454
	UnableToAccommodateParameter     // 455

	SyntaxErrorOrCommandNotFound // 500
	InvalidParameter             // 501
	CommandNotImplemented        // 502
	InvalidCommandSequence       // 503
	ParameterNotImplemented      // 504

	AuthenticationRequired         // 530
	AuthMethodTooWeak              // 534
	InvalidCredentials             // 535
	EncryptionRequiredForAuthMethod // 538

	MailboxNotAvailable         // 550
	UserNotLocal                // 551
	ExceededStorageAllocation   // 552
	MailboxNotAllowed           // 553
	TransactionFailed           // 554
	InvalidFromOrRecptParameter // 555
)

var names = map[ServerCode]string{
	UnexpectedServerResponse:        "UnexpectedServerResponse",
	UnknownServerResponse:           "UnknownServerResponse",
	InvalidTlsHandshake:             "InvalidTlsHandshake",
	ServiceNotAvailable:             "ServiceNotAvailable",
	TemporaryMailboxNotAvailable:    "TemporaryMailboxNotAvailable",
	ErrorInProcessing:               "ErrorInProcessing",
	InsufficientStorage:             "InsufficientStorage",
	TemporaryAuthFailure:            "TemporaryAuthFailure",
	UnableToAccommodateParameter:    "UnableToAccommodateParameter",
	SyntaxErrorOrCommandNotFound:    "SyntaxErrorOrCommandNotFound",
	InvalidParameter:                "InvalidParameter",
	CommandNotImplemented:           "CommandNotImplemented",
	InvalidCommandSequence:          "InvalidCommandSequence",
	ParameterNotImplemented:         "ParameterNotImplemented",
	AuthenticationRequired:          "AuthenticationRequired",
	AuthMethodTooWeak:               "AuthMethodTooWeak",
	InvalidCredentials:              "InvalidCredentials",
	EncryptionRequiredForAuthMethod: "EncryptionRequiredForAuthMethod",
	MailboxNotAvailable:             "MailboxNotAvailable",
	UserNotLocal:                    "UserNotLocal",
	ExceededStorageAllocation:       "ExceededStorageAllocation",
	MailboxNotAllowed:               "MailboxNotAllowed",
	TransactionFailed:               "TransactionFailed",
	InvalidFromOrRecptParameter:     "InvalidFromOrRecptParameter",
}

func (c ServerCode) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("ServerCode(%d)", int(c))
}

var byNumericCode = map[int]ServerCode{
	403: InvalidTlsHandshake,

	421: ServiceNotAvailable,

	450: TemporaryMailboxNotAvailable,
	451: ErrorInProcessing,
	452: InsufficientStorage,
	454: TemporaryAuthFailure,
	455: UnableToAccommodateParameter,

	500: SyntaxErrorOrCommandNotFound,
	501: InvalidParameter,
	502: CommandNotImplemented,
	503: InvalidCommandSequence,
	504: ParameterNotImplemented,

	530: AuthenticationRequired,
	534: AuthMethodTooWeak,
	535: InvalidCredentials,
	538: EncryptionRequiredForAuthMethod,

	550: MailboxNotAvailable,
	551: UserNotLocal,
	552: ExceededStorageAllocation,
	553: MailboxNotAllowed,
	554: TransactionFailed,
	555: InvalidFromOrRecptParameter,
}

// Classify maps a numeric server reply code to a named ServerCode. It is
// only meaningful when the code did not match what the caller expected at
// the current protocol step; 2xx/3xx codes that match the expected code
// for a step are not classified as errors at all.
func Classify(code int) ServerCode {
	if sc, ok := byNumericCode[code]; ok {
		return sc
	}
	if code < 400 {
		return UnexpectedServerResponse
	}
	return UnknownServerResponse
}
