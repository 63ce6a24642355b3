package models

// OtpLength is the number of code slots.
const OtpLength = 6

// OtpPhase is the submission state of an OTP challenge.
type OtpPhase int

const (
	OtpEntering OtpPhase = iota
	OtpSubmitting
	OtpVerified
)

// OtpState is a snapshot of an OTP challenge.
type OtpState struct {
	Digits                    [OtpLength]string
	Focus                     int
	SecondsUntilResendAllowed int
	Resending                 bool
	Phase                     OtpPhase
}

// Code joins the digits.
func (s OtpState) Code() string {
	var b []byte
	for _, d := range s.Digits {
		b = append(b, d...)
	}
	return string(b)
}

// Complete reports whether every slot holds a digit.
func (s OtpState) Complete() bool {
	for _, d := range s.Digits {
		if d == "" {
			return false
		}
	}
	return true
}
