package signup

import "github.com/mcoot/fitness-tracking/internal/services/identity"

// User-facing messages. The wording is part of the product and must not change.
const (
	MsgPasswordMismatch = "Passwords do not match."
	MsgWeakPassword     = "Password is to weak."
	MsgInvalidPassword  = "Please enter a valid password."
	MsgInvalidEmail     = "Please enter a valid email."
	MsgEmailInUse       = "This email already belongs to an account."
	MsgUnknown          = "Unknown error - Not documented"
	MsgProfileNotSaved  = "Your account was created, but your profile could not be saved."
)

var codeMessages = map[string]string{
	identity.CodeWeakPassword:      MsgWeakPassword,
	identity.CodeInternalError:     MsgInvalidPassword,
	identity.CodeInvalidEmail:      MsgInvalidEmail,
	identity.CodeEmailAlreadyInUse: MsgEmailInUse,
}

// MessageForCode maps a provider error code to the message shown to the user
func MessageForCode(code string) string {
	msg, _ := lookupMessage(code)
	return msg
}

func lookupMessage(code string) (string, bool) {
	if msg, ok := codeMessages[code]; ok {
		return msg, true
	}
	return MsgUnknown, false
}
