package commands

import "fmt"

// UserError carries a message meant for the chat, not the logs. The router
// sends Msg verbatim; any other error becomes the generic failure notice.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string {
	return e.Msg
}

// Userf builds a UserError.
func Userf(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// Replies shared across handlers and asserted by tests.
var (
	errGroupOnly   = &UserError{Msg: "❌ This command only works in groups!"}
	errAdminOnly   = &UserError{Msg: "❌ Only admins can use this command!"}
	errOwnerOnly   = &UserError{Msg: "❌ This command is restricted to the bot owner."}
	errBotNotAdmin = &UserError{Msg: "❌ I need to be an admin to do this!"}
)

// genericFailure is the reply for unexpected handler errors.
const genericFailure = "❌ An error occurred while executing the command."
