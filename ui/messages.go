package ui

// Alert titles
const (
	TitleError       = "Error"
	TitleSuccess     = "Success"
	TitleLoginError  = "Login error"
	TitleSignUpError = "Sign up error"
)

// Alert messages
const (
	MsgMissingCredentials = "Please enter an email and a password."
	MsgInvalidForm        = "Please fill in all fields correctly."
	MsgLoginSucceeded     = "Logged in successfully!"
	MsgSignUpSucceeded    = "Signed up successfully!"
	MsgGoogleFailed       = "Google sign-in failed."
	MsgNotImplemented     = "%s login not implemented yet"
)
