package mail

import "fmt"

// message is a rendered outbound email with both HTML and plain-text bodies.
type message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

func passwordResetMessage(to, resetURL string) message {
	return message{
		To:      to,
		Subject: "Reset Your Password - Procurement System",
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset Request</h2>
  <p>You requested to reset your password for the Procurement System.</p>
  <p>Click the button below to reset your password:</p>
  <a href="%[1]s" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Reset Password</a>
  <p>Or copy and paste this link into your browser:</p>
  <p><a href="%[1]s">%[1]s</a></p>
  <p>This link will expire in 24 hours.</p>
  <p>If you didn't request this reset, please ignore this email.</p>
</div>`, resetURL),
		Text: fmt.Sprintf(`Password Reset Request

You requested to reset your password for the Procurement System.

Click this link to reset your password: %s

This link will expire in 24 hours.

If you didn't request this reset, please ignore this email.`, resetURL),
	}
}

func accountApprovedMessage(to, name string) message {
	return message{
		To:      to,
		Subject: "Your Account Has Been Approved - Procurement System",
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Account Approved</h2>
  <p>Hi %s,</p>
  <p>Your registration for the Procurement System has been approved. You can now sign in with your email and password.</p>
</div>`, name),
		Text: fmt.Sprintf(`Account Approved

Hi %s,

Your registration for the Procurement System has been approved. You can now sign in with your email and password.`, name),
	}
}

func accountRejectedMessage(to, name, reason string) message {
	if reason == "" {
		reason = "No reason was provided."
	}

	return message{
		To:      to,
		Subject: "Your Registration Was Not Approved - Procurement System",
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Registration Not Approved</h2>
  <p>Hi %s,</p>
  <p>Unfortunately your registration for the Procurement System was not approved.</p>
  <p>Reason: %s</p>
  <p>If you believe this is a mistake, please contact an administrator.</p>
</div>`, name, reason),
		Text: fmt.Sprintf(`Registration Not Approved

Hi %s,

Unfortunately your registration for the Procurement System was not approved.

Reason: %s

If you believe this is a mistake, please contact an administrator.`, name, reason),
	}
}
