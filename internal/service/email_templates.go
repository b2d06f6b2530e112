package service

import (
	"fmt"

	"github.com/fintrack/backend/internal/model"
)

var codeSubjects = map[model.CodePurpose]string{
	model.PurposeEmailVerification: "Verify your FinTrack email",
	model.PurposePasswordReset:     "Reset your FinTrack password",
	model.PurposeEmailChange:       "Confirm your new FinTrack email",
	model.PurposePasswordChange:    "Confirm your FinTrack password change",
}

var codeIntros = map[model.CodePurpose]string{
	model.PurposeEmailVerification: "Use this code to verify your email address:",
	model.PurposePasswordReset:     "Use this code to reset your password:",
	model.PurposeEmailChange:       "Use this code to confirm your new email address:",
	model.PurposePasswordChange:    "Use this code to confirm your password change:",
}

func renderCodeEmail(purpose model.CodePurpose, code string) (subject, htmlBody string) {
	subject = codeSubjects[purpose]
	htmlBody = fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px;">
			<h2>FinTrack</h2>
			<p>%s</p>
			<p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">%s</p>
			<p>This code expires in 15 minutes. If you did not request it, you can ignore this email.</p>
		</div>`, codeIntros[purpose], code)
	return subject, htmlBody
}
