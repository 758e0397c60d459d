package account

type EmailTemplate struct {
	Subject  string
	HtmlBody string
	TextBody string
}

func GetSigninOtpTemplate(code string) EmailTemplate {
	return EmailTemplate{
		Subject:  "Your Sign-In Code",
		HtmlBody: "<h1>Sign-In Verification</h1><p>Your sign-in code is: <strong>" + code + "</strong></p><p>This code will expire in 5 minutes.</p>",
		TextBody: "Your sign-in code is: " + code + ". This code will expire in 5 minutes.",
	}
}

func GetPasswordResetOtpTemplate(code string) EmailTemplate {
	return EmailTemplate{
		Subject:  "Password Reset Code",
		HtmlBody: "<h1>Password Reset</h1><p>Your password reset code is: <strong>" + code + "</strong></p><p>This code will expire in 5 minutes.</p>",
		TextBody: "Password Reset - Your password reset code is: " + code + ". This code will expire in 5 minutes.",
	}
}

func GetDeleteAccountOtpTemplate(code string) EmailTemplate {
	return EmailTemplate{
		Subject:  "Account Deletion Code",
		HtmlBody: "<h1>Account Deletion</h1><p>Your account deletion code is: <strong>" + code + "</strong></p><p>This code will expire in 5 minutes. If you did not request this, please change your password immediately.</p>",
		TextBody: "Account Deletion - Your account deletion code is: " + code + ". This code will expire in 5 minutes. If you did not request this, please change your password immediately.",
	}
}

func GetWelcomeTemplate(name string) EmailTemplate {
	return EmailTemplate{
		Subject:  "Welcome!",
		HtmlBody: "<h1>Welcome, " + name + "!</h1><p>Your account has been created successfully.</p>",
		TextBody: "Welcome, " + name + "! Your account has been created successfully.",
	}
}

func GetPasswordChangedTemplate() EmailTemplate {
	return EmailTemplate{
		Subject:  "Password Changed Successfully",
		HtmlBody: "<h1>Password Changed</h1><p>Your password has been successfully changed. If you did not make this change, please contact support immediately.</p>",
		TextBody: "Password Changed - Your password has been successfully changed. If you did not make this change, please contact support immediately.",
	}
}

func templateForPurpose(purpose OtpPurpose, code string) EmailTemplate {
	switch purpose {
	case OtpPurposePasswordReset:
		return GetPasswordResetOtpTemplate(code)
	case OtpPurposeDeleteAccount:
		return GetDeleteAccountOtpTemplate(code)
	default:
		return GetSigninOtpTemplate(code)
	}
}
