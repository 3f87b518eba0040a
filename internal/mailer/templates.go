package mailer

import "fmt"

const (
	OTPSubject    = "Your OTP Code for MTTNxStarbucks"
	TicketSubject = "Your MTTNxStarbucks QR Code"
	TicketCID     = "qrcode"
)

// OTPBody renders the verification-code mail. Plain-text fallback is folded
// into the HTML since every modern client renders HTML.
func OTPBody(otp string) string {
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif; line-height: 1.6; padding: 20px; text-align: center; color: #333;">
          <h1 style="color: #006241;">Welcome to MTTNxStarbucks!</h1>
          <p>Your One-Time Password (OTP) is:</p>
          <h2 style="color: #006241; font-size: 32px; letter-spacing: 5px;">%s</h2>
          <p>This code will expire in 5 minutes.</p>
          <div style="margin: 20px 0; padding: 15px; background-color: #f8f8f8; border-radius: 5px;">
            <p style="margin: 0; color: #666;">If you didn't request this OTP, please ignore this email.</p>
          </div>
          <p style="font-size: 12px; color: #777; margin-top: 20px; border-top: 1px solid #eee; padding-top: 20px;">
            This is an automated message from MTTNxStarbucks. Please do not reply.
          </p>
        </div>`, otp)
}

// TicketBody renders the QR-ticket mail; the image is inlined via CID.
func TicketBody(link string) string {
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif; line-height: 1.6; padding: 20px; text-align: center; color: #333;">
          <h1 style="color: #006241;">Thanks for registering!</h1>
          <p>Here is your MTTNxStarbucks QR code. Scan it to access your page and enjoy exclusive offers!</p>
          <div style="margin: 20px 0;">
            <a href="%s" style="text-decoration: none;">
              <img src="cid:%s" alt="QR Code" style="width: 200px; height: 200px; border-radius: 10px;" />
            </a>
          </div>
          <p>Need help? Contact us at <a href="mailto:bdpr.mttn@gmail.com">bdpr.mttn@gmail.com</a></p>
          <p style="font-size: 12px; color: #777;">This email was sent automatically. Please do not reply.</p>
        </div>`, link, TicketCID)
}

// ConfirmationBody renders the attendance-confirmation broadcast mail with a
// personalized link embedding the user's id.
func ConfirmationBody(name, link string) string {
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif; line-height: 1.6; padding: 20px; text-align: center; color: #333;">
          <h1 style="color: #006241;">See you there, %s!</h1>
          <p>Please confirm your attendance so we can plan food and drinks.</p>
          <div style="margin: 20px 0;">
            <a href="%s" style="background-color: #006241; color: #fff; padding: 12px 24px; border-radius: 5px; text-decoration: none;">Confirm Attendance</a>
          </div>
          <p style="font-size: 12px; color: #777;">This email was sent automatically. Please do not reply.</p>
        </div>`, name, link)
}
