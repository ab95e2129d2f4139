package service

// QRCodeService renders enrollment payloads as QR images for authenticator
// apps to scan.
type QRCodeService interface {
	// EncodePNG renders the given payload (an otpauth:// URI) as a PNG image.
	EncodePNG(payload string) ([]byte, error)
}
