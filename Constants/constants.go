package Constants

import "os"

// WhatsappGoService is the base URL of the go-whatsapp-web-multidevice
// sidecar used to deliver patient messages.
var WhatsappGoService = getEnv("WHATSAPP_SERVICE_URL", "http://localhost:3000")

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
