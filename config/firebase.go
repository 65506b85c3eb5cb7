package config

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK used for push
// notifications. Without credentials it returns nil and push is skipped.
func InitFirebase(settings *Settings) *firebase.App {
	ctx := context.Background()

	var opt option.ClientOption
	switch {
	case settings.FirebaseCredentialsBase64 != "":
		log.Printf("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(settings.FirebaseCredentialsBase64)
		if err != nil {
			log.Printf("Error decoding base64 credentials: %v", err)
			return nil
		}
		opt = option.WithCredentialsJSON(decoded)
	case settings.FirebaseCredentialsFile != "":
		if _, err := os.Stat(settings.FirebaseCredentialsFile); err != nil {
			log.Printf("Firebase credentials file not readable: %v", err)
			return nil
		}
		log.Printf("Using Firebase credentials file: %s", settings.FirebaseCredentialsFile)
		opt = option.WithCredentialsFile(settings.FirebaseCredentialsFile)
	default:
		log.Println("Firebase credentials not configured, push notifications disabled")
		return nil
	}

	var cfg *firebase.Config
	if settings.FirebaseProjectID != "" {
		cfg = &firebase.Config{ProjectID: settings.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		log.Printf("error initializing firebase app: %v", err)
		return nil
	}
	return app
}
