package utils

import (
	"context"

	"townhall/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMClient is the Firebase Cloud Messaging client. It stays nil when
// initialization fails; push delivery is best-effort and callers must
// tolerate its absence.
var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client.
func FirebaseInit() {
	logger := GetLogger()
	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		logger.Warn("firebase: app init failed, push delivery disabled", zap.Error(err))
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Warn("firebase: messaging client init failed, push delivery disabled", zap.Error(err))
		return
	}

	FCMClient = client
	logger.Info("firebase: messaging client ready")
}
