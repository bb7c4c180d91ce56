package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. The returned app is
// created once per process and shared by auth, Firestore and Storage.
func InitFirebase(ctx context.Context, credPath, projectID, storageBucket string) (*firebase.App, error) {
	opt := option.WithCredentialsFile(credPath)
	config := &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: storageBucket,
	}
	return firebase.NewApp(ctx, config, opt)
}
