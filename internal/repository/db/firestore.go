package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreConfig locates the project and, optionally, a service account key file.
// With no credentials file the client falls back to application default credentials
// (or FIRESTORE_EMULATOR_HOST when set).
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

// InitFirestore creates a Firestore client. The caller owns Close.
func InitFirestore(ctx context.Context, cfg FirestoreConfig) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client for %q: %w", cfg.ProjectID, err)
	}
	return client, nil
}
