package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/tenantdb/pkg/objectstore"
)

// SecretName is the engine secret holding object storage credentials.
const SecretName = "tenantdb_storage"

// StorageStatements returns the statements that load the httpfs extension
// and register credentials for the configured object store. It returns nil
// when no object store is configured.
func StorageStatements(store objectstore.Config) ([]string, error) {
	provider := store.Provider()
	if provider == objectstore.ProviderNone {
		return nil, nil
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}

	keyID, secret := store.Credentials()
	params := []string{
		"KEY_ID " + QuoteLiteral(keyID),
		"SECRET " + QuoteLiteral(secret),
	}

	switch provider {
	case objectstore.ProviderS3:
		params = append([]string{"TYPE S3"}, params...)
		params = append(params, "REGION "+QuoteLiteral(store.Region()))
		if endpoint := store.Endpoint(); endpoint != "" {
			params = append(params, "ENDPOINT "+QuoteLiteral(trimScheme(endpoint)))
			if strings.HasPrefix(endpoint, "http://") {
				params = append(params, "USE_SSL false")
			}
		}
		if store.S3.ForcePathStyle {
			params = append(params, "URL_STYLE 'path'")
		}
	case objectstore.ProviderR2:
		params = append([]string{"TYPE R2"}, params...)
		params = append(params, "ACCOUNT_ID "+QuoteLiteral(store.R2.AccountID))
	}

	return []string{
		"INSTALL httpfs",
		"LOAD httpfs",
		fmt.Sprintf("CREATE OR REPLACE SECRET %s (%s)", SecretName, strings.Join(params, ", ")),
	}, nil
}

// ConfigureStorage runs StorageStatements against the engine.
func ConfigureStorage(ctx context.Context, db *sql.DB, store objectstore.Config) error {
	stmts, err := StorageStatements(store)
	if err != nil {
		return errors.Join(ErrFailedToConfigureStorage, err)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Join(ErrFailedToConfigureStorage, err)
		}
	}
	return nil
}

func trimScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimSuffix(endpoint, "/")
}
