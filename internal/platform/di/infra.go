package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"

	dbadapter "goaltickets/internal/adapters/out/db"
	appcfg "goaltickets/internal/infra/config"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore / SecretManager / Postgres)
// - owns env/config-resolved runtime settings
//
// The store client matching cfg.CartBackend is strict (error); everything
// else is best-effort (warn + continue).
type Infra struct {
	Config *appcfg.Config

	Firestore     *firestore.Client
	SecretManager *secretmanager.Client
	DB            *sql.DB
}

// NewInfra initializes shared infra for the configured backend.
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}

	inf := &Infra{Config: cfg}

	var clientOpts []option.ClientOption
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] Using credentials file for GCP clients")
	}

	backend := strings.TrimSpace(strings.ToLower(cfg.CartBackend))

	switch backend {
	case "firestore":
		if strings.TrimSpace(cfg.FirestoreProjectID) == "" {
			return nil, errors.New("di.infra: FIRESTORE_PROJECT_ID is empty (required for CART_BACKEND=firestore)")
		}
		fs, err := firestore.NewClient(ctx, cfg.FirestoreProjectID, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("di.infra: firestore.NewClient: %w", err)
		}
		inf.Firestore = fs
		log.Printf("[di.infra] Firestore client ready project=%s", cfg.FirestoreProjectID)

	case "postgres":
		db, err := dbadapter.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("di.infra: postgres: %w", err)
		}
		inf.DB = db
		log.Printf("[di.infra] Postgres ready")

	case "", "memory":
		log.Printf("[di.infra] in-memory cart store (carts are lost on restart)")

	default:
		return nil, fmt.Errorf("di.infra: unknown CART_BACKEND %q", cfg.CartBackend)
	}

	// Secret Manager is optional: only needed when the Telegram token lives
	// in a secret instead of the environment.
	if strings.TrimSpace(cfg.TelegramTokenSecret) != "" {
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: secretmanager.NewClient failed: %v (falling back to TELEGRAM_BOT_TOKEN env)", err)
		} else {
			inf.SecretManager = sm
		}
	}

	return inf, nil
}

// TelegramToken resolves the bot token: Secret Manager first (when
// configured), env var otherwise. Empty result disables the notifier.
func (inf *Infra) TelegramToken(ctx context.Context) string {
	cfg := inf.Config

	secretName := strings.TrimSpace(cfg.TelegramTokenSecret)
	if secretName != "" && inf.SecretManager != nil {
		resp, err := inf.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: secretName,
		})
		if err != nil {
			log.Printf("[di.infra] WARN: AccessSecretVersion failed name=%s err=%v (falling back to env)", secretName, err)
		} else if resp != nil && resp.Payload != nil {
			if tok := strings.TrimSpace(string(resp.Payload.Data)); tok != "" {
				return tok
			}
		}
	}

	return strings.TrimSpace(cfg.TelegramBotToken)
}

// Close releases owned clients.
func (inf *Infra) Close() {
	if inf == nil {
		return
	}
	if inf.Firestore != nil {
		_ = inf.Firestore.Close()
	}
	if inf.SecretManager != nil {
		_ = inf.SecretManager.Close()
	}
	if inf.DB != nil {
		_ = inf.DB.Close()
	}
}
