package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"patra/internal/clients/models"
	clientservice "patra/internal/clients/service"
	clientstore "patra/internal/clients/store"
	jwttoken "patra/internal/jwt_token"
	"patra/internal/platform/config"
)

var (
	clientName   string
	clientScopes []string
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage API clients",
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register an API client and print its credentials",
	Long: `Registers an API client in the configured database and prints the
client id and secret. The secret is shown once; only its hash is stored.`,
	Args: cobra.NoArgs,
	RunE: runClientsCreate,
}

func init() {
	clientsCreateCmd.Flags().StringVar(&clientName, "name", "", "human-readable client name")
	clientsCreateCmd.Flags().StringSliceVar(&clientScopes, "scopes", []string{models.ScopeEligibility}, "granted scopes")
	_ = clientsCreateCmd.MarkFlagRequired("name")
	clientsCmd.AddCommand(clientsCreateCmd)
	rootCmd.AddCommand(clientsCmd)
}

func runClientsCreate(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx := cmd.Context()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	store := clientstore.NewPostgres(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	// Service internals log nothing useful for a one-shot command.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := clientservice.New(store,
		jwttoken.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience),
		clientservice.WithLogger(quiet),
	)

	client, secret, err := svc.Create(ctx, clientName, clientScopes)
	if err != nil {
		return err
	}

	cmd.Printf("client_id:     %s\n", client.ClientID)
	cmd.Printf("client_secret: %s\n", secret)
	cmd.Printf("scopes:        %s\n", strings.Join(client.Scopes, " "))
	cmd.Println()
	cmd.Println("Store the secret now; it cannot be recovered later.")
	return nil
}
