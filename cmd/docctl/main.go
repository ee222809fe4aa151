package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatiip-backend/citation"
	"chatiip-backend/config"
	"chatiip-backend/extractor"
	"chatiip-backend/logger"
	"chatiip-backend/outline"
	"chatiip-backend/repository"
	"chatiip-backend/search"
	"chatiip-backend/service"
	"chatiip-backend/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docctl",
		Short: "Operator tooling for the legal document library",
		Long: `docctl runs maintenance tasks against the document database and
search index, and previews how files and questions are processed.

Settings are read from the environment and .env, as for the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, _, _ := config.Load()
			cfg = loaded
			l, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(reindexCmd())
	rootCmd.AddCommand(outlineCmd())
	rootCmd.AddCommand(citeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("Schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account if the email is not registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JWTSecret == "" {
				// Tokens are never issued here; any secret satisfies the service
				cfg.JWTSecret = "docctl"
			}
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			auth := service.NewAuthService(
				service.WithUserRepository(repository.NewUserRepository(pool)),
				service.WithJWTSecret(cfg.JWTSecret),
				service.WithAuthLogger(log),
			)
			created, err := auth.EnsureAdmin(ctx, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Admin %s created\n", email)
			} else {
				fmt.Printf("User %s already exists\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docs, closeAll, err := openDocuments(ctx)
			if err != nil {
				return err
			}
			defer closeAll()

			n, err := docs.Reindex(ctx)
			if err != nil {
				return fmt.Errorf("reindex: %w", err)
			}
			fmt.Printf("Indexed %d documents into %s\n", n, cfg.SearchIndexPath)
			return nil
		},
	}
}

func outlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the outline built from a PDF, DOCX or TXT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return err
			}

			var text string
			if strings.EqualFold(filepath.Ext(path), ".txt") {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				text = string(b)
			} else {
				ex := extractor.New(
					extractor.WithLogger(log),
					extractor.WithPDFToText(cfg.PDFToTextPath),
					extractor.WithPandoc(cfg.PandocPath),
					extractor.WithTimeout(cfg.ConverterTimeout),
					extractor.WithFallback(cfg.ExtractFallback),
				)
				name := filepath.Base(path)
				text = ex.Extract(cmd.Context(), path, storage.ContentTypeFor(name), name)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("no text could be extracted")
			}

			return printJSON(outline.Build(text))
		},
	}
}

func citeCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "cite <question>",
		Short: "Print the citations attached to a chat question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docs, closeAll, err := openDocuments(ctx)
			if err != nil {
				return err
			}
			defer closeAll()

			cites, err := citation.NewResolver(docs).Resolve(ctx, strings.Join(args, " "), baseURL)
			if err != nil {
				return err
			}
			return printJSON(cites)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "origin prepended to relative file URLs")
	return cmd
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// openDocuments wires a DocumentService over Postgres and the on-disk index
func openDocuments(ctx context.Context) (*service.DocumentService, func(), error) {
	pool, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	index, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	docs := service.NewDocumentService(
		service.WithDocumentRepository(repository.NewLegalDocumentRepository(pool)),
		service.WithSearchIndex(index),
		service.WithDocumentLogger(log),
	)
	return docs, func() {
		_ = index.Close()
		pool.Close()
	}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
