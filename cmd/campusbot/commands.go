package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/config"
	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/knowledge"
	"github.com/gosuda/campusbot/internal/store/postgres"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(*config.Config, *postgres.Store) error {
				log.Info().Msg("schema up to date")
				return nil
			})
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed <tenant-id>",
		Short: "Replace a tenant's structured knowledge with the seed dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(cfg *config.Config, store *postgres.Store) error {
				if file == "" {
					file = cfg.SeedFile
				}
				ds, err := knowledge.LoadDataset(file)
				if err != nil {
					return err
				}
				if _, err := store.Tenants().GetByID(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("seed: tenant %s: %w", args[0], err)
				}
				if err := knowledge.Seed(cmd.Context(), store.Knowledge(), args[0], ds, time.Now()); err != nil {
					return err
				}

				sections, _ := ds.Document().Keys()
				slices.Sort(sections)
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %s\n", args[0], strings.Join(sections, ", "))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML dataset (default: CAMPUSBOT_SEED_FILE or the embedded dataset)")
	return cmd
}

func newTenantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	var (
		name       string
		contact    string
		credential string
		seed       bool
	)
	create := &cobra.Command{
		Use:   "create <tenant-id>",
		Short: "Create a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !domain.ValidTenantID(id) {
				return fmt.Errorf("tenant create: invalid tenant id %q", id)
			}
			if name == "" {
				name = id
			}

			return withStore(cmd.Context(), func(cfg *config.Config, store *postgres.Store) error {
				now := time.Now()
				t := &domain.Tenant{
					ID:           id,
					DisplayName:  name,
					ContactEmail: contact,
					Status:       domain.TenantStatusActive,
					Settings:     map[string]any{},
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if credential != "" {
					if len(credential) < auth.MinSecretLength {
						return fmt.Errorf("tenant create: %w", auth.ErrWeakSecret)
					}
					hash, err := auth.HashSecret(credential)
					if err != nil {
						return err
					}
					t.AdminCredentialHash = hash
				}

				if err := store.Tenants().Create(cmd.Context(), t); err != nil {
					return err
				}
				if seed {
					ds, err := knowledge.LoadDataset(cfg.SeedFile)
					if err != nil {
						return err
					}
					if err := knowledge.Seed(cmd.Context(), store.Knowledge(), id, ds, now); err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created tenant %s\n", id)
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name (default: the tenant id)")
	create.Flags().StringVar(&contact, "contact", "", "admin notification email")
	create.Flags().StringVar(&credential, "credential", "", "initial shared admin credential")
	create.Flags().BoolVar(&seed, "seed", false, "seed structured knowledge from the dataset")

	show := &cobra.Command{
		Use:   "show [tenant-id]",
		Short: "Show one tenant, or list all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(_ *config.Config, store *postgres.Store) error {
				var tenants []*domain.Tenant
				if len(args) == 1 {
					t, err := store.Tenants().GetByID(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					tenants = []*domain.Tenant{t}
				} else {
					var err error
					if tenants, err = store.Tenants().List(cmd.Context()); err != nil {
						return err
					}
				}
				return printTenants(cmd.OutOrStdout(), tenants)
			})
		},
	}

	cmd.AddCommand(create, show)
	return cmd
}

func printTenants(out io.Writer, tenants []*domain.Tenant) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tCONTACT\tCREDENTIAL")
	for _, t := range tenants {
		cred := "unset"
		if t.AdminCredentialHash != "" {
			cred = "set"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.DisplayName, t.Status, t.ContactEmail, cred)
	}
	return tw.Flush()
}

func newQACommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qa",
		Short: "Inspect Q&A entries",
	}

	var source string
	list := &cobra.Command{
		Use:   "list <tenant-id>",
		Short: "List a tenant's Q&A entries in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *domain.SourceType
			if source != "" {
				s := domain.SourceType(source)
				if !s.Valid() {
					return fmt.Errorf("qa list: unknown source %q", source)
				}
				filter = &s
			}

			return withStore(cmd.Context(), func(_ *config.Config, store *postgres.Store) error {
				entries, err := store.QA().ListEntries(cmd.Context(), args[0], filter)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SEQ\tSOURCE\tQUESTION\tANSWER")
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Seq, e.SourceType, oneLine(e.QuestionKey, 40), oneLine(e.AnswerText, 60))
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().StringVar(&source, "source", "", "filter by source: manual or document_extract")

	cmd.AddCommand(list)
	return cmd
}

func newMissesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "misses",
		Short: "Inspect unanswered questions",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list <tenant-id>",
		Short: "List a tenant's unanswered questions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return errors.New("misses list: --limit must be positive")
			}
			return withStore(cmd.Context(), func(_ *config.Config, store *postgres.Store) error {
				entries, err := store.MissLog().List(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "WHEN\tQUESTION")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\n", e.CreatedAt.Format(time.RFC3339), oneLine(e.QueryText, 80))
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum entries")

	cmd.AddCommand(list)
	return cmd
}

func newHashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Hash a secret read from stdin, for CAMPUSBOT_SUPERADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("hash: read: %w", err)
			}
			secret = strings.TrimRight(secret, "\r\n")
			if len(secret) < auth.MinSecretLength {
				return fmt.Errorf("hash: %w", auth.ErrWeakSecret)
			}

			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// oneLine flattens s and cuts it to n runes for tabular output.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
