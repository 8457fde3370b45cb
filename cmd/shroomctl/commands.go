package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	authdomain "github.com/shroombros/shroom-api/internal/domains/auth/domain"
	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/adapters/catalog"
	monitoringdomain "github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/platform/migrations"
)

// passwordEnv lets scripts pass a password without putting it on the command line.
const passwordEnv = "SHROOMCTL_PASSWORD"

func newMigrateCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b *backend) error {
				if b.db == nil {
					return errors.New("migrate requires a database")
				}
				if err := migrations.Run(b.db.WithContext(ctx)); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				cmd.Println("schema up to date")
				return nil
			})
		},
	}
}

func newSeedCmd(connect connectFunc) *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}
	seed.AddCommand(&cobra.Command{
		Use:   "catalog <file.yaml>",
		Short: "Import products and lots from a YAML catalog",
		Long: `Import products and lots from a YAML catalog.

Products and lots that already exist (matched by name and code) are skipped, so the
same file can be applied repeatedly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b *backend) error {
				result, err := b.services.Monitoring.ImportCatalog(ctx, entries)
				if err != nil {
					return fmt.Errorf("import catalog: %w", err)
				}
				cmd.Printf("products: %d created, %d skipped\n", result.ProductsCreated, result.ProductsSkipped)
				cmd.Printf("lots: %d created, %d skipped\n", result.LotsCreated, result.LotsSkipped)
				return nil
			})
		},
	})
	return seed
}

func newUsersCmd(connect connectFunc) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage API users",
	}

	var email, name, role, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user that can log in to the API",
		Long: `Create a user that can log in to the API.

The password is read from --password or, when that is empty, from $` + passwordEnv + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			return withBackend(cmd, connect, func(ctx context.Context, b *backend) error {
				user, err := b.services.Auth.CreateUser(ctx, authports.CreateUserInput{
					Email:    email,
					Name:     name,
					Role:     authdomain.Role(strings.ToLower(strings.TrimSpace(role))),
					Password: password,
				})
				if err != nil {
					return err
				}
				cmd.Printf("created %s user %s (%s)\n", user.Role, user.Email, user.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(authdomain.RoleStaff), "admin or staff")
	create.Flags().StringVar(&password, "password", "", "initial password")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b *backend) error {
				all, err := b.services.Auth.ListUsers(ctx)
				if err != nil {
					return err
				}
				for _, u := range all {
					status := "active"
					if !u.Active {
						status = "inactive"
					}
					cmd.Printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, status)
				}
				return nil
			})
		},
	}

	users.AddCommand(create, list)
	return users
}

func newSessionsCmd(connect connectFunc) *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	sessions.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b *backend) error {
				purged, err := b.services.Auth.PurgeExpiredSessions(ctx)
				if err != nil {
					return fmt.Errorf("purge sessions: %w", err)
				}
				cmd.Printf("purged %d expired sessions\n", purged)
				return nil
			})
		},
	})
	return sessions
}

func newRiskCmd(connect connectFunc) *cobra.Command {
	risk := &cobra.Command{
		Use:   "risk",
		Short: "Contamination risk tools",
	}

	var temperature, humidity, co2 string
	idealRange := monitoringdomain.DefaultIdealRange
	score := &cobra.Command{
		Use:   "score",
		Short: "Score a reading against an ideal range without storing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := idealRange.Validate(); err != nil {
				return err
			}
			var m monitoringdomain.Measurements
			var err error
			if m.Temperature, err = monitoringdomain.NormalizeMeasurement("temperature", temperature); err != nil {
				return err
			}
			if m.Humidity, err = monitoringdomain.NormalizeMeasurement("humidity", humidity); err != nil {
				return err
			}
			if m.CO2, err = monitoringdomain.NormalizeMeasurement("co2", co2); err != nil {
				return err
			}
			points, alerts := monitoringdomain.Score(m, idealRange)
			cmd.Printf("score: %d\n", points)
			for _, alert := range alerts {
				cmd.Printf("- %s\n", alert)
			}
			return nil
		},
	}
	score.Flags().StringVar(&temperature, "temperature", "", "temperature in °C")
	score.Flags().StringVar(&humidity, "humidity", "", "relative humidity in %")
	score.Flags().StringVar(&co2, "co2", "", "CO2 in ppm")
	score.Flags().Float64Var(&idealRange.TempMin, "temp-min", idealRange.TempMin, "ideal minimum temperature")
	score.Flags().Float64Var(&idealRange.TempMax, "temp-max", idealRange.TempMax, "ideal maximum temperature")
	score.Flags().Float64Var(&idealRange.HumidMin, "humid-min", idealRange.HumidMin, "ideal minimum humidity")
	score.Flags().Float64Var(&idealRange.HumidMax, "humid-max", idealRange.HumidMax, "ideal maximum humidity")
	for _, name := range []string{"temperature", "humidity", "co2"} {
		_ = score.MarkFlagRequired(name)
	}

	lots := &cobra.Command{
		Use:   "lots",
		Short: "Print the risk dashboard for every lot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b *backend) error {
				all, err := b.services.Monitoring.AssessAll(ctx)
				if err != nil {
					return err
				}
				for _, r := range all {
					if r.Assessment.Reading == nil {
						cmd.Printf("%s\t-\tno readings\n", r.Lot.Code)
						continue
					}
					cmd.Printf("%s\t%d\t%s\n", r.Lot.Code, r.Assessment.Score, strings.Join(r.Assessment.Alerts, "; "))
				}
				return nil
			})
		},
	}

	risk.AddCommand(score, lots)
	return risk
}
