package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"pms/internal/database"
	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/config"
	"pms/pkg/events"
	"pms/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env 命令运行所需的连接
type env struct {
	db     *gorm.DB
	broker events.Broker
}

func (e *env) Close() {
	if e.broker != nil {
		e.broker.Close()
	}
	database.Close()
	database.CloseRedis()
}

// openEnv 加载配置并连接数据库，迁移后返回
func openEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	config.SetConfig(cfg)

	if err := logger.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %v", err)
	}
	if err := database.Initialize(cfg); err != nil {
		return nil, err
	}
	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		database.Close()
		return nil, fmt.Errorf("数据库迁移失败: %v", err)
	}

	// 启用Redis时，运行中的服务端仪表盘也能收到变更
	broker, err := database.NewEventBroker(cfg, logger.GetLogger())
	if err != nil {
		database.Close()
		return nil, err
	}
	return &env{db: db, broker: broker}, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample landlord, tenant, unit and lease",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			contacts := services.NewContactService(e.db, e.broker)
			units := services.NewUnitService(e.db, e.broker)
			leases := services.NewLeaseService(e.db, e.broker)
			result, err := services.NewSeedService(e.db, contacts, units, leases).LoadSampleData(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Skipped {
				fmt.Fprintln(out, "Sample data already loaded.")
				return nil
			}
			fmt.Fprintf(out, "Created landlord: %s\n", result.Landlord)
			fmt.Fprintf(out, "Created tenant: %s\n", result.Tenant)
			fmt.Fprintf(out, "Created unit: %s\n", result.Unit)
			fmt.Fprintf(out, "Created lease: %s\n", result.Lease)
			return nil
		},
	}
}

func createSuperuserCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := services.NewUserService(e.db).Create(cmd.Context(), username, email, password, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %d).\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	cmd.MarkFlagRequired("password")
	return cmd
}

func apiKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Generate a new API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			key, err := services.NewAPIKeyService(e.db).Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key %q (id %d): %s\n", key.Name, key.ID, key.Key)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			keys, err := services.NewAPIKeyService(e.db).List(cmd.Context())
			if err != nil {
				return err
			}
			printKeys(cmd.OutOrStdout(), keys)
			return nil
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke ID",
		Short: "Deactivate an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := services.NewAPIKeyService(e.db).Revoke(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key %d revoked.\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, list, revoke)
	return cmd
}

func printKeys(out io.Writer, keys []models.APIKey) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKEY\tACTIVE\tLAST USED")
	for i := range keys {
		k := &keys[i]
		lastUsed := "-"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", k.ID, k.Name, k.Masked(), k.IsActive, lastUsed)
	}
	w.Flush()
}
