package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/handlers"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/services"
	"github.com/SAP-F-2025/refdata-service/internal/utils"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
	"github.com/SAP-F-2025/refdata-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(gin.Recovery(), utils.LoggerMiddleware(a.logger), utils.ContextLogger(a.logger))
			handlers.NewHandlerManager(a.services, a.logger).SetupRoutes(router)

			srv := &http.Server{Addr: ":" + a.cfg.Port, Handler: router}
			go func() {
				a.logger.Info("HTTP server listening", "port", a.cfg.Port)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					a.logger.Error("HTTP server failed", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newImportCommand() *cobra.Command {
	var (
		kind         string
		dryRun       bool
		skipExisting bool
		types        []string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.services.Import().Import(cmd.Context(), &services.ImportRequest{
				Kind:              models.ImportKind(kind),
				Source:            services.FileSource{Path: args[0]},
				DryRun:            dryRun,
				SkipExisting:      skipExisting,
				IncludedDataTypes: types,
				Trusted:           true,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if len(resp.Errors) > 0 {
				return fmt.Errorf("import rejected with %d errors", len(resp.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(models.ImportKindReferenceData), "import kind (referenceData or program)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and roll back")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "leave existing rows untouched")
	cmd.Flags().StringSliceVar(&types, "types", nil, "data types to import (default all)")
	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		types                []string
		out                  string
		includeReferenceData bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data types to a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(types) == 0 {
				return fmt.Errorf("--types is required")
			}
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			selection := make(map[int]string, len(types))
			for i, t := range types {
				selection[i] = strings.TrimSpace(t)
			}
			exported, err := a.services.Export().Export(cmd.Context(), &services.ExportRequest{
				IncludedDataTypes:    selection,
				IncludeReferenceData: includeReferenceData,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := workbook.Write(f, exported); err != nil {
				return err
			}
			a.logger.Info("Export written", "file", out, "sheets", len(exported))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&types, "types", nil, "data types to export, in sheet order")
	cmd.Flags().StringVar(&out, "out", "export.xlsx", "output file")
	cmd.Flags().BoolVar(&includeReferenceData, "include-reference-data", false, "include refData translations in the translatedString sheet")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()
			return pkg.MigrateDatabase(a.db)
		},
	}
}
