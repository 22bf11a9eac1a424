package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"excursion-catalog/internal/config"
	"excursion-catalog/internal/export"
	"excursion-catalog/internal/sftpclient"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportCSVName string
	exportXMLName string
	exportSFTP    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the normalized catalog as CSV and an XML feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := loadCatalog(ctx)
		if err != nil {
			return err
		}
		items := store.Excursions()

		if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
			return err
		}
		csvPath := filepath.Join(cfg.ExportDir, exportCSVName)
		xmlPath := filepath.Join(cfg.ExportDir, exportXMLName)

		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		if err := export.WriteCSV(f, items); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		err = export.WriteFeedXML(xmlPath, items, export.FeedConfig{Operation: "upsert", Generated: time.Now()})
		if err != nil {
			return err
		}
		logger.Info("export written",
			zap.Int("excursions", len(items)),
			zap.String("csv", csvPath),
			zap.String("xml", xmlPath))

		if exportSFTP {
			if err := sftpclient.UploadFiles(ctx, sftpConfig(), csvPath, xmlPath); err != nil {
				return fmt.Errorf("upload: %w", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d excursions to %s and %s\n", len(items), csvPath, xmlPath)
		return nil
	},
}

func sftpConfig() sftpclient.Config {
	return sftpclient.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPass,
		RemoteDir:             cfg.SFTPDir,
		KnownHosts:            cfg.SFTPKnownHosts,
		InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		Logger:                logger,
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("dir", "o", "", "output directory")
	exportCmd.Flags().StringVar(&exportCSVName, "csv", "excursions.csv", "CSV file name")
	exportCmd.Flags().StringVar(&exportXMLName, "xml", "excursions.xml", "XML feed file name")
	exportCmd.Flags().BoolVar(&exportSFTP, "sftp", false, "upload the generated files via SFTP")
	exportCmd.Flags().StringP("file", "f", "", "read the catalog from a local JSON file")
	bindFlag(exportCmd, "dir", config.KeyExportDir)
	bindFlag(exportCmd, "file", config.KeyCatalogFile)
}
