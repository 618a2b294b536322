package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/atlas"
	"github.com/sells-group/water-atlas/internal/export"
	"github.com/sells-group/water-atlas/internal/model"
)

var (
	exportFragment string
	exportFormat   string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the FPU table of a view as CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		write, err := exportWriter(exportFormat)
		if err != nil {
			return err
		}

		svc, err := atlas.FromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		sess, fieldErrs := svc.NewSession(exportFragment)
		for _, fe := range fieldErrs {
			zap.L().Warn("ignoring fragment field", zap.Error(fe))
		}
		if err := sess.Ensure(ctx); err != nil {
			return eris.Wrap(err, "export: load dataset")
		}

		dest := exportOut
		if dest == "" {
			dest = export.Filename(*sess.State().Selections, time.Now(), exportFormat)
		}
		if dest == "-" {
			return write(cmd.OutOrStdout(), sess.Derived())
		}

		if err := writeFile(dest, sess.Derived(), write); err != nil {
			return err
		}
		zap.L().Info("export written", zap.String("path", dest), zap.String("format", exportFormat))
		return nil
	},
}

// writeFile writes series to path. A failed close counts as a failed write.
func writeFile(path string, series *model.Series[model.RegionDatum], write func(io.Writer, *model.Series[model.RegionDatum]) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return eris.Wrap(err, "export: create output")
	}
	if err := write(f, series); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "export: close output")
}

func exportWriter(format string) (func(io.Writer, *model.Series[model.RegionDatum]) error, error) {
	switch format {
	case "csv":
		return export.WriteCSV, nil
	case "xlsx":
		return export.WriteXLSX, nil
	}
	return nil, eris.Errorf("export: unknown format %q (want csv or xlsx)", format)
}

func init() {
	exportCmd.Flags().StringVar(&exportFragment, "fragment", "", "view to export, as a link fragment")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path, - for stdout (default: generated filename)")
	rootCmd.AddCommand(exportCmd)
}
