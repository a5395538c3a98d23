package commands

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratalab/gensync/errors"
)

// NewFilesCommand shows a project's generated files, optionally writing them
// to a local directory.
func NewFilesCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "files <project-id>",
		Short: "Show a project's generated files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup()
			if err != nil {
				return err
			}

			files, err := client.SandpackFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(files.Files) == 0 {
				pterm.Info.Println("No generated files")
				return nil
			}

			if outDir != "" {
				return writeFiles(outDir, files.Files)
			}

			rows := pterm.TableData{{"Path", "Size"}}
			for path, content := range files.Files {
				rows = append(rows, []string{path, pterm.Sprintf("%d bytes", len(content))})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write files under this directory instead of listing them")
	return cmd
}

func writeFiles(dir string, files map[string]string) error {
	for path, content := range files {
		dst := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", path)
		}
		if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	pterm.Success.Printf("Wrote %d file(s) to %s\n", len(files), dir)
	return nil
}
