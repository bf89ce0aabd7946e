package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/scorm"
	"github.com/lompack/lompack/internal/svcctx"
)

// ExportSCORMEndpoint handles GET /api/records/{id}/export/scorm.
// It builds the package on demand and streams the ZIP straight to the client.
type ExportSCORMEndpoint struct{}

var _ api.Endpoint = (*ExportSCORMEndpoint)(nil)

func (e *ExportSCORMEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/records/{id}/export/scorm", e.handler
}

func (e *ExportSCORMEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Export a record as a SCORM package
//	@Description	Build a SCORM 1.2 package from the record's metadata and media and stream the ZIP
//	@Tags			export
//	@Produce		application/zip
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{file}		file
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/records/{id}/export/scorm [get]
func (e *ExportSCORMEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	ctx := r.Context()
	store := svcctx.StoreFrom(ctx)
	homeDir := svcctx.HomeFrom(ctx)
	if store == nil || homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	rec, err := store.GetRecord(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	handles, err := record.ExportHandles(ctx, store, homeDir, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	builder := scorm.Builder{Logger: svcctx.LoggerFrom(ctx)}
	if cm := svcctx.ConfigManagerFrom(ctx); cm != nil {
		builder.SpoolThreshold = cm.Get().SpoolThresholdBytes()
	}

	pkg, err := builder.Build(rec.Title, rec.Description, rec.LOM, handles)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to build package: %v", err))
		return
	}
	defer pkg.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, pkg.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(pkg.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if _, err := io.Copy(w, pkg); err != nil {
		// headers are already out, nothing to do but log
		if logger := svcctx.LoggerFrom(ctx); logger != nil {
			logger.Warn("package download interrupted", "record_id", id, "error", err)
		}
	}
}

func (e *ExportSCORMEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export <record-id>",
		Short: "Export a record as a SCORM 1.2 package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/records/" + api.PathEscape(args[0]) + "/export/scorm"

			// temp file lives next to the final output so the rename
			// stays on one filesystem
			tmp, err := os.CreateTemp(".", ".lompack-export-*.zip")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			filename, err := client.Download(cmd.Context(), path, tmp)
			if closeErr := tmp.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			if outputPath == "" {
				outputPath = filename
			}
			if outputPath == "" {
				outputPath = args[0] + "-scorm12.zip"
			}
			if err := os.Rename(tmp.Name(), outputPath); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}

			fmt.Printf("Downloaded to: %s\n", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	return cmd
}
