package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// DeleteRecordEndpoint handles DELETE /api/records/{id}.
type DeleteRecordEndpoint struct{}

var _ api.Endpoint = (*DeleteRecordEndpoint)(nil)

func (e *DeleteRecordEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/records/{id}", e.handler
}

func (e *DeleteRecordEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a record
//	@Description	Delete a record together with its attached media files
//	@Tags			records
//	@Param			id	path	string	true	"Record ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/records/{id} [delete]
func (e *DeleteRecordEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	removed, err := store.DeleteRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Remove media files from disk. The rows are already gone, so failures
	// here only leave orphan files behind.
	homeDir := svcctx.HomeFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())
	if homeDir != nil {
		for _, m := range removed {
			path := filepath.Join(homeDir.Path(), m.Path)
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) && logger != nil {
				logger.Warn("failed to remove media file", "path", path, "error", err)
			}
		}
		_ = os.Remove(homeDir.MediaDir(id))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteRecordEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record and its media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/records/"+api.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Deleted record %s\n", args[0])
			return nil
		},
	}
}
