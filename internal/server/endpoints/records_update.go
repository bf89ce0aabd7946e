package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// UpdateRecordRequest is the body for record updates. Empty fields are left
// unchanged.
type UpdateRecordRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UpdateRecordEndpoint handles PATCH /api/records/{id}.
type UpdateRecordEndpoint struct{}

var _ api.Endpoint = (*UpdateRecordEndpoint)(nil)

func (e *UpdateRecordEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PATCH", "/api/records/{id}", e.handler
}

func (e *UpdateRecordEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update a record
//	@Description	Update record title, description, or status (draft, review, published)
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Record ID"
//	@Param			record	body		UpdateRecordRequest	true	"Fields to update"
//	@Success		200		{object}	record.Record
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/records/{id} [patch]
func (e *UpdateRecordEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	var req UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	rec, err := store.UpdateRecord(r.Context(), id, req.Title, req.Description, req.Status)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		if errors.Is(err, record.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (e *UpdateRecordEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := UpdateRecordRequest{Title: title, Description: description, Status: status}
			var resp record.Record
			if err := client.Patch(cmd.Context(), "/api/records/"+api.PathEscape(args[0]), req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (draft, review, published)")
	return cmd
}
