package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// CreateRecordRequest is the body for record creation.
type CreateRecordRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateRecordEndpoint handles POST /api/records.
type CreateRecordEndpoint struct{}

var _ api.Endpoint = (*CreateRecordEndpoint)(nil)

func (e *CreateRecordEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/records", e.handler
}

func (e *CreateRecordEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create a record
//	@Description	Create a new draft heritage record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			record	body		CreateRecordRequest	true	"Record fields"
//	@Success		201		{object}	record.Record
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/records [post]
func (e *CreateRecordEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	rec, err := store.CreateRecord(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (e *CreateRecordEndpoint) Command(getServerURL func() string) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp record.Record
			req := CreateRecordRequest{Title: args[0], Description: description}
			if err := client.Post(cmd.Context(), "/api/records", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Record description")
	return cmd
}
