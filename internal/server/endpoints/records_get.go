package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// GetRecordResponse includes the record plus its attached media.
type GetRecordResponse struct {
	*record.Record

	Media []*record.Media `json:"media"`
}

// GetRecordEndpoint handles GET /api/records/{id}.
type GetRecordEndpoint struct{}

var _ api.Endpoint = (*GetRecordEndpoint)(nil)

func (e *GetRecordEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/records/{id}", e.handler
}

func (e *GetRecordEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get record by ID
//	@Description	Get a record with its LOM metadata tree and attached media
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	GetRecordResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/records/{id} [get]
func (e *GetRecordEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	rec, err := store.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	media, err := store.ListMedia(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GetRecordResponse{Record: rec, Media: media})
}

func (e *GetRecordEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a record by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GetRecordResponse
			if err := client.Get(cmd.Context(), "/api/records/"+api.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
