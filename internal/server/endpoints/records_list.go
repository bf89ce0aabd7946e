package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// ListRecordsResponse wraps the record list.
type ListRecordsResponse struct {
	Records []*record.Record `json:"records"`
	Count   int              `json:"count"`
}

// ListRecordsEndpoint handles GET /api/records.
type ListRecordsEndpoint struct{}

var _ api.Endpoint = (*ListRecordsEndpoint)(nil)

func (e *ListRecordsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/records", e.handler
}

func (e *ListRecordsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List records
//	@Description	List all heritage records, newest first
//	@Tags			records
//	@Produce		json
//	@Success		200	{object}	ListRecordsResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/records [get]
func (e *ListRecordsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	records, err := store.ListRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ListRecordsResponse{Records: records, Count: len(records)})
}

func (e *ListRecordsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListRecordsResponse
			if err := client.Get(cmd.Context(), "/api/records", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
