package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/assist"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// AssistResponse wraps a metadata suggestion.
type AssistResponse struct {
	RecordID   string             `json:"record_id"`
	Suggestion *assist.Suggestion `json:"suggestion"`
}

// AssistEndpoint handles POST /api/records/{id}/assist.
// It asks the configured LLM for LOM metadata suggestions based on the
// record's content. Nothing is stored; editors apply suggestions explicitly.
type AssistEndpoint struct{}

var _ api.Endpoint = (*AssistEndpoint)(nil)

func (e *AssistEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/records/{id}/assist", e.handler
}

func (e *AssistEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Suggest LOM metadata for a record
//	@Description	Ask the configured LLM for keyword, difficulty, and period suggestions
//	@Tags			assist
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	AssistResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/api/records/{id}/assist [post]
func (e *AssistEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	ctx := r.Context()
	store := svcctx.StoreFrom(ctx)
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	client := svcctx.AssistFrom(ctx)
	if !client.Enabled() {
		writeError(w, http.StatusBadRequest, assist.ErrDisabled.Error())
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

	media, err := store.ListMedia(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	req := assist.Request{Title: rec.Title, Description: rec.Description}
	for _, m := range media {
		req.Media = append(req.Media, fmt.Sprintf("%s: %s", m.FileType, m.Label()))
	}

	suggestion, err := client.Suggest(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AssistResponse{RecordID: id, Suggestion: suggestion})
}

func (e *AssistEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "assist <record-id>",
		Short: "Suggest LOM metadata values for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AssistResponse
			path := "/api/records/" + api.PathEscape(args[0]) + "/assist"
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
