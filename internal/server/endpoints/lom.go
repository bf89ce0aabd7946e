package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// LOMResponse carries a record's LOM metadata tree plus any shape warnings.
type LOMResponse struct {
	RecordID string         `json:"record_id"`
	LOM      map[string]any `json:"lom"`
	Warnings []string       `json:"warnings,omitempty"`
}

// GetLOMEndpoint handles GET /api/records/{id}/lom.
type GetLOMEndpoint struct{}

var _ api.Endpoint = (*GetLOMEndpoint)(nil)

func (e *GetLOMEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/records/{id}/lom", e.handler
}

func (e *GetLOMEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get record LOM metadata
//	@Description	Get a record's LOM metadata tree with advisory shape warnings
//	@Tags			lom
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	LOMResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/records/{id}/lom [get]
func (e *GetLOMEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, LOMResponse{
		RecordID: rec.ID,
		LOM:      rec.LOM,
		Warnings: record.ValidateLOM(rec.LOM),
	})
}

func (e *GetLOMEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "lom <record-id>",
		Short: "Get a record's LOM metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LOMResponse
			path := "/api/records/" + api.PathEscape(args[0]) + "/lom"
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SetLOMEndpoint handles PUT /api/records/{id}/lom.
// The tree is stored as given; shape warnings come back in the response but
// never block the write.
type SetLOMEndpoint struct{}

var _ api.Endpoint = (*SetLOMEndpoint)(nil)

func (e *SetLOMEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/records/{id}/lom", e.handler
}

func (e *SetLOMEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Replace record LOM metadata
//	@Description	Replace a record's LOM metadata tree. Shape mismatches are returned as warnings, not errors.
//	@Tags			lom
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string			true	"Record ID"
//	@Param			lom	body		map[string]any	true	"LOM metadata tree"
//	@Success		200	{object}	LOMResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/records/{id}/lom [put]
func (e *SetLOMEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	var tree map[string]any
	if err := json.NewDecoder(r.Body).Decode(&tree); err != nil {
		writeError(w, http.StatusBadRequest, "invalid LOM tree")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	if err := store.SetLOM(r.Context(), id, tree); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LOMResponse{
		RecordID: id,
		LOM:      tree,
		Warnings: record.ValidateLOM(tree),
	})
}

func (e *SetLOMEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-lom <record-id> <lom.json>",
		Short: "Replace a record's LOM metadata from a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var tree map[string]any
			if err := json.Unmarshal(data, &tree); err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp LOMResponse
			path := "/api/records/" + api.PathEscape(args[0]) + "/lom"
			if err := client.Put(cmd.Context(), path, tree, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
