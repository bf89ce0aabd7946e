package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/scorm"
	"github.com/lompack/lompack/internal/svcctx"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20 // 32MB

// AttachMediaEndpoint handles POST /api/records/{id}/media with a multipart
// file upload.
type AttachMediaEndpoint struct{}

var _ api.Endpoint = (*AttachMediaEndpoint)(nil)

func (e *AttachMediaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/records/{id}/media", e.handler
}

func (e *AttachMediaEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Attach media to a record
//	@Description	Upload a media file (image, audio, video, or document) to a record
//	@Tags			media
//	@Accept			mpfd
//	@Produce		json
//	@Param			id			path		string	true	"Record ID"
//	@Param			file		formData	file	true	"Media file"
//	@Param			file_type	formData	string	true	"Media category (image, audio, video, document)"
//	@Param			caption		formData	string	false	"Display caption"
//	@Param			alt_text	formData	string	false	"Alternative text"
//	@Success		201			{object}	record.Media
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/records/{id}/media [post]
func (e *AttachMediaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	store := svcctx.StoreFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	if store == nil || homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	m, err := record.AttachMedia(r.Context(), store, homeDir, record.AttachRequest{
		RecordID: id,
		FileType: r.FormValue("file_type"),
		Filename: header.Filename,
		Caption:  r.FormValue("caption"),
		AltText:  r.FormValue("alt_text"),
		Content:  file,
	})
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (e *AttachMediaEndpoint) Command(getServerURL func() string) *cobra.Command {
	var fileType, caption, altText string
	cmd := &cobra.Command{
		Use:   "attach <record-id> <file>",
		Short: "Attach a media file to a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileType == "" {
				fileType = guessFileType(args[1])
			}

			client := api.NewClient(getServerURL())
			fields := map[string]string{
				"file_type": fileType,
				"caption":   caption,
				"alt_text":  altText,
			}
			var resp record.Media
			path := "/api/records/" + api.PathEscape(args[0]) + "/media"
			if err := client.PostFile(cmd.Context(), path, args[1], fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&fileType, "type", "t", "", "Media category (image, audio, video, document); guessed from the extension if omitted")
	cmd.Flags().StringVarP(&caption, "caption", "c", "", "Display caption")
	cmd.Flags().StringVar(&altText, "alt", "", "Alternative text")
	return cmd
}

// guessFileType maps a filename extension to its media category.
func guessFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return string(scorm.KindImage)
	case ".mp3", ".wav":
		return string(scorm.KindAudio)
	case ".mp4", ".webm":
		return string(scorm.KindVideo)
	case ".pdf", ".txt", ".html":
		return string(scorm.KindDocument)
	}
	return ""
}

// ListMediaResponse wraps a record's media list.
type ListMediaResponse struct {
	Media []*record.Media `json:"media"`
	Count int             `json:"count"`
}

// ListMediaEndpoint handles GET /api/records/{id}/media.
type ListMediaEndpoint struct{}

var _ api.Endpoint = (*ListMediaEndpoint)(nil)

func (e *ListMediaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/records/{id}/media", e.handler
}

func (e *ListMediaEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List record media
//	@Description	List the media files attached to a record, in upload order
//	@Tags			media
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	ListMediaResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/records/{id}/media [get]
func (e *ListMediaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	if _, err := store.GetRecord(r.Context(), id); err != nil {
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

	writeJSON(w, http.StatusOK, ListMediaResponse{Media: media, Count: len(media)})
}

func (e *ListMediaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "media <record-id>",
		Short: "List a record's media files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListMediaResponse
			path := "/api/records/" + api.PathEscape(args[0]) + "/media"
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteMediaEndpoint handles DELETE /api/media/{id}.
type DeleteMediaEndpoint struct{}

var _ api.Endpoint = (*DeleteMediaEndpoint)(nil)

func (e *DeleteMediaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/media/{id}", e.handler
}

func (e *DeleteMediaEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a media file
//	@Description	Remove a media file from its record and delete it from disk
//	@Tags			media
//	@Param			id	path	string	true	"Media ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/media/{id} [delete]
func (e *DeleteMediaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "media id is required")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	m, err := store.DeleteMedia(r.Context(), id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if homeDir := svcctx.HomeFrom(r.Context()); homeDir != nil {
		path := filepath.Join(homeDir.Path(), m.Path)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Warn("failed to remove media file", "path", path, "error", err)
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteMediaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-media <media-id>",
		Short: "Delete a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/media/"+api.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Deleted media %s\n", args[0])
			return nil
		},
	}
}
