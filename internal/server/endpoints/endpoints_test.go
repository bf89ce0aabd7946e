package endpoints

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/home"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/svcctx"
)

// testServer wires all endpoints into a mux with live services, the way the
// real server does.
func testServer(t *testing.T) (*httptest.Server, *svcctx.Services) {
	t.Helper()

	homeDir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := homeDir.EnsureExists(); err != nil {
		t.Fatal(err)
	}

	store, err := record.Open(homeDir.DatabasePath())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	services := &svcctx.Services{
		Store:  store,
		Home:   homeDir,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	registry := api.NewRegistry()
	for _, ep := range All(Config{}) {
		registry.Register(ep)
	}

	mux := http.NewServeMux()
	registry.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), services)))
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, services
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func createRecord(t *testing.T, srv *httptest.Server, title string) *record.Record {
	t.Helper()
	var rec record.Record
	status := doJSON(t, http.MethodPost, srv.URL+"/api/records",
		CreateRecordRequest{Title: title, Description: "test record"}, &rec)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	return &rec
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := testServer(t)

	var health HealthResponse
	if status := doJSON(t, http.MethodGet, srv.URL+"/health", nil, &health); status != http.StatusOK {
		t.Errorf("/health status = %d", status)
	}
	if health.Status != "ok" {
		t.Errorf("health.Status = %q", health.Status)
	}

	var ready HealthResponse
	if status := doJSON(t, http.MethodGet, srv.URL+"/ready", nil, &ready); status != http.StatusOK {
		t.Errorf("/ready status = %d", status)
	}
	if ready.Store != "ok" {
		t.Errorf("ready.Store = %q", ready.Store)
	}
}

func TestRecordCRUD(t *testing.T) {
	srv, _ := testServer(t)

	rec := createRecord(t, srv, "Old Mill")

	t.Run("get", func(t *testing.T) {
		var got GetRecordResponse
		status := doJSON(t, http.MethodGet, srv.URL+"/api/records/"+rec.ID, nil, &got)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if got.Title != "Old Mill" {
			t.Errorf("Title = %q", got.Title)
		}
		if len(got.Media) != 0 {
			t.Errorf("Media = %v, want none", got.Media)
		}
	})

	t.Run("list", func(t *testing.T) {
		var got ListRecordsResponse
		status := doJSON(t, http.MethodGet, srv.URL+"/api/records", nil, &got)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if got.Count != 1 {
			t.Errorf("Count = %d", got.Count)
		}
	})

	t.Run("update", func(t *testing.T) {
		var got record.Record
		status := doJSON(t, http.MethodPatch, srv.URL+"/api/records/"+rec.ID,
			UpdateRecordRequest{Status: record.StatusReview}, &got)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if got.Status != record.StatusReview {
			t.Errorf("Status = %q", got.Status)
		}
	})

	t.Run("update invalid status", func(t *testing.T) {
		status := doJSON(t, http.MethodPatch, srv.URL+"/api/records/"+rec.ID,
			UpdateRecordRequest{Status: "archived"}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("delete", func(t *testing.T) {
		status := doJSON(t, http.MethodDelete, srv.URL+"/api/records/"+rec.ID, nil, nil)
		if status != http.StatusNoContent {
			t.Fatalf("status = %d", status)
		}
		status = doJSON(t, http.MethodGet, srv.URL+"/api/records/"+rec.ID, nil, nil)
		if status != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", status)
		}
	})
}

func TestRecordNotFound(t *testing.T) {
	srv, _ := testServer(t)

	var errResp ErrorResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/api/records/no-such-id", nil, &errResp)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if errResp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestCreateRecordRequiresTitle(t *testing.T) {
	srv, _ := testServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/records",
		CreateRecordRequest{Title: "   "}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func attachMedia(t *testing.T, srv *httptest.Server, recordID, fileType, filename, caption string, content []byte) record.Media {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("file_type", fileType); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("caption", caption); err != nil {
		t.Fatal(err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/records/"+recordID+"/media", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("attach status = %d: %s", resp.StatusCode, body)
	}

	var m record.Media
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMediaAttachListDelete(t *testing.T) {
	srv, services := testServer(t)
	rec := createRecord(t, srv, "Cathedral")

	m := attachMedia(t, srv, rec.ID, "image", "facade.jpg", "West facade", []byte("jpeg-bytes"))
	if m.FileType != "image" || m.Caption != "West facade" {
		t.Errorf("media = %+v", m)
	}

	// file landed under the home media dir
	if _, err := filepath.Glob(services.Home.MediaDir(rec.ID) + "/*"); err != nil {
		t.Fatal(err)
	}

	var list ListMediaResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/api/records/"+rec.ID+"/media", nil, &list)
	if status != http.StatusOK || list.Count != 1 {
		t.Fatalf("list status = %d count = %d", status, list.Count)
	}

	status = doJSON(t, http.MethodDelete, srv.URL+"/api/media/"+m.ID, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}

	status = doJSON(t, http.MethodGet, srv.URL+"/api/records/"+rec.ID+"/media", nil, &list)
	if status != http.StatusOK || list.Count != 0 {
		t.Errorf("list after delete: status = %d count = %d", status, list.Count)
	}
}

func TestMediaRejectsWrongExtension(t *testing.T) {
	srv, _ := testServer(t)
	rec := createRecord(t, srv, "Extension test")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("file_type", "image")
	part, _ := mw.CreateFormFile("file", "song.mp3")
	part.Write([]byte("mp3"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/records/"+rec.ID+"/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestLOMRoundTripWithWarnings(t *testing.T) {
	srv, _ := testServer(t)
	rec := createRecord(t, srv, "LOM test")

	t.Run("clean tree", func(t *testing.T) {
		tree := map[string]any{
			"title":    "Cathedral of Light",
			"keywords": []string{"gothic", "architecture"},
		}
		var resp LOMResponse
		status := doJSON(t, http.MethodPut, srv.URL+"/api/records/"+rec.ID+"/lom", tree, &resp)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if len(resp.Warnings) != 0 {
			t.Errorf("Warnings = %v", resp.Warnings)
		}
	})

	t.Run("malformed tree still stored", func(t *testing.T) {
		tree := map[string]any{"title": 42}
		var resp LOMResponse
		status := doJSON(t, http.MethodPut, srv.URL+"/api/records/"+rec.ID+"/lom", tree, &resp)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if len(resp.Warnings) == 0 {
			t.Error("expected shape warnings")
		}

		var got LOMResponse
		status = doJSON(t, http.MethodGet, srv.URL+"/api/records/"+rec.ID+"/lom", nil, &got)
		if status != http.StatusOK {
			t.Fatalf("get status = %d", status)
		}
		if got.LOM["title"] != float64(42) {
			t.Errorf("stored title = %v", got.LOM["title"])
		}
	})
}

func TestExportSCORM(t *testing.T) {
	srv, _ := testServer(t)
	rec := createRecord(t, srv, "Cathedral of Light")

	tree := map[string]any{
		"title":    "Cathedral of Light",
		"keywords": []string{"gothic"},
	}
	if status := doJSON(t, http.MethodPut, srv.URL+"/api/records/"+rec.ID+"/lom", tree, nil); status != http.StatusOK {
		t.Fatalf("set lom status = %d", status)
	}
	attachMedia(t, srv, rec.ID, "image", "facade.jpg", "West facade", []byte("jpeg-bytes"))

	resp, err := http.Get(srv.URL + "/api/records/" + rec.ID + "/export/scorm")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Cathedral-of-Light-scorm12.zip") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}

	want := map[string]bool{
		"imsmanifest.xml":   false,
		"index.html":        false,
		"scorm.js":          false,
		"metadata/lom.json": false,
		"metadata/lom.xml":  false,
	}
	var assetCount int
	for _, f := range zr.File {
		if _, ok := want[f.Name]; ok {
			want[f.Name] = true
		} else if strings.HasPrefix(f.Name, "assets/") {
			assetCount++
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("archive missing %s", name)
		}
	}
	if assetCount != 1 {
		t.Errorf("asset entries = %d, want 1", assetCount)
	}
}

func TestExportSCORMNotFound(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/api/records/missing/export/scorm")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAssistDisabled(t *testing.T) {
	srv, _ := testServer(t)
	rec := createRecord(t, srv, "Assist test")

	var errResp ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/records/"+rec.ID+"/assist", nil, &errResp)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when assist is not configured", status)
	}
}

func TestGuessFileType(t *testing.T) {
	cases := map[string]string{
		"photo.JPG":    "image",
		"clip.webm":    "video",
		"guide.mp3":    "audio",
		"notes.txt":    "document",
		"archive.docx": "",
	}
	for filename, want := range cases {
		if got := guessFileType(filename); got != want {
			t.Errorf("guessFileType(%q) = %q, want %q", filename, got, want)
		}
	}
}
