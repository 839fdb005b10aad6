package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"nepsereport/internal/loader"
	"nepsereport/internal/render"
	"nepsereport/internal/service"
	"nepsereport/pkg/nepsereport"
)

// maxUploadBytes bounds a report request with all three files attached.
const maxUploadBytes = 48 << 20

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": h.hub.Clients(),
	})
}

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.svc.Config())
}

// reportResult is the payload of a successful report request.
type reportResult struct {
	Artifact service.Artifact    `json:"artifact"`
	URL      string              `json:"url"`
	Report   *nepsereport.Report `json:"report"`
}

// createReport builds a report from a multipart form. Each of ledger,
// prices and sectors is either an uploaded file part or an http(s) URL
// field of the same name; missing inputs fall back to configuration.
func (h *handler) createReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeErrorResponse(w, r, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}

	format := render.FormatHTML
	if v := r.FormValue("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			writeErrorResponse(w, r, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	req := service.Request{LedgerSheet: strings.TrimSpace(r.FormValue("sheet"))}
	for _, in := range []struct {
		field string
		dst   *service.Source
	}{
		{"ledger", &req.Ledger},
		{"prices", &req.Prices},
		{"sectors", &req.Sectors},
	} {
		src, err := formSource(r, in.field)
		if err != nil {
			writeErrorResponse(w, r, http.StatusBadRequest, err)
			return
		}
		*in.dst = src
	}

	report, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	opts := render.Options{Markdown: render.MarkdownOptions{Title: r.FormValue("title")}}
	artifact, err := h.svc.Publish(report, format, opts, "api")
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeSuccessWithMessage(w, "report generated", reportResult{
		Artifact: artifact,
		URL:      "/api/reports/" + report.ID + "?format=" + string(format),
		Report:   report,
	})
}

// formSource reads one input from the form. Uploaded files win over URL
// fields. Local paths are refused so clients cannot read server files.
func formSource(r *http.Request, field string) (service.Source, error) {
	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File[field]; len(headers) > 0 {
			doc, err := readUpload(headers[0])
			if err != nil {
				return service.Source{}, err
			}
			return service.Source{Doc: &doc}, nil
		}
	}
	ref := strings.TrimSpace(r.FormValue(field))
	if ref == "" {
		return service.Source{}, nil
	}
	lower := strings.ToLower(ref)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return service.Source{}, nepsereport.NewError(nepsereport.ErrCodeInvalidInput,
			fmt.Sprintf("%s must be an uploaded file or an http(s) URL", field))
	}
	return service.Source{Ref: ref}, nil
}

func readUpload(fh *multipart.FileHeader) (loader.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return loader.Document{}, nepsereport.WrapError(nepsereport.ErrCodeInvalidInput, "open upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return loader.Document{}, nepsereport.WrapError(nepsereport.ErrCodeInvalidInput, "read upload", err)
	}
	return loader.Document{Filename: filepath.Base(fh.Filename), Data: data}, nil
}

func (h *handler) listReports(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	entries, err := h.svc.History(r.Context(), limit, offset)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, entries)
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	var format render.Format
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			writeErrorResponse(w, r, http.StatusBadRequest, err)
			return
		}
		format = f
	}
	artifact, err := h.svc.FindArtifact(chi.URLParam(r, "id"), format)
	if err != nil {
		writeErrorResponse(w, r, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", artifact.Format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, artifact.Path)
}

// getTemplate relays the blank trading journal workbook.
func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	ref := h.svc.Config().TemplateURL
	if ref == "" {
		writeErrorResponse(w, r, http.StatusNotFound,
			nepsereport.NewError(nepsereport.ErrCodeNotFound, "no journal template configured"))
		return
	}
	doc, err := h.svc.Loader().Open(r.Context(), ref)
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

// events streams report notifications over a websocket.
func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "event stream disabled")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	h.hub.AddClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.RemoveClient(conn)
			return
		}
	}
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}
