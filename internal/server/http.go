package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc/codes"

	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/territory"
)

const maxBodyBytes = 5 << 20

// HTTPHandler serves the territory manager API and quote parsing over JSON.
type HTTPHandler struct {
	territories *territory.Service
	quotes      TextProcessor
	logger      *slog.Logger
}

// NewHTTPHandler returns the routed handler. quotes may be nil, which
// leaves POST /api/quotes/parse unregistered.
func NewHTTPHandler(territories *territory.Service, quotes TextProcessor, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HTTPHandler{territories: territories, quotes: quotes, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.recoverer)
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/environment", h.getEnvironment)
		r.Post("/environment/switch", h.switchEnvironment)

		r.Get("/territories", h.listTerritories)
		r.Post("/territories/bulk", h.bulkImport)
		r.Post("/territories/add", h.addTerritory)
		r.Post("/territories/remove", h.removeTerritory)
		r.Get("/territories/search/{zipCode}", h.searchTerritory)
		r.Get("/territories/export", h.exportTerritories)

		r.Post("/test/sample", h.loadSamples)
		r.Post("/test/clear", h.clearTerritories)

		if quotes != nil {
			r.Post("/quotes/parse", h.parseQuote)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found.")
	})
	return r
}

func (h *HTTPHandler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("http.panic", "path", r.URL.Path, "panic", rec, "request_id", middleware.GetReqID(r.Context()))
				writeError(w, http.StatusInternalServerError, "Unexpected server error.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) getEnvironment(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"environment": h.territories.Environment()})
}

func (h *HTTPHandler) switchEnvironment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Environment string `json:"environment"`
	}
	// an empty body toggles
	if err := decodeOptionalJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	res, err := h.territories.SwitchEnvironment(r.Context(), body.Environment)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) listTerritories(w http.ResponseWriter, r *http.Request) {
	ov, err := h.territories.Overview(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *HTTPHandler) bulkImport(w http.ResponseWriter, r *http.Request) {
	payload, err := csvPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	summary, err := h.territories.ImportCSV(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	code := http.StatusOK
	if summary.Failed() {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]any{"message": summary.Message(), "summary": summary})
}

// csvPayload accepts a raw text/csv body or JSON carrying csvData or csv.
func csvPayload(r *http.Request) (string, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		return string(raw), nil
	}
	var body struct {
		CSVData string `json:"csvData"`
		CSV     string `json:"csv"`
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}
	if body.CSVData != "" {
		return body.CSVData, nil
	}
	return body.CSV, nil
}

func (h *HTTPHandler) addTerritory(w http.ResponseWriter, r *http.Request) {
	var req territory.UpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	rec, updated, err := h.territories.Upsert(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if updated {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Zip updated.", "record": rec})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Zip added.", "record": rec})
}

func (h *HTTPHandler) removeTerritory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ZipCode string `json:"zipCode"`
	}
	if err := decodeOptionalJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	zip, err := h.territories.Remove(r.Context(), body.ZipCode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Removed zip " + zip + "."})
}

func (h *HTTPHandler) searchTerritory(w http.ResponseWriter, r *http.Request) {
	rec, err := h.territories.Search(r.Context(), chi.URLParam(r, "zipCode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (h *HTTPHandler) exportTerritories(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.territories.ExportCSV(r.Context(), &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="territories-export.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *HTTPHandler) loadSamples(w http.ResponseWriter, r *http.Request) {
	res, err := h.territories.LoadSamples(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) clearTerritories(w http.ResponseWriter, r *http.Request) {
	if _, err := h.territories.ClearAll(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All territories cleared for TEST mode."})
}

// parseQuote accepts plain quote text, or JSON {"text": ..., "source": ...}.
func (h *HTTPHandler) parseQuote(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	source, text := "http", string(raw)
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		var body struct {
			Text   string `json:"text"`
			Source string `json:"source"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		text = body.Text
		if strings.TrimSpace(body.Source) != "" {
			source = strings.TrimSpace(body.Source)
		}
	}

	ctx := common.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	out, err := h.quotes.ProcessText(ctx, source, text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"jobId": out.JobID, "draft": out.Draft})
}

// fail maps err onto an HTTP status and the user facing message.
func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch common.StatusCode(err) {
	case codes.InvalidArgument:
		code = http.StatusBadRequest
	case codes.NotFound:
		code = http.StatusNotFound
	case codes.PermissionDenied:
		code = http.StatusForbidden
	case codes.FailedPrecondition:
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		h.logger.Error("http.request.failed", "path", r.URL.Path, "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, code, "Unexpected server error.")
		return
	}
	writeError(w, code, errorMessage(err))
}

func errorMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
