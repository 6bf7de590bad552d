package invoicehttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
	"github.com/odyssey-erp/odyssey-invoice/internal/invoice/export"
	"github.com/odyssey-erp/odyssey-invoice/internal/platform/httpx"
)

// DocumentRecorder counts rendered documents per format.
type DocumentRecorder interface {
	ObserveDocument(format string)
}

// Handler serves the invoice editing API.
type Handler struct {
	logger    *slog.Logger
	registry  *Registry
	catalog   invoice.Catalog
	renderer  *export.Renderer
	pdf       *export.PDFExporter
	documents DocumentRecorder
	docLimit  int
	validate  *validator.Validate
}

// defaultDocumentLimit is the per-IP document requests allowed each minute
// when HandlerOptions.DocumentRateLimit is unset.
const defaultDocumentLimit = 10

// HandlerOptions groups Handler dependencies. PDF may be nil when no
// converter is configured.
type HandlerOptions struct {
	Logger    *slog.Logger
	Registry  *Registry
	Catalog   invoice.Catalog
	Renderer  *export.Renderer
	PDF       *export.PDFExporter
	Documents DocumentRecorder
	// DocumentRateLimit caps document requests per client IP per minute.
	DocumentRateLimit int
}

// NewHandler builds Handler instance.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Catalog == nil {
		opts.Catalog = invoice.DefaultCatalog
	}
	if opts.DocumentRateLimit <= 0 {
		opts.DocumentRateLimit = defaultDocumentLimit
	}
	return &Handler{
		logger:    opts.Logger,
		registry:  opts.Registry,
		catalog:   opts.Catalog,
		renderer:  opts.Renderer,
		pdf:       opts.PDF,
		documents: opts.Documents,
		docLimit:  opts.DocumentRateLimit,
		validate:  validator.New(),
	}
}

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.catalog.Items())
}

func (h *Handler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, invoice.PaymentMethods)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	id, session, err := h.registry.Create()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("invoice session opened", slog.String("session_id", id.String()))
	httpx.JSON(w, http.StatusCreated, newSessionView(id, session))
}

func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionView(id, session))
}

func (h *Handler) replaceDraft(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	var draft invoice.InvoiceDraft
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid draft payload")
		return
	}
	draft.PaymentMethod = invoice.ParsePaymentMethod(draft.PaymentMethod.String())
	session.Reset(draft)
	httpx.JSON(w, http.StatusOK, newSessionView(id, session))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.registry.Delete(id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setField(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req fieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := session.SetField(req.Path, req.Value); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionView(id, session))
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req lineRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	index := session.AddLine(req.line())
	httpx.JSON(w, http.StatusCreated, lineCreated{Index: index, Session: newSessionView(id, session)})
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := lineIndex(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req lineFieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := session.UpdateLine(index, invoice.LineField(req.Field), req.Value); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionView(id, session))
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := lineIndex(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := session.RemoveLine(index); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionView(id, session))
}

func (h *Handler) selectCatalogItem(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := lineIndex(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req catalogRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := session.SelectCatalogItem(index, req.Name); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionView(id, session))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.session(w, r)
	if !ok {
		return
	}
	record, err := session.Submit()
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "pdf" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "format must be html or pdf")
		return
	}
	if format == "pdf" && h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Renderer Unavailable", "pdf export is not configured")
		return
	}

	var body []byte
	record, err := session.SubmitWith(func(record invoice.InvoiceRecord) error {
		var err error
		body, err = h.renderDocument(r.Context(), format, record)
		return err
	})
	if err != nil {
		var verr *invoice.ValidationError
		if errors.As(err, &verr) {
			h.respondError(w, err)
			return
		}
		h.logger.Error("render invoice document", slog.Any("error", err),
			slog.String("session_id", id.String()), slog.String("format", format))
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.%s", fileSafe(record.InvoiceNo), format)
	if format == "pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	if h.documents != nil {
		h.documents.ObserveDocument(format)
	}
}

// renderDocument produces the full document body before anything is written.
func (h *Handler) renderDocument(ctx context.Context, format string, record invoice.InvoiceRecord) ([]byte, error) {
	if format == "pdf" {
		pdf, err := h.pdf.RenderPDF(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
		}
		return pdf, nil
	}
	html, err := h.renderer.HTML(record)
	if err != nil {
		return nil, fmt.Errorf("render invoice html: %w", err)
	}
	return []byte(html), nil
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (uuid.UUID, *invoice.Session, bool) {
	id, err := sessionID(r)
	if err != nil {
		h.respondError(w, err)
		return uuid.Nil, nil, false
	}
	session, err := h.registry.Get(id)
	if err != nil {
		h.respondError(w, err)
		return uuid.Nil, nil, false
	}
	return id, session, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *invoice.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.ValidationProblem(w, verr.Notice.Message, verr.Report)
	case errors.Is(err, ErrSessionNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, ErrSessionLimit):
		httpx.Problem(w, http.StatusServiceUnavailable, "Session Limit Reached", err.Error())
	case errors.Is(err, invoice.ErrOutOfRange), errors.Is(err, invoice.ErrUnknownField):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
	default:
		if !errors.Is(err, httpx.ErrBadRequest) && !errors.Is(err, httpx.ErrUpstream) {
			h.logger.Error("invoice request failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return id, nil
}

func lineIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: line index must be a number", httpx.ErrBadRequest)
	}
	return index, nil
}

func fileSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "draft"
	}
	return string(out)
}
