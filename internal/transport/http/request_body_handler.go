package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bodylab/internal/errors"
	"bodylab/internal/infrastructure"
	"bodylab/internal/middleware"
	"bodylab/internal/requestbody"
	"bodylab/pkg/contracts/domain"
)

// Route variants
const (
	VariantRawStream = "v1"
	VariantString    = "v2"
	VariantBinder    = "v3"
	VariantEntity    = "v4"
	VariantEcho      = "v5"
)

// RoutePrefix is shared by every request body route
const RoutePrefix = "/request-body-json-"

// helloDataRequest binds a request body through requestbody.Decode so that
// render.Bind applies the same schema as the raw variants
type helloDataRequest struct {
	domain.HelloData
}

// UnmarshalJSON implements json.Unmarshaler
func (req *helloDataRequest) UnmarshalJSON(data []byte) error {
	rec, err := requestbody.Decode(data)
	if err != nil {
		return err
	}
	req.HelloData = rec
	return nil
}

// Bind implements render.Binder. Decode has already checked the schema.
func (req *helloDataRequest) Bind(r *http.Request) error {
	return nil
}

// bindJSON decodes the body as JSON and runs the binder. Unlike render.Bind it
// does not dispatch on the Content-Type header, whose media type is matched
// case-insensitively by ContentTypeValidator but case-sensitively by render.
func bindJSON(r *http.Request, v render.Binder) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return err
	}
	return v.Bind(r)
}

// Entity pairs a bound body with the request headers it arrived with
type Entity[T any] struct {
	Header http.Header
	Body   T
}

// bindEntity binds the request body into a fresh T
func bindEntity[T any, PT interface {
	*T
	render.Binder
}](r *http.Request) (Entity[T], error) {
	var body T
	if err := bindJSON(r, PT(&body)); err != nil {
		return Entity[T]{}, err
	}
	return Entity[T]{Header: r.Header.Clone(), Body: body}, nil
}

// RequestBodyHandler serves the five request body routes
type RequestBodyHandler struct {
	decoder      RequestBodyDecoder
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRequestBodyHandler creates a request body handler. metrics may be nil.
func NewRequestBodyHandler(decoder RequestBodyDecoder, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RequestBodyHandler {
	return &RequestBodyHandler{
		decoder:      decoder,
		metrics:      metrics,
		logger:       logger.With(slog.String("handler", "request_body")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes mounts the request body routes on r
func (h *RequestBodyHandler) RegisterRoutes(r chi.Router) {
	r.Post(RoutePrefix+VariantRawStream, h.RawStream)
	r.Post(RoutePrefix+VariantString, h.StringBody)

	// Object binding needs a JSON message converter
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
		r.Post(RoutePrefix+VariantBinder, h.Binder)
		r.Post(RoutePrefix+VariantEntity, h.EntityBody)
		r.Post(RoutePrefix+VariantEcho, h.Echo)
	})
}

// RawStream handles POST /request-body-json-v1
func (h *RequestBodyHandler) RawStream(w http.ResponseWriter, r *http.Request) {
	h.recordSize(r, VariantRawStream)

	_, err := h.decoder.DecodeReader(r.Context(), r.Body)
	if h.fail(w, r, VariantRawStream, err) {
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(requestbody.RespondFixed())); err != nil {
		infrastructure.WithError(h.logger, err).DebugContext(r.Context(), "response write failed")
	}
}

// StringBody handles POST /request-body-json-v2
func (h *RequestBodyHandler) StringBody(w http.ResponseWriter, r *http.Request) {
	h.recordSize(r, VariantString)

	raw, err := requestbody.ReadBody(r.Body)
	if err == nil {
		_, err = h.decoder.DecodeString(r.Context(), string(raw))
	}
	if h.fail(w, r, VariantString, err) {
		return
	}

	render.PlainText(w, r, requestbody.RespondFixed())
}

// Binder handles POST /request-body-json-v3
func (h *RequestBodyHandler) Binder(w http.ResponseWriter, r *http.Request) {
	h.recordSize(r, VariantBinder)

	req := &helloDataRequest{}
	err := bindJSON(r, req)
	if h.fail(w, r, VariantBinder, err) {
		return
	}

	h.decoder.Observe(r.Context(), req.HelloData)
	render.PlainText(w, r, requestbody.RespondFixed())
}

// EntityBody handles POST /request-body-json-v4
func (h *RequestBodyHandler) EntityBody(w http.ResponseWriter, r *http.Request) {
	h.recordSize(r, VariantEntity)

	entity, err := bindEntity[helloDataRequest](r)
	if h.fail(w, r, VariantEntity, err) {
		return
	}

	h.logger.DebugContext(r.Context(), "entity bound",
		slog.String("content_type", entity.Header.Get("Content-Type")),
		slog.Int("header_count", len(entity.Header)))

	h.decoder.Observe(r.Context(), entity.Body.HelloData)
	render.PlainText(w, r, requestbody.RespondFixed())
}

// Echo handles POST /request-body-json-v5
func (h *RequestBodyHandler) Echo(w http.ResponseWriter, r *http.Request) {
	h.recordSize(r, VariantEcho)

	req := &helloDataRequest{}
	err := bindJSON(r, req)
	if h.fail(w, r, VariantEcho, err) {
		return
	}

	h.decoder.Observe(r.Context(), req.HelloData)
	render.JSON(w, r, requestbody.RespondEcho(req.HelloData))
}

// fail records the decode outcome and, when err is set, answers with a
// problem document. It reports whether the request is finished.
func (h *RequestBodyHandler) fail(w http.ResponseWriter, r *http.Request, variant string, err error) bool {
	if err == nil {
		h.metrics.RecordDecode(r.Context(), variant, requestbody.Outcome(nil))
		return false
	}

	err = requestbody.Classify(err)
	h.metrics.RecordDecode(r.Context(), variant, requestbody.Outcome(err))
	h.errorHandler.HandleError(w, r, err)
	return true
}

func (h *RequestBodyHandler) recordSize(r *http.Request, variant string) {
	if r.ContentLength >= 0 {
		h.metrics.RecordBodySize(r.Context(), variant, int(r.ContentLength))
	}
}
