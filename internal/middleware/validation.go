package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/samber/lo"

	apierrors "bodylab/internal/errors"
)

// ContentTypeValidator ensures requests carrying a body declare one of the
// given media types. Parameters such as charset are ignored when matching and
// the header is rewritten in lower case before the request is passed on.
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	allowed := lo.Map(contentTypes, func(ct string, _ int) string {
		return strings.ToLower(ct)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				errorHandler.HandleError(w, r, apierrors.ErrMissingContentType)
				return
			}

			mediaType, params, err := mime.ParseMediaType(contentType)
			if err != nil || !lo.Contains(allowed, mediaType) {
				errorHandler.HandleError(w, r, apierrors.UnsupportedMediaType(contentType, contentTypes))
				return
			}

			// downstream decoders see the media type in the form it was matched in
			normalized := mime.FormatMediaType(mediaType, params)
			if normalized == "" {
				normalized = mediaType
			}
			r.Header.Set("Content-Type", normalized)

			next.ServeHTTP(w, r)
		})
	}
}
