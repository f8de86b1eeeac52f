package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/redone-net/marketplace/pkg/httperr"
)

const maxImageSize = 10 << 20

// isJpeg accepts the content types browsers historically send for JPEG.
func isJpeg(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return true
	}

	return false
}

func (h *HTTPTransport) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "invalid multipart form"))
		slog.Error("Error parsing multipart form", "error", err, "product_id", id)

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "image file is required"))

		return
	}
	defer file.Close()

	if !isJpeg(header.Header.Get("Content-Type")) {
		httperr.Write(w, httperr.New(httperr.KindValidation, "only jpeg images are accepted"))

		return
	}

	if err := h.service.SaveImage(r.Context(), id, file); err != nil {
		httperr.Write(w, err)
		slog.Error("Error saving product image", "error", err, "product_id", id)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) serveProductImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	idRaw, found := strings.CutSuffix(name, ".jpg")
	if !found {
		httperr.Write(w, httperr.New(httperr.KindNotFound, "image not found"))

		return
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		httperr.Write(w, httperr.New(httperr.KindNotFound, "image not found"))

		return
	}

	path, err := h.service.ImageFile(id)
	if err != nil {
		httperr.Write(w, err)

		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, path)
}
