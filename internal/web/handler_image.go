package web

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vbonduro/lunchroulette/internal/domain"
)

const (
	maxImageSize  = 10 * 1024 * 1024 // 10 MB
	photoMaxWidth = 640
)

// allowedImageTypes is the set of MIME types the proxy will pass through.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing standard (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// handlePhoto proxies a place photo so the maps key never reaches the browser.
func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		http.Error(w, "photo reference required", http.StatusBadRequest)
		return
	}
	if s.images == nil {
		http.Error(w, "images unavailable", http.StatusServiceUnavailable)
		return
	}

	body, _, err := s.images.Photo(r.Context(), ref, photoMaxWidth)
	if err != nil {
		http.Error(w, "failed to fetch photo", http.StatusBadGateway)
		s.logger.Error("fetch photo failed", "error", err)
		return
	}
	s.writeImage(w, body, "photo")
}

// handleMap proxies a static map centered on lat,lng. marker=1 pins the
// center.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}
	if s.images == nil {
		http.Error(w, "images unavailable", http.StatusServiceUnavailable)
		return
	}

	center := domain.GeoPoint{Lat: lat, Lng: lng}
	var marker *domain.GeoPoint
	if q.Get("marker") == "1" {
		marker = &center
	}

	body, _, err := s.images.StaticMap(r.Context(), center, marker)
	if err != nil {
		http.Error(w, "failed to fetch map", http.StatusBadGateway)
		s.logger.Error("fetch static map failed", "error", err)
		return
	}
	s.writeImage(w, body, "map")
}

// writeImage relays an upstream image after checking it really is one; the
// upstream Content-Type is not trusted.
func (s *Server) writeImage(w http.ResponseWriter, body io.ReadCloser, label string) {
	defer closeWithLog(body, label, s.logger)

	data, err := io.ReadAll(io.LimitReader(body, maxImageSize+1))
	if err != nil {
		http.Error(w, "failed to read image", http.StatusBadGateway)
		s.logger.Error("read image failed", "label", label, "error", err)
		return
	}
	if len(data) > maxImageSize {
		http.Error(w, "image too large", http.StatusBadGateway)
		return
	}

	mimeType, ok := allowedImageMIME(data)
	if !ok {
		http.Error(w, "upstream returned a non-image", http.StatusBadGateway)
		s.logger.Warn("rejected non-image upstream response", "label", label)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		s.logger.Error("write image failed", "label", label, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
