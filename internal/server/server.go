// Package server exposes blob detection as an HTTP multipart upload endpoint.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blob-recolor/internal/blob"
	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/imageio"
	"blob-recolor/internal/logger"

	"github.com/google/uuid"
)

// Options configures a Server.
type Options struct {
	Addr             string
	TempDir          string
	MaxUploadBytes   int64
	MaxMemoryBytes   int64 // form data above this spills to disk
	MaxSize          int
	DefaultK         int
	DefaultTolerance int
	ThresholdWorkers int
	Logger           logger.Logger
}

// Server handles detection uploads.
type Server struct {
	opts Options
	log  logger.Logger
	mux  *http.ServeMux
}

// New builds a Server; zero options get defaults.
func New(opts Options) *Server {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.MaxMemoryBytes <= 0 {
		opts.MaxMemoryBytes = 8 << 20
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = 1
	}
	s := &Server{
		opts: opts,
		log:  logger.OrNop(opts.Logger),
		mux:  http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /detect", s.handleDetect)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok\n")
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("server", "listening", map[string]interface{}{"addr": s.opts.Addr})

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// request holds the parsed form values.
type request struct {
	target    colorutil.Color
	tolerance int
	k         int
	format    imageio.Format
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxMemoryBytes); err != nil {
		s.fail(w, id, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.parseRequest(r)
	if err != nil {
		s.fail(w, id, http.StatusBadRequest, err)
		return
	}

	path, err := s.storeUpload(r, id)
	if err != nil {
		s.fail(w, id, http.StatusBadRequest, err)
		return
	}
	defer os.Remove(path)

	img, err := imageio.Load(path)
	if err != nil {
		s.fail(w, id, http.StatusBadRequest, err)
		return
	}
	img, err = imageio.Fit(img, s.opts.MaxSize)
	if err != nil {
		s.fail(w, id, http.StatusInternalServerError, err)
		return
	}

	out, err := blob.Process(img, blob.Params{
		Target:           req.target,
		Tolerance:        req.tolerance,
		K:                req.k,
		ThresholdWorkers: s.opts.ThresholdWorkers,
		Logger:           s.log,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, blob.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		s.fail(w, id, status, err)
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, out.Image, req.format); err != nil {
		s.fail(w, id, http.StatusInternalServerError, err)
		return
	}

	sizes := make([]string, len(out.Blobs))
	for i, b := range out.Blobs {
		sizes[i] = strconv.Itoa(b.Size)
	}
	w.Header().Set("Content-Type", req.format.ContentType())
	w.Header().Set("X-Blob-Count", strconv.Itoa(len(out.Blobs)))
	w.Header().Set("X-Blob-Sizes", strings.Join(sizes, ","))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Warning("server", "response write failed", map[string]interface{}{
			"request_id": id,
			"error":      err.Error(),
		})
		return
	}

	s.log.Info("server", "detect served", map[string]interface{}{
		"request_id": id,
		"target":     req.target.Hex(),
		"selected_k": out.Stats.SelectedK,
	})
}

// parseRequest reads the color, tolerance, k and format fields. An RGB
// triple in red/green/blue takes priority; otherwise colorPickerValue
// (#rrggbb) is used.
func (s *Server) parseRequest(r *http.Request) (request, error) {
	req := request{
		tolerance: s.opts.DefaultTolerance,
		k:         s.opts.DefaultK,
		format:    imageio.PNG,
	}

	target, err := parseRGB(r.FormValue("red"), r.FormValue("green"), r.FormValue("blue"))
	if err != nil {
		picker := r.FormValue("colorPickerValue")
		if picker == "" {
			return req, errors.New("enter RGB values or choose a color with the color picker")
		}
		target, err = colorutil.ParseHex(picker)
		if err != nil {
			return req, err
		}
	}
	req.target = target

	if v := r.FormValue("dist"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("dist: %w", err)
		}
		req.tolerance = d
	}
	if v := r.FormValue("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("k: %w", err)
		}
		req.k = k
	}
	if v := r.FormValue("format"); v != "" {
		f, err := imageio.ParseFormat(v)
		if err != nil {
			return req, err
		}
		req.format = f
	}
	return req, nil
}

func parseRGB(rs, gs, bs string) (colorutil.Color, error) {
	var ch [3]uint8
	for i, s := range []string{rs, gs, bs} {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
		if err != nil {
			return colorutil.Color{}, err
		}
		ch[i] = uint8(v)
	}
	return colorutil.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// storeUpload copies the "img" part into TempDir under the request id.
func (s *Server) storeUpload(r *http.Request, id string) (string, error) {
	file, header, err := r.FormFile("img")
	if err != nil {
		return "", fmt.Errorf("img: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(s.opts.TempDir, id+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}

func (s *Server) fail(w http.ResponseWriter, id string, status int, err error) {
	s.log.Error("server", err, map[string]interface{}{
		"request_id": id,
		"status":     status,
	})
	http.Error(w, err.Error(), status)
}
