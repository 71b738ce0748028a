package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/parle/config"
	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/model"
	"github.com/jsphweid/parle/util"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default "+config.DefaultConfig().Server.Addr+")")
	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves compress and decompress over HTTP",
	Long: `Serves the codec over HTTP:

  POST /compress    body: raw bytes        -> container bytes
  POST /decompress  body: container bytes  -> raw bytes
  POST /inspect     body: container bytes  -> JSON header summary
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// Server holds the handlers. Its config, including the CORS origins, can be
// swapped while serving.
type Server struct {
	cfg  atomic.Pointer[config.Config]
	cors atomic.Pointer[cors.Cors]
}

func NewServer(c *config.Config) *Server {
	s := &Server{}
	s.SetConfig(c)
	return s
}

func (s *Server) SetConfig(c *config.Config) {
	s.cfg.Store(c)
	s.cors.Store(cors.New(cors.Options{
		AllowedOrigins: c.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{"X-Parle-Mode", "X-Parle-Raw-Size", "X-Parle-Digest", "X-Request-Id"},
	}))
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/compress", s.HandleCompress).Methods("POST")
	router.HandleFunc("/decompress", s.HandleDecompress).Methods("POST")
	router.HandleFunc("/inspect", s.HandleInspect).Methods("POST")
	router.HandleFunc("/healthz", handleHealth).Methods("GET")
	router.Use(requestID)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.cors.Load().ServeHTTP(w, r, router.ServeHTTP)
	})
}

func (s *Server) HandleCompress(w http.ResponseWriter, r *http.Request) {
	c := s.cfg.Load()
	body, ok := readBody(w, r, c.Server.MaxBodyBytes)
	if !ok {
		return
	}

	packed, stats, err := container.Compress(body, container.WithWorkers(c.Workers))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Parle-Mode", string(rune(stats.Mode)))
	w.Header().Set("X-Parle-Raw-Size", strconv.Itoa(stats.RawSize))
	w.Header().Set("X-Parle-Digest", util.Digest(body))
	writeBytes(w, packed)
}

func (s *Server) HandleDecompress(w http.ResponseWriter, r *http.Request) {
	c := s.cfg.Load()
	body, ok := readBody(w, r, c.Server.MaxBodyBytes)
	if !ok {
		return
	}

	raw, stats, err := container.Decompress(body, container.WithWorkers(c.Workers))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Parle-Mode", string(rune(stats.Mode)))
	w.Header().Set("X-Parle-Digest", util.Digest(raw))
	writeBytes(w, raw)
}

func (s *Server) HandleInspect(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, s.cfg.Load().Server.MaxBodyBytes)
	if !ok {
		return
	}

	h, err := container.Inspect(body)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.InspectResponse{
		Mode:        h.Mode.String(),
		PayloadSize: h.PayloadSize,
		Pairs:       h.Pairs,
		DecodedSize: h.DecodedSize,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok\n")
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeJSONError(w, http.StatusBadRequest, "could not read request body: "+err.Error())
		return nil, false
	}
	return body, true
}

func writeBytes(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	if model.IsFormatError(err) {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logger.Printf("request failed: %v", err)
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: detail})
}

func serve(ctx context.Context) error {
	s := NewServer(cfg)
	if cfgFile != "" {
		config.Watch(v, logger, func(c *config.Config) {
			if c.Server.Addr != s.cfg.Load().Server.Addr {
				logger.Printf("server.addr changed to %s; restart to apply", c.Server.Addr)
			}
			s.SetConfig(c)
		})
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
