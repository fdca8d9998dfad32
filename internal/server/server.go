package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/iwvelando/tax-impact/pkg/output"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	calc        *tax.Calculator
	currency    string
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the tax API.
func NewHandler(logger *zap.Logger, calc *tax.Calculator, currency string, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		calc:        calc,
		currency:    strings.TrimSpace(currency),
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Tax computation for one income (GET query or POST JSON body)
	mux.HandleFunc("/api/tax", h.handleTax)

	// Configured brackets and sector weights
	mux.HandleFunc("/api/schedule", h.handleSchedule)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return correlationMiddleware(logger, mux)
}

type taxRequest struct {
	Income interface{} `json:"income"`
}

func (h *handler) handleTax(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTax"

	var result tax.Result
	switch r.Method {
	case http.MethodGet:
		result = h.calc.CalculateString(r.URL.Query().Get("income"))
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

		var req taxRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.respondError(w, r, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
				return
			}
			h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
			return
		}
		result = h.calculate(r.Context(), req.Income)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, output.NewReport(h.currency, result))
}

// calculate accepts the JSON forms an income may arrive in. Anything that is
// neither a number nor a string is computed as zero income.
func (h *handler) calculate(ctx context.Context, raw interface{}) tax.Result {
	switch v := raw.(type) {
	case float64:
		return h.calc.Calculate(v)
	case string:
		return h.calc.CalculateString(v)
	case nil:
		return h.calc.Calculate(0)
	default:
		h.logger.Debug("unsupported income type, using zero",
			zap.String("op", "server.calculate"),
			zap.String("correlation_id", CorrelationID(ctx)),
			zap.String("type", fmt.Sprintf("%T", raw)),
		)
		return h.calc.Calculate(0)
	}
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, output.NewScheduleView(h.currency, h.calc.Schedule(), h.calc.Sectors()))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("tax request failed",
		zap.String("op", op),
		zap.String("correlation_id", CorrelationID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Serve runs the API on address until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, logger *zap.Logger, address string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "server.Serve"),
			zap.String("address", address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down server", zap.String("op", "server.Serve"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
