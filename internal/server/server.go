package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-datetools/internal/config"
	"github.com/tartampluch/go-datetools/internal/engine"
)

// indexItem stores the rendered API index document and its metadata for HTTP caching.
type indexItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// APIServer exposes the date calculations as a local JSON API.
type APIServer struct {
	// index uses atomic.Pointer for lock-free reads.
	// The index document is read frequently but replaced only on startup
	// (or a future reload), so this avoids RWMutex contention on the hot path.
	index atomic.Pointer[indexItem]
	Port  string
}

// NewAPIServer creates a new instance of the server.
func NewAPIServer(port string) *APIServer {
	return &APIServer{
		Port: port,
	}
}

// endpointDoc describes one route in the index document served at "/".
type endpointDoc struct {
	Route  string   `json:"route"`
	Params []string `json:"params"`
	Doc    string   `json:"doc"`
}

// IndexDocument renders the static API index served at the root route.
func IndexDocument() ([]byte, error) {
	doc := struct {
		App       string        `json:"app"`
		Version   string        `json:"version"`
		Endpoints []endpointDoc `json:"endpoints"`
	}{
		App:     config.AppName,
		Version: config.Version,
		Endpoints: []endpointDoc{
			{config.RouteLeap, []string{config.ParamYear}, "Leap-year check for a Gregorian calendar year"},
			{config.RouteAngle, []string{config.ParamAt}, "Non-reflex angle between clock hands at an instant (radians)"},
			{config.RouteSpan, []string{config.ParamStart, config.ParamEnd}, "Elapsed time between two instants as HH:mm:ss.sss"},
			{config.RouteParse, []string{config.ParamValue}, "Parse an RFC 2822 or ISO 8601 date string"},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrIndexEncode, err)
	}
	return data, nil
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *APIServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return fmt.Errorf(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleIndex)
	mux.HandleFunc(config.RouteLeap, s.handleLeap)
	mux.HandleFunc(config.RouteAngle, s.handleAngle)
	mux.HandleFunc(config.RouteSpan, s.handleSpan)
	mux.HandleFunc(config.RouteParse, s.handleParse)

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served index document.
func (s *APIServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	lastMod := time.Now().UTC().Format(http.TimeFormat)

	item := &indexItem{
		data:         data,
		etag:         etag,
		lastModified: lastMod,
	}

	// Atomic store ensures that any concurrent reader sees either the old or the new complete item,
	// never a partial state.
	s.index.Store(item)

	slog.Debug(config.MsgIndexUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// checkMethod rejects anything but GET and HEAD. It reports whether the
// request may proceed.
func checkMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeJSON emits a JSON document with the standard response headers.
// HEAD requests get headers only.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrRespEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// errorResponse is the uniform error body for bad requests.
type errorResponse struct {
	Error string `json:"error"`
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}

// queryInstant reads and parses an instant-valued query parameter, accepting
// both supported grammars.
func queryInstant(r *http.Request, param string) (time.Time, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s: %s", config.ErrParamMissing, param)
	}
	at, _, err := engine.ParseAny(value)
	return at, err
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

type leapResponse struct {
	Year int  `json:"year"`
	Leap bool `json:"leap"`
}

func (s *APIServer) handleLeap(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}

	yearStr := r.URL.Query().Get(config.ParamYear)
	if yearStr == "" {
		writeBadRequest(w, r, fmt.Sprintf("%s: %s", config.ErrParamMissing, config.ParamYear))
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeBadRequest(w, r, config.ErrYearNumber)
		return
	}

	writeJSON(w, r, http.StatusOK, leapResponse{Year: year, Leap: engine.IsLeapYear(year)})
}

type angleResponse struct {
	At      string  `json:"at"`
	Radians float64 `json:"radians"`
	Degrees float64 `json:"degrees"`
}

func (s *APIServer) handleAngle(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}

	at, err := queryInstant(r, config.ParamAt)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, angleResponse{
		At:      engine.FormatISO8601(at),
		Radians: engine.ClockHandsAngle(at),
		Degrees: engine.ClockHandsDegrees(at),
	})
}

type spanResponse struct {
	Span         string `json:"span"`
	Milliseconds int64  `json:"milliseconds"`
}

func (s *APIServer) handleSpan(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}

	start, err := queryInstant(r, config.ParamStart)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	end, err := queryInstant(r, config.ParamEnd)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	span, err := engine.TimeSpanToString(start, end)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, spanResponse{
		Span:         span,
		Milliseconds: end.Sub(start).Milliseconds(),
	})
}

type parseResponse struct {
	UnixMs  int64  `json:"unix_ms"`
	ISO8601 string `json:"iso8601"`
	RFC2822 string `json:"rfc2822"`
	Grammar string `json:"grammar"`
}

func (s *APIServer) handleParse(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}

	value := r.URL.Query().Get(config.ParamValue)
	if value == "" {
		writeBadRequest(w, r, fmt.Sprintf("%s: %s", config.ErrParamMissing, config.ParamValue))
		return
	}

	at, grammar, err := engine.ParseAny(value)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, parseResponse{
		UnixMs:  at.UnixMilli(),
		ISO8601: engine.FormatISO8601(at),
		RFC2822: engine.FormatRFC2822(at),
		Grammar: grammar,
	})
}

// handleIndex serves the API index with HTTP caching support.
func (s *APIServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	// The root pattern catches every unknown path.
	if r.URL.Path != config.RouteRoot {
		http.NotFound(w, r)
		return
	}

	// 1. Method Validation
	if !checkMethod(w, r) {
		return
	}

	// 2. Load Data (Atomic / Lock-Free)
	item := s.index.Load()

	// 3. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 4. Set Response Headers
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 5. Check Conditional Headers (Browser Caching)
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				// If server content is not newer than client cache, return 304.
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// 6. Serve Content
	if r.Method == http.MethodGet {
		if _, err := w.Write(item.data); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
