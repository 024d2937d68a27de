package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-DateTools/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go DateTools"
	AppID             = "com.github.tartampluch.go-datetools"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags, Commands & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagLang    = "lang"
	FlagServe   = "serve"
	FlagPort    = "port"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescLang    = "Output language (ISO 639-1 code)"
	FlagDescServe   = "Run the local HTTP API server instead of a one-shot command"
	FlagDescPort    = "Port for the local HTTP API server"

	MsgVersionOutput = "%s version %s (%s/%s)\n"

	CmdLeap  = "leap"
	CmdAngle = "angle"
	CmdSpan  = "span"
	CmdParse = "parse"
	CmdSkew  = "skew"

	// UsageText is printed on unknown commands or missing arguments.
	UsageText = `Usage: go-datetools [flags] <command> [args]

Commands:
  leap  <year>             Check whether a year is a leap year
  angle <instant>          Angle between clock hands at the given instant
  span  <start> <end>      Elapsed time between two instants (HH:mm:ss.sss)
  parse <value>            Parse an RFC 2822 or ISO 8601 date string
  skew  <url>              Clock offset of a remote HTTP server

Flags:
  -version                 Show version and exit
  -debug                   Enable debug logging
  -lang <code>             Output language (default "en")
  -serve                   Run the HTTP API server
  -port <n>                API server port (default 18081)
`
)

// SupportedLanguages defines the list of available output languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18081"
	DefaultLanguage = "en"

	// Grammar identifiers reported by the combined parser.
	GrammarISO8601 = "iso8601"
	GrammarRFC2822 = "rfc2822"
)

// -----------------------------------------------------------------------------
// Date Layouts (Go reference time)
// -----------------------------------------------------------------------------

const (
	// RFC 2822: day-of-week optional, day may be 1 or 2 digits, zone numeric.
	// Named zones are normalized to numeric offsets before these layouts apply.
	LayoutRFC2822         = "Mon, 2 Jan 2006 15:04:05 -0700"
	LayoutRFC2822NoWkd    = "2 Jan 2006 15:04:05 -0700"
	LayoutRFC2822NoSec    = "Mon, 2 Jan 2006 15:04 -0700"
	LayoutRFC2822NoWkdSec = "2 Jan 2006 15:04 -0700"

	// ISO 8601 extended format. ".999999999" makes the fraction optional.
	LayoutISO8601         = "2006-01-02T15:04:05.999999999Z07:00"
	LayoutISO8601Offset4  = "2006-01-02T15:04:05.999999999-0700"
	LayoutISO8601Offset2  = "2006-01-02T15:04:05.999999999-07"
	LayoutISO8601NoZone   = "2006-01-02T15:04:05.999999999"
	LayoutISO8601Minutes  = "2006-01-02T15:04Z07:00"
	LayoutISO8601MinOff4  = "2006-01-02T15:04-0700"
	LayoutISO8601MinOff2  = "2006-01-02T15:04-07"
	LayoutISO8601MinBare  = "2006-01-02T15:04"
	LayoutISO8601DateOnly = "2006-01-02"

	// Canonical output layouts (millisecond precision for round-trips).
	LayoutISO8601Out = "2006-01-02T15:04:05.000Z07:00"
	LayoutRFC2822Out = "Mon, 02 Jan 2006 15:04:05 -0700"

	// FormatTimeSpan renders hours, minutes, seconds and milliseconds.
	FormatTimeSpan = "%02d:%02d:%02d.%03d"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	SchemeHTTP         = "http"
	SchemeHTTPS        = "https"
	AddrSeparator      = ":"

	MinPort = 1
	MaxPort = 65535
)

// -----------------------------------------------------------------------------
// HTTP Routes & Query Parameters
// -----------------------------------------------------------------------------

const (
	RouteRoot  = "/"
	RouteLeap  = "/api/leap"
	RouteAngle = "/api/angle"
	RouteSpan  = "/api/span"
	RouteParse = "/api/parse"

	ParamYear  = "year"
	ParamAt    = "at"
	ParamStart = "start"
	ParamEnd   = "end"
	ParamValue = "value"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderDate            = "Date"

	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrRFC2822Parse    = "not a valid RFC 2822 date"
	ErrISO8601Parse    = "not a valid ISO 8601 date"
	ErrAnyParse        = "not a valid RFC 2822 or ISO 8601 date"
	ErrNegativeSpan    = "end precedes start"
	ErrYearNumber      = "year must be an integer"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrDateHeaderGone  = "response carries no Date header"
	ErrDateHeaderParse = "unable to parse Date header"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrIndexEncode     = "failed to encode API index document"
	ErrRespEncode      = "failed to encode response document"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrLocNotInit      = "localizer not initialized"
	ErrMissingArgument = "missing argument"
	ErrUnknownCommand  = "unknown command"
	ErrParamMissing    = "missing query parameter"
	ErrFetcherMissing  = "internal error: date fetcher is not initialized"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "API index initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyLeapYes    = "leap_yes"
	TKeyLeapNo     = "leap_no"
	TKeyAngle      = "angle_result"
	TKeySpan       = "span_result"
	TKeyParse      = "parse_result"
	TKeySkewAhead  = "skew_ahead"
	TKeySkewBehind = "skew_behind"
	TKeySkewNone   = "skew_none"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting   = "Starting application"
	MsgCmdDispatch   = "Dispatching command"
	MsgAppStop       = "Application stopped gracefully"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgIndexUpdated  = "API index cache updated"
	MsgDateFetched   = "Date header received"
	MsgSkewMeasured  = "Remote clock skew measured"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyCommand   = "command"
	LogKeyValue     = "value"
	LogKeyYear      = "year"
	LogKeyGrammar   = "grammar"
	LogKeyInstant   = "instant"
	LogKeySkewMs    = "skew_ms"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompCLI     = "cli"
)
