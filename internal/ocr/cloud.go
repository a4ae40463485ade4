package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const readAnalyzePath = "/vision/v3.2/read/analyze"

// Tesseract codes the Read API understands, mapped to its ISO 639-1 hints.
var readLanguageHints = map[string]string{
	"eng": "en",
	"deu": "de",
	"fra": "fr",
	"jpn": "ja",
	"spa": "es",
	"hin": "hi",
	"ita": "it",
	"por": "pt",
	"nld": "nl",
}

// CloudConfig for the Azure Read API.
type CloudConfig struct {
	Endpoint        string
	Key             string
	InitialInterval time.Duration // first wait before polling; default 500ms
	MaxInterval     time.Duration // backoff cap; default 8s
	MaxAttempts     int           // poll budget; default 20
	Timeout         time.Duration // deadline for submit+poll; default 60s
	HTTPClient      *http.Client
}

// CloudEngine submits images to the Read API and polls the returned operation.
type CloudEngine struct {
	cfg    CloudConfig
	http   *http.Client
	logger *slog.Logger
}

// NewCloudEngine fails with a CONFIG_ERROR when the endpoint or key is missing.
func NewCloudEngine(cfg CloudConfig, logger *slog.Logger) (*CloudEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, common.NewConfigurationError("cloud OCR endpoint is required", common.ErrInvalidInput)
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, common.NewConfigurationError("cloud OCR key is required", common.ErrInvalidInput)
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = 8 * time.Second
		if cfg.MaxInterval < cfg.InitialInterval {
			cfg.MaxInterval = cfg.InitialInterval
		}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &CloudEngine{cfg: cfg, http: client, logger: logger}, nil
}

func (e *CloudEngine) Name() string { return "azure-read" }

type readOperation struct {
	Status        constants.OperationStatus `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Page  int `json:"page"`
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// Recognize submits the image and polls with exponential backoff until the
// operation succeeds, fails, or the attempt/deadline budget runs out (TIMEOUT).
func (e *CloudEngine) Recognize(ctx context.Context, image []byte, langs []string) (string, error) {
	if len(image) == 0 {
		return "", common.NewExtractionError(common.SourceMalformedDocument, "empty image", nil)
	}
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	opURL, err := e.submit(ctx, rid, image, langs)
	if err != nil {
		return "", err
	}
	e.logger.Info("ocr.cloud.submitted", "req_id", rid, "operation", opURL, "image_bytes", len(image))

	op, err := e.poll(ctx, rid, opURL)
	if err != nil {
		e.logger.Error("ocr.cloud.failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	txt := collectLines(op)
	e.logger.Info("ocr.cloud.ok",
		"req_id", rid,
		"pages", len(op.AnalyzeResult.ReadResults),
		"text_len", len(txt),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}

func (e *CloudEngine) submit(ctx context.Context, rid string, image []byte, langs []string) (string, error) {
	u := e.cfg.Endpoint + readAnalyzePath
	if hint := languageHint(langs); hint != "" {
		u += "?language=" + url.QueryEscape(hint)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(image))
	if err != nil {
		return "", common.NewExtractionError(common.SourceRemoteService, "build read request", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.cfg.Key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.http.Do(req)
	if err != nil {
		return "", e.transportError(ctx, "submit read request", err)
	}
	defer e.closeBody(rid, resp.Body)

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", common.NewExtractionError(common.SourceRemoteService,
			fmt.Sprintf("read submit status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", common.NewExtractionError(common.SourceRemoteService, "read submit returned no Operation-Location", nil)
	}
	return opURL, nil
}

func (e *CloudEngine) poll(ctx context.Context, rid, opURL string) (readOperation, error) {
	wait := e.cfg.InitialInterval
	last := constants.OperationNotStarted
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return readOperation{}, e.transportError(ctx, "poll read operation", ctx.Err())
		case <-timer.C:
		}

		op, retryAfter, err := e.fetch(ctx, rid, opURL)
		if err != nil {
			return readOperation{}, err
		}
		if op.Status != "" {
			last = op.Status
		}
		e.logger.Debug("ocr.cloud.poll", "req_id", rid, "attempt", attempt, "status", last, "wait_ms", wait.Milliseconds())

		switch {
		case op.Status.Terminal():
			if op.Status == constants.OperationFailed {
				return readOperation{}, common.NewExtractionError(common.SourceRemoteService, "read operation failed", nil)
			}
			return op, nil
		case op.Status == constants.OperationNotStarted, op.Status == constants.OperationRunning, op.Status == "":
		default:
			return readOperation{}, common.NewExtractionError(common.SourceRemoteService,
				fmt.Sprintf("read operation returned unknown status %q", op.Status), nil)
		}

		wait *= 2
		if wait > e.cfg.MaxInterval {
			wait = e.cfg.MaxInterval
		}
		if retryAfter > wait {
			wait = retryAfter
		}
	}
	return readOperation{}, common.NewTimeoutError(
		fmt.Sprintf("read operation still %s after %d polls", last, e.cfg.MaxAttempts), nil)
}

// fetch returns an empty status for 429 so the caller keeps polling.
func (e *CloudEngine) fetch(ctx context.Context, rid, opURL string) (readOperation, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return readOperation{}, 0, common.NewExtractionError(common.SourceRemoteService, "build poll request", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.cfg.Key)

	resp, err := e.http.Do(req)
	if err != nil {
		return readOperation{}, 0, e.transportError(ctx, "poll read operation", err)
	}
	defer e.closeBody(rid, resp.Body)

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
	if resp.StatusCode == http.StatusTooManyRequests {
		return readOperation{}, retryAfter, nil
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return readOperation{}, 0, common.NewExtractionError(common.SourceRemoteService,
			fmt.Sprintf("read poll status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var op readOperation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return readOperation{}, 0, common.NewExtractionError(common.SourceRemoteService, "decode read operation", err)
	}
	if op.Status == "" {
		return readOperation{}, 0, common.NewExtractionError(common.SourceRemoteService, "read operation has no status", nil)
	}
	return op, retryAfter, nil
}

func (e *CloudEngine) transportError(ctx context.Context, what string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return common.NewTimeoutError(fmt.Sprintf("%s: deadline of %s exceeded", what, e.cfg.Timeout), err)
	}
	return common.NewExtractionError(common.SourceRemoteService, what, err)
}

func (e *CloudEngine) closeBody(rid string, body io.ReadCloser) {
	if err := body.Close(); err != nil {
		e.logger.Warn("ocr.cloud.response_body_close_error", "req_id", rid, "error", err)
	}
}

// languageHint returns a hint only for a single mappable language; otherwise the service auto-detects.
func languageHint(langs []string) string {
	l := clean(langs)
	if len(l) != 1 {
		return ""
	}
	return readLanguageHints[l[0]]
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func collectLines(op readOperation) string {
	pages := op.AnalyzeResult.ReadResults
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	var lines []string
	for _, p := range pages {
		for _, ln := range p.Lines {
			lines = append(lines, ln.Text)
		}
	}
	return strings.Join(lines, "\n")
}
