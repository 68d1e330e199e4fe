package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
)

const (
	MethodPDFText   = "pdf-text"
	MethodPDFToText = "pdftotext"
	MethodPlain     = "plain-text"

	defaultRowTolerance = 5.0
)

var (
	ErrUnsupportedFormat = common.NewAppError("UNSUPPORTED_FORMAT", "unsupported quote file format", common.ErrInvalidInput)
	ErrNoText            = common.NewAppError("NO_TEXT", "document contains no extractable text", common.ErrInvalidInput)
)

type Config struct {
	PDFToText    string  // binary name or absolute path; if empty -> "pdftotext"
	MaxPages     int     // 0 = no limit
	RowTolerance float64 // baseline distance that still counts as one row
}

// Result is the text of one document plus how it was obtained.
type Result struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFToText == "" {
		cfg.PDFToText = "pdftotext"
	}
	if cfg.RowTolerance <= 0 {
		cfg.RowTolerance = defaultRowTolerance
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner used for the pdftotext fallback.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	if r != nil {
		e.runner = r
	}
	return e
}

// Extract reads the text of a .pdf or .txt quote.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.MapExtToFormat(ext)
	if !ok {
		e.logger.Error("pdftext.unsupported", "path", path, "ext", ext)
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	e.logger.Debug("pdftext.extract.start", "path", path, "format", format)

	var (
		res Result
		err error
	)
	switch format {
	case constants.FormatPDF:
		res, err = e.extractPDF(ctx, path)
	default:
		res, err = e.extractPlain(path)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return res, ErrNoText
	}
	e.logger.Debug("pdftext.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Result{Text: Normalize(string(b)), Pages: 1, Method: MethodPlain}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	res := Result{Method: MethodPDFText}

	limit := e.cfg.MaxPages
	if n, err := api.PageCountFile(path); err != nil {
		res.Warnings = append(res.Warnings, "page count: "+err.Error())
	} else {
		res.Pages = n
		if limit > 0 && n > limit {
			res.Warnings = append(res.Warnings, fmt.Sprintf("document has %d pages, reading first %d", n, limit))
		}
	}

	text, pages, err := readPDFRows(path, limit, e.cfg.RowTolerance)
	if err != nil {
		res.Warnings = append(res.Warnings, "pdf text: "+err.Error())
	}
	if res.Pages == 0 {
		res.Pages = pages
	}
	if strings.TrimSpace(text) != "" {
		res.Text = Normalize(text)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	e.logger.Warn("pdftext.fallback", "path", path, "tool", e.cfg.PDFToText)
	fallback, ferr := e.pdfToText(ctx, path, limit)
	res.Warnings = append(res.Warnings, fallback.Warnings...)
	if ferr != nil {
		return res, fmt.Errorf("pdftotext %s: %w", path, ferr)
	}
	res.Text, res.Method = fallback.Text, MethodPDFToText
	if res.Pages == 0 {
		res.Pages = fallback.Pages
	}
	return res, nil
}

// readPDFRows rebuilds visual rows page by page. Pages are separated by a
// blank line. The pdf package panics on some malformed streams.
func readPDFRows(path string, limit int, tolerance float64) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	pages = r.NumPage()
	last := pages
	if limit > 0 && last > limit {
		last = limit
	}

	var b strings.Builder
	for i := 1; i <= last; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows := groupRows(page.Content().Text, tolerance)
		if len(rows) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.Join(rows, "\n"))
	}
	return b.String(), pages, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string, limit int) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if limit > 0 {
		args = append(args, "-l", strconv.Itoa(limit))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.PDFToText, args...)
	if err != nil {
		var warns []string
		if len(errb) > 0 {
			warns = append(warns, strings.TrimSpace(string(errb)))
		}
		return Result{Warnings: warns}, err
	}
	raw := string(out)
	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.New("no text produced")
	}
	return Result{
		Text:  Normalize(raw),
		Pages: 1 + strings.Count(strings.TrimRight(raw, "\f\n"), "\f"),
	}, nil
}
