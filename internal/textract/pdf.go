package textract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/DanielDi/agent-tech-mining/constants"
)

// extractPDF reads the embedded text layer and falls back to pdftotext when
// the layer is missing, unreadable or shorter than MinChars.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	first, second := e.readEmbedded, e.readExternal
	if e.cfg.PreferExternal {
		first, second = e.readExternal, e.readEmbedded
	}

	res, err := first(ctx, path)
	if err == nil && e.usable(res.Text) {
		return res, nil
	}
	var warns []string
	if err != nil {
		warns = append(warns, fmt.Sprintf("%s: %v", res.Method, err))
	} else {
		warns = append(warns, fmt.Sprintf("%s: only %d chars", res.Method, utf8.RuneCountInString(strings.TrimSpace(res.Text))))
	}
	e.logger.Warn("text.extract.fallback", "path", path, "from", res.Method, "reason", warns[0])

	alt, altErr := second(ctx, path)
	alt.Warnings = append(warns, alt.Warnings...)
	if altErr != nil {
		// Keep a short first result over nothing at all.
		if err == nil && strings.TrimSpace(res.Text) != "" {
			res.Warnings = append(alt.Warnings, fmt.Sprintf("%s: %v", alt.Method, altErr))
			return res, nil
		}
		return alt, errors.Join(err, altErr)
	}
	if !e.usable(alt.Text) && len(strings.TrimSpace(res.Text)) > len(strings.TrimSpace(alt.Text)) {
		res.Warnings = alt.Warnings
		return res, nil
	}
	return alt, nil
}

func (e *Extractor) usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= e.cfg.MinChars
}

func (e *Extractor) readEmbedded(_ context.Context, path string) (res Result, err error) {
	res = Result{Format: constants.PDF, Method: MethodPDFText}
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return res, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d of %d pages", e.cfg.MaxPages, pages))
		pages = e.cfg.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	res.Text = b.String()
	res.Pages = pages
	return res, nil
}

func (e *Extractor) readExternal(ctx context.Context, path string) (Result, error) {
	res := Result{Format: constants.PDF, Method: MethodPdftotext}
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			res.Warnings = append(res.Warnings, truncate(msg, 512))
		}
		return res, fmt.Errorf("pdftotext: %w", err)
	}
	res.Text = string(out)
	// A form-feed \f is used as page separator by default
	res.Pages = 1 + strings.Count(strings.TrimRight(res.Text, "\f\n"), "\f")
	return res, nil
}
