package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

var pageTimeout = 10 * time.Second

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// Supported reports whether documents named like name can be ingested.
func Supported(name string) bool {
	return getDocType(name) != commonModels.ERR
}

// extractPages reads the document at path into pages named after source.
func extractPages(path string, source string, log *logger_i.Logger) ([]commonModels.Page, error) {
	switch getDocType(source) {
	case commonModels.PDF:
		return extractPDF(path, source, log)
	case commonModels.DOCX, commonModels.TXT:
		return extractdocxTxtRtf(path, source)
	default:
		return nil, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedType, source)
	}
}

func extractPDF(path string, source string, log *logger_i.Logger) (pages []commonModels.Page, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			log.Error("pdf reader panicked", "source", source, "panic", r)
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	log.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	info := f.Trailer().Key("Info")
	author := info.Key("Author").Text()
	title := info.Key("Title").Text()
	created := info.Key("CreationDate").Text()
	modified := info.Key("ModDate").Text()

	numPages := f.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			log.Debug("extractPDF", "page value is null", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// skip the page, keep the rest of the document
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, commonModels.Page{
			Source:       source,
			Index:        i - 1,
			Content:      content,
			Author:       author,
			Title:        title,
			CreationDate: created,
			ModDate:      modified,
		})
	}
	return pages, nil
}

// extractdocxTxtRtf reads a .odt, .docx, .rtf or plaintext file as a single page.
func extractdocxTxtRtf(path string, source string) ([]commonModels.Page, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", source, err)
	}

	//these formats carry no page breaks we could rely on
	return []commonModels.Page{
		{
			Source:  source,
			Index:   0,
			Content: text,
		},
	}, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errors.New("timeout")
	}
}
