package service

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"github.com/tieubaoca/questbot-be/database"
)

// MsgOnlyPDF is returned in place of extracted text when the questionnaire
// slot receives something that is not a PDF. It is a message, not an error.
const MsgOnlyPDF = "Please only upload PDF files."

// pageExtractTimeout guards against pathological PDFs hanging extraction.
const pageExtractTimeout = 10 * time.Second

// ExtractService turns document files into text, page by page for PDFs.
type ExtractService struct{}

func NewExtractService() *ExtractService {
	return &ExtractService{}
}

// ExtractPages reads a document file and returns its text in page order.
// PDFs keep their page structure; docx/odt/rtf/txt collapse to one page.
func (s *ExtractService) ExtractPages(path string) ([]database.Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return s.extractPDF(path)
	case ".docx", ".odt", ".rtf", ".txt":
		text, err := cat.File(path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", path, err)
		}
		return []database.Page{{Label: "1", Text: cleanText(text)}}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// ExtractText extracts the concatenated per-page text of a questionnaire
// PDF. Anything that is not a PDF yields MsgOnlyPDF instead of failing.
func (s *ExtractService) ExtractText(path string) string {
	if path == "" || strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return MsgOnlyPDF
	}
	pages, err := s.extractPDF(path)
	if err != nil {
		log.Printf("Failed to extract questionnaire text from %s: %v", path, err)
		return MsgOnlyPDF
	}
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page.Text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func (s *ExtractService) extractPDF(path string) ([]database.Page, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []database.Page
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// Skip failed pages instead of aborting the document
			log.Printf("Warning: failed to extract text from page %d: %v", i, err)
			continue
		}
		content = cleanText(content)
		if content == "" {
			continue
		}
		pages = append(pages, database.Page{
			Label: strconv.Itoa(i),
			Text:  content,
		})
	}
	return pages, nil
}

// protectExtract runs page text extraction under a timeout.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}

func cleanText(text string) string {
	replacements := map[string]string{
		"\x00":   "",   // null
		"\uFFFD": "",   // unicode replacement character
		"\x1b":   "",   // escape
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
