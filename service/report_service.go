package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/tieubaoca/questbot-be/types"
)

// ErrEmptyTranscript is returned when an export is requested before any
// successful answering run.
var ErrEmptyTranscript = errors.New("no answered questionnaire to export")

// ReportService renders the questionnaire transcript as a paginated PDF
// at one fixed path, overwriting any prior export.
type ReportService struct {
	exportPath string
	compress   bool
}

func NewReportService(exportPath string) *ReportService {
	return &ReportService{
		exportPath: exportPath,
		compress:   true,
	}
}

// Export writes the transcript to the configured path and returns it.
func (s *ReportService) Export(transcript types.Transcript) (string, error) {
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}

	if err := os.MkdirAll(filepath.Dir(s.exportPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(s.compress)
	doc.SetFont("Arial", "", 11)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	for _, rec := range transcript {
		doc.MultiCell(0, 5, "Q: "+rec.Question, "", "L", false)
		doc.MultiCell(0, 5, "A: "+rec.Answer, "", "L", false)
		doc.Ln(4)
	}

	if err := doc.OutputFileAndClose(s.exportPath); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return s.exportPath, nil
}
