package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"scorecard/internal/domain/appraisal"
)

type Summary struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	Completed   int            `json:"completed"`
	Rejected    int            `json:"rejected"`
	InFlight    int            `json:"inFlight"`
	AvgRating   float64        `json:"avgRating"`
	RatingCount int            `json:"ratingCount"`
}

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) AppraisalSummary(ctx context.Context, tenantID string) (Summary, error) {
	counts, err := s.Store.StatusCounts(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}
	avg, count, err := s.Store.RatingAverage(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}
	return buildSummary(counts, avg, count), nil
}

func buildSummary(counts map[string]int, avgRating float64, ratingCount int) Summary {
	summary := Summary{ByStatus: counts, AvgRating: avgRating, RatingCount: ratingCount}
	for status, count := range counts {
		summary.Total += count
		switch appraisal.CanonicalStatus(status) {
		case appraisal.StatusCompleted:
			summary.Completed += count
		case appraisal.StatusRejected:
			summary.Rejected += count
		default:
			summary.InFlight += count
		}
	}
	return summary
}

// AppraisalPDF renders a read-only summary document for one appraisal.
func (s *Service) AppraisalPDF(ctx context.Context, tenantID, appraisalID string) ([]byte, error) {
	detail, err := s.Store.AppraisalDetail(ctx, tenantID, appraisalID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Appraisal Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", detail.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", detail.Period))
	pdf.Ln(7)
	badge := appraisal.BadgeFor(detail.Status)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", badge.Label))
	pdf.Ln(10)

	if len(detail.Ratings) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Indicator Ratings")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, rating := range detail.Ratings {
			pdf.Cell(0, 7, fmt.Sprintf("%s (%s): %.1f", rating.Indicator, rating.RaterRole, rating.Rating))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	for _, comment := range detail.Comments {
		if comment.Text == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, comment.Stage)
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, comment.Text, "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
