// Package reports proxies PDF generation to the backend. Bodies are passed
// through untouched in both directions.
package reports

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"terraprime/internal/gateway"
	"terraprime/internal/session"
)

var (
	ErrTimeout     = errors.New("report generation timed out")
	ErrUnreachable = errors.New("report service unreachable")
)

const DefaultTimeout = 5 * time.Minute

// Document is the backend answer, relayed as-is whatever its status.
type Document struct {
	StatusCode         int
	ContentType        string
	ContentDisposition string
	Body               []byte
}

// OK reports whether the backend produced the document.
func (d *Document) OK() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}

type Service struct {
	gw      *gateway.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(gw *gateway.Client, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{gw: gw, timeout: timeout, logger: logger}
}

// GeneratePDF forwards body to POST /reports/pdf.
func (s *Service) GeneratePDF(ctx context.Context, sess session.Session, body []byte, contentType string) (*Document, error) {
	if contentType == "" {
		contentType = "application/json"
	}

	start := time.Now()
	resp, err := s.gw.Send(ctx, sess, gateway.Request{
		Method:  http.MethodPost,
		Path:    "/reports/pdf",
		Headers: map[string]string{"Content-Type": contentType, "Accept": "application/pdf"},
		Body:    bytes.NewReader(body),
		Timeout: s.timeout,
	})
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrUnauthorized):
			return nil, err
		case errors.Is(err, gateway.ErrTimeout):
			s.logger.Warn("report generation timed out", zap.Duration("timeout", s.timeout))
			return nil, ErrTimeout
		case errors.Is(err, gateway.ErrUnreachable):
			s.logger.Error("report service unreachable", zap.Error(err))
			return nil, ErrUnreachable
		default:
			return nil, err
		}
	}

	doc := &Document{
		StatusCode:         resp.StatusCode,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Body:               resp.Body,
	}
	if !doc.OK() {
		s.logger.Warn("report generation rejected",
			zap.Int("status", doc.StatusCode),
			zap.Int("bytes", len(doc.Body)),
		)
		return doc, nil
	}
	s.logger.Info("report generated",
		zap.Int("bytes", len(doc.Body)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("user_id", sess.UserID()),
	)
	return doc, nil
}
