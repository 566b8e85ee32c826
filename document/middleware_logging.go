package document

import (
	"context"
	"fmt"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DocumentLogger is a logging service middleware for the document service.
type DocumentLogger struct {
	logger          *zap.Logger
	documentService castiel.DocumentService
}

// NewDocumentLogger returns a logging service middleware for the document
// service.
func NewDocumentLogger(log *zap.Logger, s castiel.DocumentService) *DocumentLogger {
	return &DocumentLogger{
		logger:          log,
		documentService: s,
	}
}

var _ castiel.DocumentService = (*DocumentLogger)(nil)

func (l *DocumentLogger) FindDocumentByID(ctx context.Context, tenantID, id platform.ID) (d *castiel.Document, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to find document with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("document find by ID", dur)
	}(time.Now())
	return l.documentService.FindDocumentByID(ctx, tenantID, id)
}

func (l *DocumentLogger) FindDocuments(ctx context.Context, filter castiel.DocumentFilter, opt ...castiel.FindOptions) (ds []*castiel.Document, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find documents matching the given filter", zap.Error(err), dur)
			return
		}
		l.logger.Debug("documents find", dur)
	}(time.Now())
	return l.documentService.FindDocuments(ctx, filter, opt...)
}

func (l *DocumentLogger) CreateDocument(ctx context.Context, d *castiel.Document, content []byte) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to create document", zap.Error(err), dur)
			return
		}
		l.logger.Debug("document create", zap.String("size", humanize.Bytes(uint64(len(content)))), dur)
	}(time.Now())
	return l.documentService.CreateDocument(ctx, d, content)
}

func (l *DocumentLogger) ReadDocumentContent(ctx context.Context, tenantID, id platform.ID) (content []byte, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to read content of document with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("document content read", dur)
	}(time.Now())
	return l.documentService.ReadDocumentContent(ctx, tenantID, id)
}

func (l *DocumentLogger) UpdateDocument(ctx context.Context, tenantID, id platform.ID, upd castiel.DocumentUpdate) (d *castiel.Document, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to update document", zap.Error(err), dur)
			return
		}
		l.logger.Debug("document update", dur)
	}(time.Now())
	return l.documentService.UpdateDocument(ctx, tenantID, id, upd)
}

func (l *DocumentLogger) DeleteDocument(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to delete document with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("document delete", dur)
	}(time.Now())
	return l.documentService.DeleteDocument(ctx, tenantID, id)
}

func (l *DocumentLogger) HardDeleteDocument(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to hard delete document with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("document hard delete", dur)
	}(time.Now())
	return l.documentService.HardDeleteDocument(ctx, tenantID, id)
}
