package sheetdb

import (
	"go.uber.org/zap"

	"github.com/nao1215/sheetdb/domain/model"
)

// DefaultBatchSize is the number of rows inserted per batch.
const DefaultBatchSize = 10000

// options are shared by every component in this package.
type options struct {
	logger      *zap.Logger
	batchSize   int
	previewRows int
}

func defaultOptions() options {
	return options{
		logger:      zap.NewNop(),
		batchSize:   DefaultBatchSize,
		previewRows: model.PreviewRows,
	}
}

// Option configures a reader, writer or orchestrator.
type Option func(*options)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBatchSize sets how many rows are inserted per batch. Values below 1
// are ignored.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithPreviewRows sets how many rows a descriptor preview holds.
func WithPreviewRows(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.previewRows = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
