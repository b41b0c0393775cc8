package services

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/username/tradeherder/src/logger"
	"github.com/username/tradeherder/src/parsers"
	"github.com/username/tradeherder/src/store"
)

type importServiceImpl struct {
	store store.Store
}

func NewImportService(st store.Store) ImportService {
	return &importServiceImpl{store: st}
}

func (s *importServiceImpl) Import(source string, file io.Reader, abortOnBadRow bool) (*ImportResult, error) {
	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, err
	}
	result, err := parsers.Collect(parser, file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s file: %w", source, err)
	}

	if len(result.BadRows) > 0 {
		for _, bad := range result.BadRows {
			lg().Warn("rejected input row", "source", source, "err", bad.Error())
		}
		if abortOnBadRow {
			return nil, fmt.Errorf("%s file has %d malformed rows, nothing imported",
				source, len(result.BadRows))
		}
	}

	// Import sequence continues across batches so later imports always sort
	// after earlier ones.
	seq, err := s.store.MaxImportSeq()
	if err != nil {
		return nil, err
	}
	for i := range result.Entries {
		seq++
		result.Entries[i].ImportSeq = seq
		if err := s.store.InsertRawEntry(&result.Entries[i]); err != nil {
			return nil, fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	lg().Info("import finished", "source", source,
		"imported", len(result.Entries), "skipped", len(result.BadRows))
	return &ImportResult{Imported: len(result.Entries), Skipped: result.BadRows}, nil
}

func lg() *slog.Logger {
	if logger.L != nil {
		return logger.L
	}
	return slog.Default()
}
