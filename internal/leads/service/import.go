package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
)

// importColumns is the expected CSV layout: name,email,phone,source[,message].
// The first row is treated as a header and skipped.
const importMinColumns = 4

// ImportCSV bulk-creates leads from a delimited payload. Rows commit
// independently: a malformed or failing row is reported in Skipped and the
// rest of the batch proceeds. There is deliberately no cross-row atomicity.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (transport.ImportResponse, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := transport.ImportResponse{
		Imported: make([]transport.LeadResponse, 0),
		Skipped:  make([]transport.SkippedRow, 0),
	}

	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			// Only malformed rows are skippable. Anything else (an aborted
			// request body, for instance) would error on every subsequent
			// read, so the whole import fails instead of looping.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped = append(result.Skipped, transport.SkippedRow{Line: line, Reason: err.Error()})
				continue
			}
			return transport.ImportResponse{}, apperr.BadRequest("read import payload: " + err.Error())
		}
		if line == 1 {
			// header row
			continue
		}

		req, err := rowToRequest(record)
		if err == nil {
			err = s.val.Struct(req)
		}
		if err != nil {
			result.Skipped = append(result.Skipped, transport.SkippedRow{Line: line, Reason: err.Error()})
			continue
		}

		lead, err := s.Create(ctx, req)
		if err != nil {
			result.Skipped = append(result.Skipped, transport.SkippedRow{Line: line, Reason: err.Error()})
			continue
		}

		result.Imported = append(result.Imported, lead)
	}

	return result, nil
}

func rowToRequest(record []string) (transport.CreateLeadRequest, error) {
	if len(record) < importMinColumns {
		return transport.CreateLeadRequest{}, fmt.Errorf("expected at least %d columns (name,email,phone,source), got %d", importMinColumns, len(record))
	}

	req := transport.CreateLeadRequest{
		Name:   strings.TrimSpace(record[0]),
		Email:  strings.TrimSpace(record[1]),
		Phone:  strings.TrimSpace(record[2]),
		Source: strings.TrimSpace(record[3]),
	}
	if len(record) > importMinColumns {
		req.Message = strings.TrimSpace(record[4])
	}

	return req, nil
}
