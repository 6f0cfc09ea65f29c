package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"posture-analyzer/internal/domain/entities"
	pe "posture-analyzer/pkg/errors"
	"posture-analyzer/pkg/helper"
)

type wireViolation struct {
	Frame *int     `json:"frame"`
	Issue *string  `json:"issue"`
	Value *float64 `json:"value"`
}

type wireResult struct {
	TotalFrames *int             `json:"total_frames"`
	Violations  *[]wireViolation `json:"violations"`
}

// DecodeResult parses analyzer stdout into an AnalysisResult. It never
// panics: any malformed or incomplete document becomes a decode error that
// carries the first rawLimit characters of stdout and the tail of stderr.
func DecodeResult(stdout, stderr []byte, rawLimit, detailLimit int) (*entities.AnalysisResult, error) {
	result, err := decode(stdout)
	if err != nil {
		return nil, pe.ErrDecode(err,
			helper.TruncateHead(string(stdout), rawLimit),
			helper.TruncateTail(string(stderr), detailLimit),
		)
	}
	return result, nil
}

func decode(stdout []byte) (*entities.AnalysisResult, error) {
	dec := json.NewDecoder(bytes.NewReader(stdout))

	var wire wireResult
	if err := dec.Decode(&wire); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON document")
	}

	if wire.TotalFrames == nil {
		return nil, errors.New("missing total_frames")
	}
	if *wire.TotalFrames < 0 {
		return nil, fmt.Errorf("negative total_frames %d", *wire.TotalFrames)
	}
	if wire.Violations == nil {
		return nil, errors.New("missing violations")
	}

	violations := make([]entities.Violation, 0, len(*wire.Violations))
	for i, v := range *wire.Violations {
		if v.Frame == nil || v.Issue == nil || v.Value == nil {
			return nil, fmt.Errorf("violation %d is incomplete", i)
		}
		violations = append(violations, entities.Violation{
			Frame: *v.Frame,
			Issue: *v.Issue,
			Value: *v.Value,
		})
	}

	return &entities.AnalysisResult{
		TotalFrames: *wire.TotalFrames,
		Violations:  violations,
	}, nil
}
