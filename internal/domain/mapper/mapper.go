package mapper

import (
	"posture-analyzer/internal/domain/dto"
	"posture-analyzer/internal/domain/entities"
)

func RunToDTO(r *entities.AnalysisRun) dto.AnalysisRunDTO {
	return dto.AnalysisRunDTO{
		ID:             r.ID.String(),
		Kind:           r.Kind,
		Mode:           r.Mode,
		Status:         r.Status,
		ErrorKind:      r.ErrorKind,
		ExitCode:       r.ExitCode,
		TotalFrames:    r.TotalFrames,
		ViolationCount: r.ViolationCount,
		DurationMs:     r.DurationMs,
		CreatedAt:      r.CreatedAt,
	}
}

func RunsToDTO(runs []entities.AnalysisRun) []dto.AnalysisRunDTO {
	out := make([]dto.AnalysisRunDTO, 0, len(runs))
	for i := range runs {
		out = append(out, RunToDTO(&runs[i]))
	}
	return out
}
