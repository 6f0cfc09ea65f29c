package repositories

import (
	"context"
	"testing"

	"posture-analyzer/internal/domain/entities"

	"github.com/google/uuid"
)

func TestInMemoryRunRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRunRepository(3)

	for i := 1; i <= 4; i++ {
		run := &entities.AnalysisRun{Kind: "image", TotalFrames: i}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if run.ID == uuid.Nil {
			t.Fatal("Create() did not assign an id")
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []int
	}{
		{"all when limit is zero", 0, []int{4, 3, 2}},
		{"limited", 2, []int{4, 3}},
		{"limit above size", 10, []int{4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := repo.ListRecent(ctx, tt.limit)
			if err != nil {
				t.Fatalf("ListRecent() error = %v", err)
			}
			if len(runs) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(runs), len(tt.want))
			}
			for i, run := range runs {
				if run.TotalFrames != tt.want[i] {
					t.Errorf("runs[%d].TotalFrames = %d, want %d", i, run.TotalFrames, tt.want[i])
				}
			}
		})
	}
}
