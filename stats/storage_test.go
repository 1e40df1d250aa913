package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Shutdown()

	t.Run("RecordCounters", func(t *testing.T) {
		storage.RecordAnalysis(true)
		storage.RecordAnalysis(false)
		storage.RecordAnalysis(false)
		storage.RecordResearch(true)
		storage.RecordEstimates(7)

		month := storage.CurrentMonth()
		if month.Analyses != 3 {
			t.Errorf("Expected 3 analyses, got %d", month.Analyses)
		}
		if month.FetchCacheHits != 1 || month.FetchCacheMisses != 2 {
			t.Errorf("Expected 1 hit / 2 misses, got %d / %d", month.FetchCacheHits, month.FetchCacheMisses)
		}
		if month.Researches != 1 || month.ResearchCacheHits != 1 {
			t.Errorf("Expected 1 research with a cache hit, got %+v", month)
		}
		if month.EstimatedRecords != 7 {
			t.Errorf("Expected 7 estimated records, got %d", month.EstimatedRecords)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}
		defer storage2.Shutdown()

		month := storage2.CurrentMonth()
		if month.Analyses != 3 {
			t.Errorf("Expected 3 analyses after reload, got %d", month.Analyses)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := time.Now().AddDate(0, -2, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.data[oldMonth] = &MonthlyStats{
			Analyses:    100,
			LastUpdated: time.Now().AddDate(0, -2, 0),
		}
		storage.mutex.Unlock()

		storage.Cleanup()

		if _, exists := storage.Month(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if month := storage.CurrentMonth(); month.Analyses != 3 {
			t.Errorf("Current month should survive cleanup, got %+v", month)
		}
	})

	t.Run("FileSize", func(t *testing.T) {
		if err := storage.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		info, err := os.Stat(filepath.Join(tempDir, statsFile))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Size() > 1024 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.CurrentMonth().Analyses

		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					storage.RecordAnalysis(j%2 == 0)
					storage.CurrentMonth()
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		month := storage.CurrentMonth()
		if got := month.Analyses - before; got != 1000 {
			t.Errorf("Expected 1000 new analyses, got %d", got)
		}
	})
}

func TestStorageNilSafe(t *testing.T) {
	var storage *Storage
	storage.RecordAnalysis(true)
	storage.RecordResearch(false)
	storage.RecordEstimates(3)
	storage.Cleanup()
	if err := storage.Save(); err != nil {
		t.Errorf("nil storage Save returned %v", err)
	}
	if err := storage.Shutdown(); err != nil {
		t.Errorf("nil storage Shutdown returned %v", err)
	}
	if month := storage.CurrentMonth(); month.Analyses != 0 {
		t.Errorf("nil storage month = %+v, want zero value", month)
	}
}

func TestStorageAllMonthsSortedNewestFirst(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Shutdown()

	storage.mutex.Lock()
	storage.data["2026-01"] = &MonthlyStats{}
	storage.data["2026-03"] = &MonthlyStats{}
	storage.data["2025-12"] = &MonthlyStats{}
	storage.mutex.Unlock()

	months := storage.AllMonths()
	if len(months) != 3 {
		t.Fatalf("got %d months, want 3", len(months))
	}
	want := []string{"2026-03", "2026-01", "2025-12"}
	for i, month := range want {
		if months[i] != month {
			t.Errorf("months[%d] = %q, want %q", i, months[i], month)
		}
	}
}
