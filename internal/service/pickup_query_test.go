package service

import (
	"testing"
	"time"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/models"
)

func strPtr(s string) *string { return &s }

func float64Ptr(v float64) *float64 { return &v }

func queryFixtureRows() []models.PickupRequest {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return []models.PickupRequest{
		{ID: 1, SKU: "BPS", ItemNo: strPtr("KDA0001"), Note: "경비실", CreatedAt: base},
		{ID: 2, SKU: "MS108", ItemNo: strPtr("KDA00011"), CreatedAt: base.Add(1 * time.Hour)},
		{ID: 3, SKU: "MS108", ItemNo: strPtr("KDA0001"), CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, SKU: "MS112", Address: strPtr("서울특별시 중구 세종대로"), CreatedAt: base.Add(3 * time.Hour)},
	}
}

func TestApplyQueryExactItemMatchRanksFirst(t *testing.T) {
	result := ApplyQuery(queryFixtureRows(), QueryState{Text: "kda0001"})

	if len(result.Rows) != 3 {
		t.Fatalf("rows want 3 got %d", len(result.Rows))
	}
	if result.ExactMatches != 2 {
		t.Fatalf("exact matches want 2 got %d", result.ExactMatches)
	}
	// 完全匹配的两条排最前，各自按时间倒序
	if result.Rows[0].ID != 3 || result.Rows[1].ID != 1 {
		t.Fatalf("exact matches should lead (3,1), got (%d,%d)", result.Rows[0].ID, result.Rows[1].ID)
	}
	if result.Rows[2].ID != 2 {
		t.Fatalf("partial match should follow, got %d", result.Rows[2].ID)
	}
}

func TestApplyQueryTextSearchesAddressAndNote(t *testing.T) {
	result := ApplyQuery(queryFixtureRows(), QueryState{Text: "세종대로"})
	if len(result.Rows) != 1 || result.Rows[0].ID != 4 {
		t.Fatalf("address search want row 4, got %v", result.Rows)
	}

	result = ApplyQuery(queryFixtureRows(), QueryState{Text: "경비실"})
	if len(result.Rows) != 1 || result.Rows[0].ID != 1 {
		t.Fatalf("note search want row 1, got %v", result.Rows)
	}
}

func TestApplyQuerySKUFilter(t *testing.T) {
	result := ApplyQuery(queryFixtureRows(), QueryState{SKU: "ms108"})
	if len(result.Rows) != 2 {
		t.Fatalf("sku filter want 2 rows got %d", len(result.Rows))
	}

	result = ApplyQuery(queryFixtureRows(), QueryState{SKU: "ALL"})
	if len(result.Rows) != 4 {
		t.Fatalf("ALL filter should not filter, got %d", len(result.Rows))
	}
}

func TestApplyQueryCivilDateBoundary(t *testing.T) {
	// UTC 15:30 在 UTC+9 已是次日 00:30
	rows := []models.PickupRequest{
		{ID: 1, SKU: "BPS", CreatedAt: time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)},
		{ID: 2, SKU: "BPS", CreatedAt: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
	}

	result := ApplyQuery(rows, QueryState{DateKey: "2026-08-21"})
	if len(result.Rows) != 1 || result.Rows[0].ID != 1 {
		t.Fatalf("civil date should roll over at UTC+9, got %v", result.Rows)
	}

	result = ApplyQuery(rows, QueryState{DateFrom: "2026-08-20", DateTo: "2026-08-20"})
	if len(result.Rows) != 1 || result.Rows[0].ID != 2 {
		t.Fatalf("date range should be inclusive on civil dates, got %v", result.Rows)
	}
}

func TestApplyQueryIsIdempotent(t *testing.T) {
	state := QueryState{Text: "KDA0001", SKU: "ALL"}
	first := ApplyQuery(queryFixtureRows(), state)
	second := ApplyQuery(first.Rows, state)

	if len(first.Rows) != len(second.Rows) {
		t.Fatalf("reapplied query changed row count: %d vs %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		if first.Rows[i].ID != second.Rows[i].ID {
			t.Fatalf("reapplied query changed order at %d: %d vs %d", i, first.Rows[i].ID, second.Rows[i].ID)
		}
	}
}

func TestApplyQueryZeroTimeSortsLast(t *testing.T) {
	rows := []models.PickupRequest{
		{ID: 1, SKU: "BPS"},
		{ID: 2, SKU: "BPS", CreatedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)},
	}
	result := ApplyQuery(rows, QueryState{})
	if result.Rows[0].ID != 2 || result.Rows[1].ID != 1 {
		t.Fatalf("zero time should sort last, got (%d,%d)", result.Rows[0].ID, result.Rows[1].ID)
	}
}

func TestCivilDateKey(t *testing.T) {
	// UTC 2026-08-20 16:00 = KST 2026-08-21 01:00
	got := CivilDateKey(time.Date(2026, 8, 20, 16, 0, 0, 0, time.UTC), constants.CivilOffsetMinutes)
	if got != "2026-08-21" {
		t.Fatalf("civil date want 2026-08-21 got %s", got)
	}
	if got := CivilDateKey(time.Time{}, constants.CivilOffsetMinutes); got != "" {
		t.Fatalf("zero time want empty key got %s", got)
	}
}

func TestIsLowAccuracy(t *testing.T) {
	if IsLowAccuracy(nil, 100) {
		t.Fatalf("nil accuracy should not be low")
	}
	if IsLowAccuracy(float64Ptr(99.9), 100) {
		t.Fatalf("99.9m under 100m threshold should not be low")
	}
	if !IsLowAccuracy(float64Ptr(100), 100) {
		t.Fatalf("100m at threshold should be low")
	}
	if IsLowAccuracy(float64Ptr(-5), 100) {
		t.Fatalf("negative accuracy should not be low")
	}
}

func TestMapsLinks(t *testing.T) {
	if got := MapsLink(37.5663, 126.9779); got != "https://www.google.com/maps?q=37.5663,126.9779" {
		t.Fatalf("maps link got %s", got)
	}
	if got := MapsEmbedSrc(37.5663, 126.9779); got != "https://www.google.com/maps?q=37.5663,126.9779&z=16&output=embed" {
		t.Fatalf("maps embed got %s", got)
	}
}
