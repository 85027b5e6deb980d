package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/models"
)

type coordGeocoder struct {
	addresses map[float64]string
	failLat   float64
	calls     int
}

func (g *coordGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	g.calls++
	if g.failLat != 0 && lat == g.failLat {
		return "", errors.New("nominatim unavailable")
	}
	return g.addresses[lat], nil
}

func TestBackfillRunUpdatesMissingRows(t *testing.T) {
	repo := newFakePickupRepo()
	repo.missing = []models.PickupRequest{
		{ID: 1, SKU: "BPS", Lat: 37.1, Lng: 127.0},
		{ID: 2, SKU: "MS108", Lat: 35.1, Lng: 129.0},
	}
	geocoder := &coordGeocoder{addresses: map[float64]string{
		37.1: "서울특별시 주소",
		35.1: "부산광역시 주소",
	}}
	svc := NewBackfillService(repo, geocoder, time.Millisecond)

	result, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("updated want 2 got %d", result.Updated)
	}
	if repo.addresses[1] != "서울특별시 주소" || repo.addresses[2] != "부산광역시 주소" {
		t.Fatalf("addresses not applied: %v", repo.addresses)
	}
}

func TestBackfillRunSkipsFailuresAndKeepsGoing(t *testing.T) {
	repo := newFakePickupRepo()
	repo.missing = []models.PickupRequest{
		{ID: 1, SKU: "BPS", Lat: 37.1, Lng: 127.0},
		{ID: 2, SKU: "MS108", Lat: 35.1, Lng: 129.0},
		{ID: 3, SKU: "MS112", Lat: 36.1, Lng: 128.0},
	}
	repo.remaining = 2
	geocoder := &coordGeocoder{
		addresses: map[float64]string{36.1: "대구광역시 주소"},
		failLat:   37.1,
	}
	svc := NewBackfillService(repo, geocoder, time.Millisecond)

	result, err := svc.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// 行 1 编码失败、行 2 返回空地址、行 3 成功
	if result.Updated != 1 {
		t.Fatalf("updated want 1 got %d", result.Updated)
	}
	if result.Remaining != 2 {
		t.Fatalf("remaining want 2 got %d", result.Remaining)
	}
	if _, ok := repo.addresses[1]; ok {
		t.Fatalf("failed row must not be updated")
	}
	if _, ok := repo.addresses[2]; ok {
		t.Fatalf("empty geocode result must not be written")
	}
}

func TestBackfillRunSkipsInvalidCoordinates(t *testing.T) {
	repo := newFakePickupRepo()
	repo.missing = []models.PickupRequest{
		{ID: 1, SKU: "BPS", Lat: math.NaN(), Lng: 127.0},
		{ID: 2, SKU: "BPS", Lat: math.Inf(1), Lng: 127.0},
	}
	geocoder := &coordGeocoder{addresses: map[float64]string{}}
	svc := NewBackfillService(repo, geocoder, time.Millisecond)

	result, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Updated != 0 {
		t.Fatalf("invalid coordinates must be skipped, updated=%d", result.Updated)
	}
	if geocoder.calls != 0 {
		t.Fatalf("geocoder must not be called for invalid coordinates, calls=%d", geocoder.calls)
	}
}

func TestBackfillNeverOverwritesExistingAddress(t *testing.T) {
	repo := newFakePickupRepo()
	existing := "이미 확정된 주소"
	row := &models.PickupRequest{ID: 7, SKU: "BPS", Lat: 37.1, Lng: 127.0, Address: &existing}
	repo.rows[7] = row

	geocoder := &coordGeocoder{addresses: map[float64]string{37.1: "다른 주소"}}
	svc := NewBackfillService(repo, geocoder, time.Millisecond)

	if err := svc.BackfillOne(context.Background(), 7); err != nil {
		t.Fatalf("backfill one failed: %v", err)
	}
	if geocoder.calls != 0 {
		t.Fatalf("rows with address must be skipped before geocoding")
	}
	if *row.Address != existing {
		t.Fatalf("address was overwritten: %s", *row.Address)
	}
}

func TestBackfillOneFillsMissingAddress(t *testing.T) {
	repo := newFakePickupRepo()
	repo.rows[3] = &models.PickupRequest{ID: 3, SKU: "MS112", Lat: 37.39, Lng: 127.11}

	geocoder := &coordGeocoder{addresses: map[float64]string{37.39: "경기도 성남시"}}
	svc := NewBackfillService(repo, geocoder, time.Millisecond)

	if err := svc.BackfillOne(context.Background(), 3); err != nil {
		t.Fatalf("backfill one failed: %v", err)
	}
	if repo.addresses[3] != "경기도 성남시" {
		t.Fatalf("address not applied: %v", repo.addresses)
	}

	// 不存在的记录直接跳过
	if err := svc.BackfillOne(context.Background(), 999); err != nil {
		t.Fatalf("missing row should be a no-op: %v", err)
	}
}

func TestNormalizeBackfillLimit(t *testing.T) {
	if got := normalizeBackfillLimit(0); got != constants.BackfillDefaultLimit {
		t.Fatalf("zero limit want default %d got %d", constants.BackfillDefaultLimit, got)
	}
	if got := normalizeBackfillLimit(-3); got != constants.BackfillDefaultLimit {
		t.Fatalf("negative limit want default got %d", got)
	}
	if got := normalizeBackfillLimit(500); got != constants.BackfillMaxLimit {
		t.Fatalf("oversized limit want cap %d got %d", constants.BackfillMaxLimit, got)
	}
	if got := normalizeBackfillLimit(42); got != 42 {
		t.Fatalf("in-range limit should pass through, got %d", got)
	}
}
