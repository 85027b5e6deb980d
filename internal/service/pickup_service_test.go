package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/http/response"
	"github.com/qr-pickup/internal/models"
)

type fakePickupRepo struct {
	created   []*models.PickupRequest
	createErr error
	rows      map[uint]*models.PickupRequest
	addresses map[uint]string
	missing   []models.PickupRequest
	remaining int64
}

func newFakePickupRepo() *fakePickupRepo {
	return &fakePickupRepo{
		rows:      map[uint]*models.PickupRequest{},
		addresses: map[uint]string{},
	}
}

func (f *fakePickupRepo) Create(row *models.PickupRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	row.ID = uint(len(f.created) + 1)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	f.created = append(f.created, row)
	f.rows[row.ID] = row
	return nil
}

func (f *fakePickupRepo) GetByID(id uint) (*models.PickupRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (f *fakePickupRepo) ListRecent(limit int) ([]models.PickupRequest, error) {
	out := make([]models.PickupRequest, 0, len(f.created))
	for _, row := range f.created {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakePickupRepo) ListMissingAddress(limit int) ([]models.PickupRequest, error) {
	if limit > len(f.missing) {
		limit = len(f.missing)
	}
	return f.missing[:limit], nil
}

func (f *fakePickupRepo) CountMissingAddress() (int64, error) {
	return f.remaining, nil
}

func (f *fakePickupRepo) UpdateAddressIfEmpty(id uint, address string) (bool, error) {
	if _, exists := f.addresses[id]; exists {
		return false, nil
	}
	if row, ok := f.rows[id]; ok && row.HasAddress() {
		return false, nil
	}
	f.addresses[id] = address
	return true, nil
}

type fakeProductRepo struct {
	skus map[string]bool
}

func (f *fakeProductRepo) ListActive() ([]models.Product, error) { return nil, nil }

func (f *fakeProductRepo) GetBySKU(sku string) (*models.Product, error) {
	if f.skus[sku] {
		return &models.Product{SKU: sku, IsActive: true}, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) ExistsSKU(sku string) (bool, error) {
	return f.skus[sku], nil
}

type fakeGeocoder struct {
	address string
	err     error
	calls   int
}

func (f *fakeGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	f.calls++
	return f.address, f.err
}

type fakePhotoStore struct {
	url string
	err error
}

func (f *fakePhotoStore) Save(sku string, data []byte, declaredType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeEnqueuer struct {
	enqueued []uint
}

func (f *fakeEnqueuer) EnqueuePickupGeocodeRetry(pickupID uint, delay time.Duration) error {
	f.enqueued = append(f.enqueued, pickupID)
	return nil
}

func newTestPickupService(repo *fakePickupRepo, geocoder *fakeGeocoder, store *fakePhotoStore, enqueuer *fakeEnqueuer) *PickupService {
	products := &fakeProductRepo{skus: map[string]bool{"BPS": true, "MS108": true, "MS112": true}}
	return NewPickupService(repo, products, geocoder, store, enqueuer, time.Minute)
}

func TestCreatePickupNormalizesFields(t *testing.T) {
	repo := newFakePickupRepo()
	svc := newTestPickupService(repo, &fakeGeocoder{address: "서울특별시 중구"}, &fakePhotoStore{}, nil)

	row, err := svc.Create(context.Background(), CreatePickupInput{
		SKU:        " bps ",
		ItemNo:     " KDA0001 ",
		Qty:        "5000",
		LoadStatus: " o ",
		Note:       "  메모  ",
		Lat:        "37.5663",
		Lng:        "126.9779",
		Accuracy:   "12.5",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.SKU != "BPS" {
		t.Fatalf("sku want BPS got %s", row.SKU)
	}
	if row.ItemNo == nil || *row.ItemNo != "KDA0001" {
		t.Fatalf("item_no want KDA0001 got %v", row.ItemNo)
	}
	if row.Qty != constants.QtyMax {
		t.Fatalf("qty want %d got %d", constants.QtyMax, row.Qty)
	}
	if row.LoadStatus != constants.LoadStatusLoaded {
		t.Fatalf("load_status want O got %s", row.LoadStatus)
	}
	if row.Note != "메모" {
		t.Fatalf("note want trimmed got %q", row.Note)
	}
	if row.Address == nil || *row.Address != "서울특별시 중구" {
		t.Fatalf("address not set: %v", row.Address)
	}
	if row.Accuracy == nil || *row.Accuracy != 12.5 {
		t.Fatalf("accuracy want 12.5 got %v", row.Accuracy)
	}
}

func TestCreatePickupRejectsUnknownSKU(t *testing.T) {
	repo := newFakePickupRepo()
	svc := newTestPickupService(repo, &fakeGeocoder{}, &fakePhotoStore{}, nil)

	_, err := svc.Create(context.Background(), CreatePickupInput{
		SKU: "NOPE",
		Lat: "37.5",
		Lng: "127.0",
	})
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code != response.CodeBadRequest {
		t.Fatalf("want bad request error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("row should not be persisted on invalid sku")
	}
}

func TestCreatePickupRejectsBadCoordinates(t *testing.T) {
	repo := newFakePickupRepo()
	svc := newTestPickupService(repo, &fakeGeocoder{}, &fakePhotoStore{}, nil)

	for _, tc := range []struct{ lat, lng string }{
		{"", "127.0"},
		{"37.5", ""},
		{"abc", "127.0"},
		{"NaN", "127.0"},
		{"37.5", "+Inf"},
	} {
		_, err := svc.Create(context.Background(), CreatePickupInput{SKU: "BPS", Lat: tc.lat, Lng: tc.lng})
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.Code != response.CodeBadRequest {
			t.Fatalf("lat=%q lng=%q want bad request, got %v", tc.lat, tc.lng, err)
		}
	}
}

func TestCreatePickupGeocodeFailureDoesNotBlock(t *testing.T) {
	repo := newFakePickupRepo()
	enqueuer := &fakeEnqueuer{}
	svc := newTestPickupService(repo, &fakeGeocoder{err: errors.New("timeout")}, &fakePhotoStore{}, enqueuer)

	row, err := svc.Create(context.Background(), CreatePickupInput{
		SKU: "MS108",
		Lat: "35.1151",
		Lng: "129.0403",
	})
	if err != nil {
		t.Fatalf("geocode failure should not block submit: %v", err)
	}
	if row.Address != nil {
		t.Fatalf("address should stay empty on geocode failure")
	}
	if len(enqueuer.enqueued) != 1 || enqueuer.enqueued[0] != row.ID {
		t.Fatalf("geocode retry should be enqueued for row %d, got %v", row.ID, enqueuer.enqueued)
	}
}

func TestCreatePickupInvalidPhotoIsClientError(t *testing.T) {
	repo := newFakePickupRepo()
	svc := newTestPickupService(repo, &fakeGeocoder{}, &fakePhotoStore{err: ErrPhotoType}, nil)

	_, err := svc.Create(context.Background(), CreatePickupInput{
		SKU:   "BPS",
		Lat:   "37.5",
		Lng:   "127.0",
		Photo: []byte{0x1, 0x2},
	})
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code != response.CodeBadRequest {
		t.Fatalf("photo type error want 400, got %v", err)
	}

	svc = newTestPickupService(repo, &fakeGeocoder{}, &fakePhotoStore{err: errors.New("disk full")}, nil)
	_, err = svc.Create(context.Background(), CreatePickupInput{
		SKU:   "BPS",
		Lat:   "37.5",
		Lng:   "127.0",
		Photo: []byte{0x1, 0x2},
	})
	if !errors.As(err, &appErr) || appErr.Code != response.CodeInternal {
		t.Fatalf("photo store error want 500, got %v", err)
	}
}

func TestNormalizeQty(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{" 7 ", 7},
		{"0", 1},
		{"-5", 1},
		{"abc", 1},
		{"", 1},
		{"999", 999},
		{"1000", 999},
	}
	for _, tc := range cases {
		if got := NormalizeQty(tc.raw); got != tc.want {
			t.Fatalf("NormalizeQty(%q) want %d got %d", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizeLoadStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"O", constants.LoadStatusLoaded},
		{"o", constants.LoadStatusLoaded},
		{" x ", constants.LoadStatusUnloaded},
		{"", constants.LoadStatusUnknown},
		{"yes", constants.LoadStatusUnknown},
	}
	for _, tc := range cases {
		if got := NormalizeLoadStatus(tc.raw); got != tc.want {
			t.Fatalf("NormalizeLoadStatus(%q) want %s got %s", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizeNoteTruncatesByRune(t *testing.T) {
	long := ""
	for i := 0; i < 120; i++ {
		long += "가"
	}
	got := NormalizeNote("  " + long + "  ")
	if len([]rune(got)) != constants.NoteMaxRunes {
		t.Fatalf("note rune length want %d got %d", constants.NoteMaxRunes, len([]rune(got)))
	}
}

func TestParseScanCode(t *testing.T) {
	sku, item := ParseScanCode("bps_KDA0001")
	if sku != "BPS" {
		t.Fatalf("sku want BPS got %s", sku)
	}
	if item == nil || *item != "KDA0001" {
		t.Fatalf("item want KDA0001 got %v", item)
	}

	sku, item = ParseScanCode("ms108_KDA_0007")
	if sku != "MS108" {
		t.Fatalf("sku want MS108 got %s", sku)
	}
	if item == nil || *item != "KDA_0007" {
		t.Fatalf("split must stop at first underscore, got %v", item)
	}

	sku, item = ParseScanCode("ms112")
	if sku != "MS112" || item != nil {
		t.Fatalf("bare sku want (MS112, nil) got (%s, %v)", sku, item)
	}

	sku, item = ParseScanCode("bps_")
	if sku != "BPS" || item != nil {
		t.Fatalf("trailing underscore want (BPS, nil) got (%s, %v)", sku, item)
	}
}
