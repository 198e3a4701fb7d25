package services

import (
	"context"
	"testing"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "+919876543210", true},
		{"+91 98765 43210", "+919876543210", true},
		{"919876543210", "+919876543210", true},
		{"98765-43210", "+919876543210", true},
		{"12345", "", false},
		{"449876543210", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("NormalizePhone(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && domain.CodeOf(err) != domain.CodeInvalidPhone {
			t.Fatalf("NormalizePhone(%q) expected invalid_phone, got %q %v", tc.in, got, err)
		}
	}
}

func TestPrepareNewSetsCursorAndPending(t *testing.T) {
	f := newFixture()
	in := hostlerInput("  Asha   Rao ", "9876543210", "123412341234", "r1", "1", day(2025, 1, 31))

	h, err := f.alloc.directory().PrepareNew(context.Background(), in)
	if err != nil {
		t.Fatalf("PrepareNew returned error: %v", err)
	}
	if h.Name != "Asha Rao" || h.Phone != "+919876543210" {
		t.Fatalf("fields not normalized: %+v", h)
	}
	if h.Status != domain.HostlerPending || h.NextPaymentDate == nil || !h.NextPaymentDate.Equal(day(2025, 2, 28)) {
		t.Fatalf("unexpected billing fields: status=%s next=%v", h.Status, h.NextPaymentDate)
	}
}

func TestPrepareNewValidation(t *testing.T) {
	f := newFixture()
	dir := f.alloc.directory()
	ctx := context.Background()

	_, err := dir.PrepareNew(ctx, hostlerInput("Asha", "9876543210", "1234123412345", "r1", "1", day(2025, 1, 1)))
	expectCode(t, err, domain.CodeInvalidAadhar)

	_, err = dir.PrepareNew(ctx, hostlerInput("Asha", "9876543210", "12341234123a", "r1", "1", day(2025, 1, 1)))
	expectCode(t, err, domain.CodeInvalidAadhar)

	_, err = dir.PrepareNew(ctx, hostlerInput("", "9876543210", "123412341234", "r1", "1", day(2025, 1, 1)))
	expectCode(t, err, domain.CodeRequired)

	price := int64(0)
	in := hostlerInput("Asha", "9876543210", "123412341234", "r1", "1", day(2025, 1, 1))
	in.Price = &price
	_, err = dir.PrepareNew(ctx, in)
	expectCode(t, err, domain.CodeInvalidPrice)
}

func TestPrepareNewDuplicates(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1", "2")
	f.register(t, "Asha", "9876543210", "123412341234", room, "1", day(2025, 1, 1))

	dir := f.alloc.directory()
	_, err := dir.PrepareNew(context.Background(), hostlerInput("Ravi", "+91 98765 43210", "999988887777", room.ID, "2", day(2025, 1, 1)))
	expectCode(t, err, domain.CodeDuplicatePhone)

	_, err = dir.PrepareNew(context.Background(), hostlerInput("Ravi", "9000000001", "123412341234", room.ID, "2", day(2025, 1, 1)))
	expectCode(t, err, domain.CodeDuplicateAadhar)
}

func TestPrepareUpdateChecksOnlyChangedFields(t *testing.T) {
	f := newFixture()
	room := f.room(t, "101", 5000, "1", "2")
	asha := f.register(t, "Asha", "9876543210", "123412341234", room, "1", day(2025, 1, 1))
	f.register(t, "Ravi", "9000000001", "999988887777", room, "2", day(2025, 1, 1))
	dir := f.alloc.directory()
	ctx := context.Background()

	samePhone := "9876543210"
	if _, _, err := dir.PrepareUpdate(ctx, asha.ID, models.HostlerInput{Phone: &samePhone}); err != nil {
		t.Fatalf("unchanged phone should not conflict with self: %v", err)
	}

	taken := "9000000001"
	_, _, err := dir.PrepareUpdate(ctx, asha.ID, models.HostlerInput{Phone: &taken})
	expectCode(t, err, domain.CodeDuplicatePhone)

	_, _, err = dir.PrepareUpdate(ctx, "missing", models.HostlerInput{})
	expectCode(t, err, domain.CodeHostlerNotFound)
}
