package services

import (
	"context"
	"regexp"
	"strings"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

var aadharPattern = regexp.MustCompile(`^\d{12}$`)

// HostlerService owns hostler identity records: validation, phone
// normalization and uniqueness. Bed assignment goes through AllocationService.
type HostlerService struct {
	Hostlers  repositories.HostlerStore
	RequestID string
}

// NormalizePhone converts a local or 91-prefixed number to +91XXXXXXXXXX.
func NormalizePhone(raw string) (string, error) {
	digits := utils.DigitsOnly(raw)
	switch {
	case len(digits) == 10:
		return "+91" + digits, nil
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits, nil
	}
	return "", domain.ValidationError{Field: "phone", Code: domain.CodeInvalidPhone, Msg: "phone must be a 10 digit number, optionally prefixed with +91"}
}

func validateAadhar(aadhar string) error {
	if !aadharPattern.MatchString(aadhar) {
		return domain.ValidationError{Field: "aadhar", Code: domain.CodeInvalidAadhar, Msg: "aadhar must be exactly 12 digits"}
	}
	return nil
}

func required(field string) error {
	return domain.ValidationError{Field: field, Code: domain.CodeRequired, Msg: "is required"}
}

// PrepareNew validates a new hostler and fills the derived fields. Nothing is
// written. RoomNumber and a missing Price are resolved by the caller.
func (s HostlerService) PrepareNew(ctx context.Context, in models.HostlerInput) (models.Hostler, error) {
	var h models.Hostler

	if in.Name == nil || utils.NormalizeSpace(*in.Name) == "" {
		return h, required("name")
	}
	h.Name = utils.NormalizeSpace(*in.Name)

	if in.Phone == nil || strings.TrimSpace(*in.Phone) == "" {
		return h, required("phone")
	}
	phone, err := NormalizePhone(*in.Phone)
	if err != nil {
		return h, err
	}
	h.Phone = phone

	if in.Aadhar == nil || strings.TrimSpace(*in.Aadhar) == "" {
		return h, required("aadhar")
	}
	h.Aadhar = strings.TrimSpace(*in.Aadhar)
	if err := validateAadhar(h.Aadhar); err != nil {
		return h, err
	}

	if in.RoomID == nil || strings.TrimSpace(*in.RoomID) == "" {
		return h, required("room_id")
	}
	h.RoomID = strings.TrimSpace(*in.RoomID)
	if in.BedNo == nil || strings.TrimSpace(*in.BedNo) == "" {
		return h, required("bed_no")
	}
	h.BedNo = strings.TrimSpace(*in.BedNo)

	if in.Price != nil {
		if *in.Price <= 0 {
			return h, domain.ValidationError{Field: "price", Code: domain.CodeInvalidPrice, Msg: "price must be positive"}
		}
		h.Price = *in.Price
	}

	if in.JoiningDate == nil || in.JoiningDate.IsZero() {
		return h, required("joining_date")
	}
	h.JoiningDate = utils.DateOf(*in.JoiningDate)
	next := utils.AddMonths(h.JoiningDate, 1)
	h.NextPaymentDate = &next
	h.Status = domain.HostlerPending

	if in.Image != nil {
		h.Image = strings.TrimSpace(*in.Image)
	}

	if err := s.ensureUnique(ctx, "", h.Phone, h.Aadhar); err != nil {
		return h, err
	}
	return h, nil
}

// PrepareUpdate loads the hostler and applies the non-nil fields of in.
// It returns the stored record and the proposed replacement.
func (s HostlerService) PrepareUpdate(ctx context.Context, id string, in models.HostlerInput) (models.Hostler, models.Hostler, error) {
	old, err := s.Hostlers.GetHostler(ctx, id)
	if err != nil {
		return models.Hostler{}, models.Hostler{}, err
	}
	h := old
	if old.NextPaymentDate != nil {
		next := *old.NextPaymentDate
		h.NextPaymentDate = &next
	}

	if in.Name != nil {
		if h.Name = utils.NormalizeSpace(*in.Name); h.Name == "" {
			return old, h, required("name")
		}
	}
	if in.Phone != nil {
		if h.Phone, err = NormalizePhone(*in.Phone); err != nil {
			return old, h, err
		}
	}
	if in.Aadhar != nil {
		h.Aadhar = strings.TrimSpace(*in.Aadhar)
		if err := validateAadhar(h.Aadhar); err != nil {
			return old, h, err
		}
	}
	if in.Image != nil {
		h.Image = strings.TrimSpace(*in.Image)
	}
	if in.RoomID != nil {
		if h.RoomID = strings.TrimSpace(*in.RoomID); h.RoomID == "" {
			return old, h, required("room_id")
		}
	}
	if in.BedNo != nil {
		if h.BedNo = strings.TrimSpace(*in.BedNo); h.BedNo == "" {
			return old, h, required("bed_no")
		}
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return old, h, domain.ValidationError{Field: "price", Code: domain.CodeInvalidPrice, Msg: "price must be positive"}
		}
		h.Price = *in.Price
	}
	if in.JoiningDate != nil {
		h.JoiningDate = utils.DateOf(*in.JoiningDate)
	}
	if in.NextPaymentDate != nil {
		next := utils.DateOf(*in.NextPaymentDate)
		h.NextPaymentDate = &next
	}

	phone, aadhar := "", ""
	if h.Phone != old.Phone {
		phone = h.Phone
	}
	if h.Aadhar != old.Aadhar {
		aadhar = h.Aadhar
	}
	if err := s.ensureUnique(ctx, old.ID, phone, aadhar); err != nil {
		return old, h, err
	}
	return old, h, nil
}

// ensureUnique checks phone and aadhar against every hostler but selfID.
// Empty values are skipped.
func (s HostlerService) ensureUnique(ctx context.Context, selfID, phone, aadhar string) error {
	if phone != "" {
		found, err := s.Hostlers.FindByPhone(ctx, phone)
		if err != nil {
			return err
		}
		for _, other := range found {
			if other.ID != selfID {
				return domain.ConflictError{Resource: "hostler", Code: domain.CodeDuplicatePhone, Msg: "phone " + phone + " is already registered"}
			}
		}
	}
	if aadhar != "" {
		found, err := s.Hostlers.FindByAadhar(ctx, aadhar)
		if err != nil {
			return err
		}
		for _, other := range found {
			if other.ID != selfID {
				return domain.ConflictError{Resource: "hostler", Code: domain.CodeDuplicateAadhar, Msg: "aadhar is already registered"}
			}
		}
	}
	return nil
}

func (s HostlerService) Get(ctx context.Context, id string) (models.Hostler, error) {
	return s.Hostlers.GetHostler(ctx, id)
}

func (s HostlerService) List(ctx context.Context, status *domain.HostlerStatus) ([]models.Hostler, error) {
	return s.Hostlers.ListHostlers(ctx, status)
}
