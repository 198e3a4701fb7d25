package handlers

import (
	"hostel-backend/internal/billing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/services"
	"hostel-backend/internal/utils"
)

// ---- requests ----

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type roomRequest struct {
	RoomNumber *string  `json:"room_number" binding:"omitempty,max=32"`
	BedCount   *int     `json:"bed_count" binding:"omitempty,gte=0,lte=64"`
	BedNumbers []string `json:"bed_numbers" binding:"omitempty,max=64,dive,max=40"`
	// Beds is a comma separated alternative to BedNumbers.
	Beds   string  `json:"beds"`
	Price  *int64  `json:"price"`
	Toilet *string `json:"toilet"`
}

func (r roomRequest) bedNumbers() []string {
	if len(r.BedNumbers) > 0 {
		return r.BedNumbers
	}
	return utils.SplitBedList(r.Beds)
}

// input builds the service payload; unset fields fall back to base.
func (r roomRequest) input(base models.Room) services.RoomInput {
	in := services.RoomInput{
		RoomNumber: base.RoomNumber,
		BedNumbers: r.bedNumbers(),
		Price:      base.Price,
		Toilet:     string(base.Toilet),
	}
	if r.RoomNumber != nil {
		in.RoomNumber = *r.RoomNumber
	}
	if r.BedCount != nil {
		in.BedCount = *r.BedCount
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	if r.Toilet != nil {
		in.Toilet = *r.Toilet
	}
	return in
}

type bedStatusRequest struct {
	Status       string  `json:"status" binding:"required"`
	OccupantName *string `json:"occupant_name" binding:"omitempty,max=255"`
}

type hostlerRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=255"`
	Phone           *string `json:"phone"`
	Aadhar          *string `json:"aadhar"`
	Image           *string `json:"image"`
	RoomID          *string `json:"room_id"`
	BedNo           *string `json:"bed_no" binding:"omitempty,max=40"`
	Price           *int64  `json:"price"`
	JoiningDate     *string `json:"joining_date" binding:"omitempty,datetime=2006-01-02"`
	NextPaymentDate *string `json:"next_payment_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r hostlerRequest) input() (models.HostlerInput, error) {
	joined, err := parseDatePtr("joining_date", r.JoiningDate)
	if err != nil {
		return models.HostlerInput{}, err
	}
	next, err := parseDatePtr("next_payment_date", r.NextPaymentDate)
	if err != nil {
		return models.HostlerInput{}, err
	}
	return models.HostlerInput{
		Name:            r.Name,
		Phone:           r.Phone,
		Aadhar:          r.Aadhar,
		Image:           r.Image,
		RoomID:          r.RoomID,
		BedNo:           r.BedNo,
		Price:           r.Price,
		JoiningDate:     joined,
		NextPaymentDate: next,
	}, nil
}

type submitPaymentRequest struct {
	HostlerID   string  `json:"hostler_id" binding:"required"`
	Amount      int64   `json:"amount"`
	NumPayments int     `json:"num_payments" binding:"gte=0"`
	Proof       string  `json:"proof"`
	PaymentDate *string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
}

type approvePaymentRequest struct {
	NextPaymentDate *string `json:"next_payment_date" binding:"omitempty,datetime=2006-01-02"`
	Amount          *int64  `json:"amount"`
	NumPayments     *int    `json:"num_payments"`
}

// ---- responses ----

type bedResponse struct {
	Number       string           `json:"bed_number"`
	Status       domain.BedStatus `json:"status"`
	HostlerID    string           `json:"hostler_id,omitempty"`
	OccupantName string           `json:"occupant_name,omitempty"`
	Version      int64            `json:"version"`
}

type roomResponse struct {
	ID           string            `json:"id"`
	RoomNumber   string            `json:"room_number"`
	Price        int64             `json:"price"`
	Toilet       domain.Toilet     `json:"toilet"`
	Status       domain.RoomStatus `json:"status"`
	BedCount     int               `json:"bed_count"`
	OccupiedBeds int               `json:"occupied_beds"`
	Beds         []bedResponse     `json:"beds"`
	CreatedAt    string            `json:"created_at"`
}

func toBeds(beds []models.Bed) []bedResponse {
	out := make([]bedResponse, 0, len(beds))
	for _, b := range beds {
		out = append(out, bedResponse{Number: b.Number, Status: b.Status, HostlerID: b.HostlerID, OccupantName: b.OccupantName, Version: b.Version})
	}
	return out
}

func toRoom(r models.Room) roomResponse {
	occupied := 0
	for _, b := range r.Beds {
		if b.Status == domain.BedOccupied {
			occupied++
		}
	}
	return roomResponse{
		ID:           r.ID,
		RoomNumber:   r.RoomNumber,
		Price:        r.Price,
		Toilet:       r.Toilet,
		Status:       r.Status,
		BedCount:     len(r.Beds),
		OccupiedBeds: occupied,
		Beds:         toBeds(r.Beds),
		CreatedAt:    utils.FormatDateTime(r.CreatedAt),
	}
}

type hostlerResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Phone           string               `json:"phone"`
	Aadhar          string               `json:"aadhar"`
	Image           string               `json:"image,omitempty"`
	RoomID          string               `json:"room_id"`
	RoomNumber      string               `json:"room_number"`
	BedNo           string               `json:"bed_no"`
	Price           int64                `json:"price"`
	JoiningDate     string               `json:"joining_date"`
	NextPaymentDate string               `json:"next_payment_date,omitempty"`
	Status          domain.HostlerStatus `json:"status"`
	CreatedAt       string               `json:"created_at"`
}

func toHostler(h models.Hostler) hostlerResponse {
	return hostlerResponse{
		ID:              h.ID,
		Name:            h.Name,
		Phone:           h.Phone,
		Aadhar:          h.Aadhar,
		Image:           h.Image,
		RoomID:          h.RoomID,
		RoomNumber:      h.RoomNumber,
		BedNo:           h.BedNo,
		Price:           h.Price,
		JoiningDate:     utils.FormatDate(h.JoiningDate),
		NextPaymentDate: utils.FormatDatePtr(h.NextPaymentDate),
		Status:          h.Status,
		CreatedAt:       utils.FormatDateTime(h.CreatedAt),
	}
}

type billingResponse struct {
	DueDate string `json:"due_date"`
	billing.Summary
}

// hostlerBillingResponse reports the live status; the stored one may lag.
type hostlerBillingResponse struct {
	hostlerResponse
	Billing billingResponse `json:"billing"`
}

func toHostlerBilling(row services.HostlerBilling) hostlerBillingResponse {
	out := hostlerBillingResponse{
		hostlerResponse: toHostler(row.Hostler),
		Billing:         billingResponse{DueDate: utils.FormatDate(row.Billing.DueDate), Summary: row.Billing},
	}
	out.Status = row.Billing.Status
	return out
}

type dueResponse struct {
	hostlerBillingResponse
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
}

type paymentResponse struct {
	ID          string               `json:"id"`
	HostlerID   string               `json:"hostler_id"`
	HostlerName string               `json:"hostler_name"`
	Amount      int64                `json:"amount"`
	NumPayments int                  `json:"num_payments"`
	PaymentDate string               `json:"payment_date"`
	Status      domain.PaymentStatus `json:"status"`
	Proof       string               `json:"proof,omitempty"`
	CreatedAt   string               `json:"created_at"`
}

func toPayment(p models.Payment) paymentResponse {
	months := p.NumPayments
	if months < 1 {
		months = 1
	}
	return paymentResponse{
		ID:          p.ID,
		HostlerID:   p.HostlerID,
		HostlerName: p.HostlerName,
		Amount:      p.Amount,
		NumPayments: months,
		PaymentDate: utils.FormatDate(p.PaymentDate),
		Status:      p.Status,
		Proof:       p.Proof,
		CreatedAt:   utils.FormatDateTime(p.CreatedAt),
	}
}

func toPayments(ps []models.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPayment(p))
	}
	return out
}

type reportResponse struct {
	From         string            `json:"from,omitempty"`
	To           string            `json:"to,omitempty"`
	Count        int               `json:"count"`
	PaidCount    int               `json:"paid_count"`
	TotalRevenue int64             `json:"total_revenue"`
	Payments     []paymentResponse `json:"payments"`
}
