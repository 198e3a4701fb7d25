package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hostel-backend/internal/billing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/domain/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// BillingService serves the read paths. Status is always computed live from
// the calculator; the stored cache is only refreshed on the way in.
type BillingService struct {
	Rooms       repositories.RoomStore
	Hostlers    repositories.HostlerStore
	Payments    repositories.PaymentStore
	PaymentLink string
	RequestID   string
}

// HostlerBilling pairs a hostler with its billing summary at a given instant.
type HostlerBilling struct {
	Hostler models.Hostler
	Billing billing.Summary
}

// Due is one row of the pending dues list, with a ready-to-send reminder.
type Due struct {
	HostlerBilling
	Message      string
	WhatsAppLink string
}

type Dashboard struct {
	TotalRooms      int `json:"total_rooms"`
	TotalBeds       int `json:"total_beds"`
	OccupiedBeds    int `json:"occupied_beds"`
	FreeBeds        int `json:"free_beds"`
	TotalHostlers   int `json:"total_hostlers"`
	PendingPayments int `json:"pending_payments"`
}

func (s BillingService) refresher() StatusRefresher {
	return StatusRefresher{Hostlers: s.Hostlers, RequestID: s.RequestID}
}

func (s BillingService) GetBillingSummary(ctx context.Context, hostlerID string, now time.Time) (HostlerBilling, error) {
	h, err := s.Hostlers.GetHostler(ctx, hostlerID)
	if err != nil {
		return HostlerBilling{}, err
	}
	payments, err := s.Payments.ListPayments(ctx, repositories.PaymentFilter{HostlerID: h.ID})
	if err != nil {
		return HostlerBilling{}, err
	}
	return summarize(h, payments, now), nil
}

func summarize(h models.Hostler, payments []models.Payment, now time.Time) HostlerBilling {
	sum := billing.Summarize(billing.Input{
		JoiningDate:     h.JoiningDate,
		NextPaymentDate: h.NextPaymentDate,
		Payments:        payments,
		Price:           h.Price,
	}, now)
	return HostlerBilling{Hostler: h, Billing: sum}
}

// ListHostlers refreshes the status cache, then returns every hostler with a
// live summary. The status filter applies to the live status.
func (s BillingService) ListHostlers(ctx context.Context, status *domain.HostlerStatus, now time.Time) ([]HostlerBilling, error) {
	if _, err := s.refresher().Refresh(ctx, now); err != nil {
		return nil, err
	}
	hostlers, err := s.Hostlers.ListHostlers(ctx, nil)
	if err != nil {
		return nil, err
	}
	all, err := s.Payments.ListPayments(ctx, repositories.PaymentFilter{})
	if err != nil {
		return nil, err
	}
	byHostler := map[string][]models.Payment{}
	for _, p := range all {
		byHostler[p.HostlerID] = append(byHostler[p.HostlerID], p)
	}

	out := []HostlerBilling{}
	for _, h := range hostlers {
		row := summarize(h, byHostler[h.ID], now)
		if status != nil && row.Billing.Status != *status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// PendingDues lists hostlers with at least one pending month.
func (s BillingService) PendingDues(ctx context.Context, now time.Time) ([]Due, error) {
	pending := domain.HostlerPending
	rows, err := s.ListHostlers(ctx, &pending, now)
	if err != nil {
		return nil, err
	}
	out := make([]Due, 0, len(rows))
	for _, row := range rows {
		msg := reminderMessage(row, s.PaymentLink)
		out = append(out, Due{
			HostlerBilling: row,
			Message:        msg,
			WhatsAppLink:   "https://wa.me/" + utils.DigitsOnly(row.Hostler.Phone) + "?text=" + url.QueryEscape(msg),
		})
	}
	return out, nil
}

func reminderMessage(row HostlerBilling, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s, your payment of %s is pending.\nDue Date: %s",
		row.Hostler.Name, utils.FormatRupee(row.Hostler.Price), utils.FormatDate(row.Billing.DueDate))
	if link != "" {
		fmt.Fprintf(&b, "\nPlease pay here: %s", link)
	}
	return b.String()
}

func (s BillingService) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	var d Dashboard
	rooms, err := s.Rooms.ListRooms(ctx)
	if err != nil {
		return d, err
	}
	d.TotalRooms = len(rooms)
	for _, r := range rooms {
		d.TotalBeds += len(r.Beds)
		for _, b := range r.Beds {
			if b.Status == domain.BedOccupied {
				d.OccupiedBeds++
			}
		}
	}
	d.FreeBeds = d.TotalBeds - d.OccupiedBeds

	rows, err := s.ListHostlers(ctx, nil, now)
	if err != nil {
		return d, err
	}
	d.TotalHostlers = len(rows)
	for _, row := range rows {
		if row.Billing.MonthsPending > 0 {
			d.PendingPayments++
		}
	}
	return d, nil
}
