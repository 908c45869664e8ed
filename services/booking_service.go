// services/booking_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studiopro-backend/models"
	"studiopro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActorContext identifies who is calling the engine. It is resolved from
// the session by the transport layer and trusted here; the engine never
// re-derives it.
type ActorContext struct {
	Role     string
	StudioID uuid.UUID
	UserID   uuid.UUID
}

func (a ActorContext) actorLabel() string {
	if a.Role == "" {
		return "system"
	}
	return a.Role
}

type BookingService struct {
	db           *gorm.DB
	availability *AvailabilityChecker
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{
		db:           db,
		availability: NewAvailabilityChecker(db),
	}
}

// AddonInput is one addon line in a booking request. StartTime/EndTime
// are required only for facility-bound hourly addons.
type AddonInput struct {
	AddonID   uuid.UUID `json:"addonId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"min=0"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

type CreateReservationInput struct {
	CustomerID    *uuid.UUID `json:"customerId"`
	CustomerName  string     `json:"customerName" binding:"required"`
	CustomerPhone string     `json:"customerPhone" binding:"required"`
	IsGuest       bool       `json:"isGuest"`

	PackageID uuid.UUID    `json:"packageId" binding:"required"`
	Date      time.Time    `json:"date" binding:"required"`
	StartTime string       `json:"startTime" binding:"required"`
	Addons    []AddonInput `json:"addons"`

	DiscountCode  string  `json:"discountCode"`
	PaymentOption string  `json:"paymentOption" binding:"omitempty,oneof=deposit full"`
	AmountPaid    float64 `json:"amountPaid" binding:"min=0"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes"`
}

// serializableTx opens a serializable transaction: the availability
// re-check and the reservation insert must be atomic or two concurrent
// requests can double-book the slot.
func (s *BookingService) serializableTx() *gorm.DB {
	return s.db.Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
}

// CreateReservation runs the full booking pipeline: quote, discount
// validation, slot hold, and the transactional conflict re-check plus
// insert.
func (s *BookingService) CreateReservation(ctx context.Context, actor ActorContext, input CreateReservationInput) (*models.Reservation, error) {
	var pkg models.Package
	if err := s.db.Preload("Addons").
		Where("studio_id = ? AND id = ? AND is_active = true", actor.StudioID, input.PackageID).
		First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Denied("package not found")
		}
		return nil, err
	}

	startMin, err := utils.ParseClock(input.StartTime)
	if err != nil {
		return nil, Denied("invalid start time: " + err.Error())
	}
	window := Window{Start: startMin, End: startMin + pkg.Duration}

	if input.PaymentOption == "" {
		input.PaymentOption = models.PaymentOptionDeposit
	}

	rows, selections, err := s.buildAddonLines(actor.StudioID, &pkg, input.Addons)
	if err != nil {
		return nil, err
	}

	// Price the booking before touching the discount: the validator
	// needs the pre-discount subtotal.
	base := BuildQuote(QuoteInput{
		PackagePrice:  pkg.Price,
		Addons:        selections,
		PaymentOption: input.PaymentOption,
		DPPercentage:  pkg.DPPercentage,
	})

	var discount *models.Discount
	var discountAmount float64
	if input.DiscountCode != "" {
		var d models.Discount
		if err := s.db.Where("studio_id = ? AND code = ?", actor.StudioID, input.DiscountCode).
			First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, Denied("discount code not found")
			}
			return nil, err
		}
		res := ValidateDiscount(&d, DiscountBase{PackagePrice: base.PackagePrice, AddonTotal: base.AddonTotal}, actor.StudioID, time.Now())
		if !res.Valid {
			return nil, Denied(res.Reason)
		}
		discount = &d
		discountAmount = res.DiscountAmount
	}

	quote := BuildQuote(QuoteInput{
		PackagePrice:   pkg.Price,
		Addons:         selections,
		DiscountAmount: discountAmount,
		PaymentOption:  input.PaymentOption,
		DPPercentage:   pkg.DPPercentage,
	})

	if input.AmountPaid > 0 {
		if dec := ValidateDeposit(input.AmountPaid, quote.TotalAmount, pkg.DPPercentage, input.PaymentOption); !dec.Allowed {
			return nil, Denied(dec.Reason)
		}
	}

	// Short-lived hold so concurrent requests for the same window
	// serialize before the transactional check.
	holdKey, err := AcquireSlotHold(ctx, actor.StudioID, input.Date, window)
	if err != nil {
		return nil, err
	}
	defer ReleaseSlotHold(ctx, holdKey)

	reservation := &models.Reservation{
		ID:              uuid.New(),
		StudioID:        actor.StudioID,
		BookingCode:     utils.GenerateBookingCode(input.Date),
		CustomerID:      input.CustomerID,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		IsGuest:         input.IsGuest,
		PackageID:       pkg.ID,
		Date:            utils.BeginningOfDay(input.Date),
		StartTime:       utils.FormatClock(window.Start),
		EndTime:         utils.FormatClock(window.End),
		Duration:        pkg.Duration,
		PackagePrice:    quote.PackagePrice,
		AddonTotal:      quote.AddonTotal,
		Subtotal:        quote.Subtotal,
		TaxAmount:       quote.TaxAmount,
		DiscountAmount:  quote.DiscountAmount,
		TotalAmount:     quote.TotalAmount,
		DPAmount:        quote.DPAmount,
		RemainingAmount: quote.RemainingAmount,
		PaymentOption:   input.PaymentOption,
		Notes:           input.Notes,
	}
	if discount != nil {
		reservation.DiscountID = &discount.ID
	}
	if actor.UserID != uuid.Nil {
		reservation.CreatedByUserID = &actor.UserID
	}

	transition := DecideCreate(reservation, input.AmountPaid)
	reservation.Status = transition.Effects.NewStatus
	reservation.PaymentStatus = transition.Effects.NewPaymentStatus

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	txChecker := NewAvailabilityChecker(tx)

	// Conflict re-check inside the transaction; the pre-check alone is
	// not a lock.
	free, err := txChecker.IsSlotAvailable(actor.StudioID, input.Date, window, nil)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !free {
		tx.Rollback()
		return nil, ErrSlotConflict
	}

	for _, row := range rows {
		if row.FacilityID == nil {
			continue
		}
		fw, perr := parseAddonWindow(row)
		if perr != nil {
			tx.Rollback()
			return nil, Denied(perr.Error())
		}
		ok, ferr := txChecker.IsFacilityAvailable(*row.FacilityID, input.Date, fw, nil)
		if ferr != nil {
			tx.Rollback()
			return nil, ferr
		}
		if !ok {
			tx.Rollback()
			return nil, ErrFacilityConflict
		}
	}

	if err := tx.Create(reservation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range rows {
		rows[i].ReservationID = reservation.ID
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if transition.Effects.DiscountUsageDelta > 0 {
		if err := tx.Model(&models.Discount{}).Where("id = ?", discount.ID).
			Update("used_count", gorm.Expr("used_count + ?", transition.Effects.DiscountUsageDelta)).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if input.AmountPaid > 0 {
		now := time.Now()
		kind := models.PaymentKindDeposit
		if input.AmountPaid >= quote.TotalAmount {
			kind = models.PaymentKindFull
		}
		payment := models.Payment{
			ReservationID: reservation.ID,
			Amount:        input.AmountPaid,
			Kind:          kind,
			Status:        string(models.PayPaid),
			Method:        input.PaymentMethod,
			PaidAt:        &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if input.CustomerID != nil {
		if err := tx.Model(&models.Customer{}).Where("id = ?", *input.CustomerID).
			Updates(map[string]interface{}{
				"total_bookings": gorm.Expr("total_bookings + ?", 1),
				"total_spent":    gorm.Expr("total_spent + ?", quote.TotalAmount),
				"last_booking":   time.Now(),
			}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventCreated,
		Actor:         actor.actorLabel(),
		After: models.JSONB{
			"status":        string(reservation.Status),
			"paymentStatus": string(reservation.PaymentStatus),
			"date":          reservation.Date.Format("2006-01-02"),
			"startTime":     reservation.StartTime,
			"totalAmount":   reservation.TotalAmount,
		},
		Reason: "reservation created",
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reservation.Addons = rows
	return reservation, nil
}

// buildAddonLines resolves addon inputs against the catalog and the
// package's bundle configuration, returning both the rows to persist and
// the pricing selections.
func (s *BookingService) buildAddonLines(studioID uuid.UUID, pkg *models.Package, inputs []AddonInput) ([]models.ReservationAddon, []AddonSelection, error) {
	bundled := make(map[uuid.UUID]models.PackageAddon, len(pkg.Addons))
	for _, pa := range pkg.Addons {
		bundled[pa.AddonID] = pa
	}

	var rows []models.ReservationAddon
	var selections []AddonSelection

	for _, in := range inputs {
		var addon models.Addon
		if err := s.db.Where("studio_id = ? AND id = ? AND is_active = true", studioID, in.AddonID).
			First(&addon).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, Denied(fmt.Sprintf("addon %s not found", in.AddonID))
			}
			return nil, nil, err
		}

		var paPtr *models.PackageAddon
		if pa, isBundled := bundled[addon.ID]; isBundled {
			paPtr = &pa
		}

		row, sel, err := buildAddonLine(addon, paPtr, in)
		if err != nil {
			return nil, nil, Denied(err.Error())
		}

		rows = append(rows, row)
		selections = append(selections, sel)
	}

	return rows, selections, nil
}

// buildAddonLine turns one catalog addon plus its optional bundle
// configuration into a reservation line. A facility-bound addon always
// carries its own window and occupies the facility for it, billed per
// started hour.
func buildAddonLine(addon models.Addon, pa *models.PackageAddon, in AddonInput) (models.ReservationAddon, AddonSelection, error) {
	row := models.ReservationAddon{
		ID:        uuid.New(),
		AddonID:   addon.ID,
		AddonName: addon.Name,
		UnitPrice: addon.Price,
		Quantity:  in.Quantity,
	}
	sel := AddonSelection{UnitPrice: addon.Price, Quantity: in.Quantity}

	if pa != nil {
		row.Included = pa.Included
		sel.Included = pa.Included
		sel.DiscountedPrice = pa.DiscountedPrice
		if pa.DiscountedPrice != nil {
			row.UnitPrice = *pa.DiscountedPrice
		}
	}

	if addon.FacilityID != nil {
		if in.StartTime == "" || in.EndTime == "" {
			return row, sel, fmt.Errorf("addon %q needs a start and end time", addon.Name)
		}
		start, err := utils.ParseClock(in.StartTime)
		if err != nil {
			return row, sel, err
		}
		end, err := utils.ParseClock(in.EndTime)
		if err != nil {
			return row, sel, err
		}
		if end <= start {
			return row, sel, fmt.Errorf("addon %q end time must be after its start time", addon.Name)
		}
		hours := (end - start + 59) / 60
		row.FacilityID = addon.FacilityID
		row.StartTime = utils.FormatClock(start)
		row.EndTime = utils.FormatClock(end)
		row.DurationHours = hours
		row.Quantity = hours
		sel.Quantity = hours
	} else if row.Quantity <= 0 {
		row.Quantity = 1
		sel.Quantity = 1
	}

	if row.Included {
		row.TotalPrice = 0
	} else {
		row.TotalPrice = float64(row.Quantity) * row.UnitPrice
	}

	return row, sel, nil
}

func parseAddonWindow(row models.ReservationAddon) (Window, error) {
	start, err := utils.ParseClock(row.StartTime)
	if err != nil {
		return Window{}, fmt.Errorf("addon %q has an invalid start time", row.AddonName)
	}
	end, err := utils.ParseClock(row.EndTime)
	if err != nil {
		return Window{}, fmt.Errorf("addon %q has an invalid end time", row.AddonName)
	}
	return Window{Start: start, End: end}, nil
}

// RescheduleInput moves a reservation to a new date and start time.
// Duration, when set, overrides the current session length; otherwise
// it is carried over.
type RescheduleInput struct {
	Date      time.Time `json:"date" binding:"required"`
	StartTime string    `json:"startTime" binding:"required"`
	Duration  *int      `json:"duration" binding:"omitempty,min=15"`
	Reason    string    `json:"reason" binding:"required"`
}

// rescheduleWindow resolves the new session window and its duration,
// applying the optional override.
func rescheduleWindow(startMin, currentDuration int, override *int) (Window, int) {
	duration := currentDuration
	if override != nil {
		duration = *override
	}
	return Window{Start: startMin, End: startMin + duration}, duration
}

// RescheduleReservation applies the H-3 policy, re-checks availability
// excluding the reservation itself, mutates the schedule fields, and
// flags facility-bound addons whose windows no longer fit. Financial
// fields are untouched.
func (s *BookingService) RescheduleReservation(ctx context.Context, actor ActorContext, id uuid.UUID, input RescheduleInput) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.Preload("Addons").
		Where("studio_id = ? AND id = ?", actor.StudioID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if dec := CanReschedule(&reservation, time.Now()); !dec.Allowed {
		return nil, Denied(dec.Reason)
	}

	startMin, err := utils.ParseClock(input.StartTime)
	if err != nil {
		return nil, Denied("invalid start time: " + err.Error())
	}
	window, duration := rescheduleWindow(startMin, reservation.Duration, input.Duration)
	newDate := utils.BeginningOfDay(input.Date)
	dateChanged := !newDate.Equal(reservation.Date)

	before := models.JSONB{
		"date":      reservation.Date.Format("2006-01-02"),
		"startTime": reservation.StartTime,
		"endTime":   reservation.EndTime,
		"duration":  reservation.Duration,
	}

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	txChecker := NewAvailabilityChecker(tx)

	free, err := txChecker.IsSlotAvailable(actor.StudioID, newDate, window, &reservation.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !free {
		tx.Rollback()
		return nil, ErrSlotConflict
	}

	// Facility addons are never silently moved: a window that fell out
	// of the new primary window, or that now collides at the new date,
	// is flagged for the caller to re-select. Auto-assignment could
	// change the addon's cost.
	var flagged []string
	for i := range reservation.Addons {
		a := &reservation.Addons[i]
		if a.FacilityID == nil {
			continue
		}
		aw, perr := parseAddonWindow(*a)
		if perr != nil {
			continue
		}
		fits := aw.Start >= window.Start && aw.End <= window.End
		needsFlag := !fits
		if fits && dateChanged {
			ok, ferr := txChecker.IsFacilityAvailable(*a.FacilityID, newDate, aw, &reservation.ID)
			if ferr != nil {
				tx.Rollback()
				return nil, ferr
			}
			needsFlag = !ok
		}
		if needsFlag && !a.NeedsTimeAdjustment {
			a.NeedsTimeAdjustment = true
			flagged = append(flagged, a.AddonName)
			if err := tx.Model(&models.ReservationAddon{}).Where("id = ?", a.ID).
				Update("needs_time_adjustment", true).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	reservation.Date = newDate
	reservation.StartTime = utils.FormatClock(window.Start)
	reservation.EndTime = utils.FormatClock(window.End)
	reservation.Duration = duration

	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
		Updates(map[string]interface{}{
			"date":       reservation.Date,
			"start_time": reservation.StartTime,
			"end_time":   reservation.EndTime,
			"duration":   reservation.Duration,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventRescheduled,
		Actor:         actor.actorLabel(),
		Before:        before,
		After: models.JSONB{
			"date":      reservation.Date.Format("2006-01-02"),
			"startTime": reservation.StartTime,
			"endTime":   reservation.EndTime,
			"duration":  reservation.Duration,
		},
		Reason: input.Reason,
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, name := range flagged {
		flagEvent := models.ReservationEvent{
			ReservationID: reservation.ID,
			Type:          models.EventAddonFlagged,
			Actor:         actor.actorLabel(),
			After:         models.JSONB{"addon": name, "needsTimeAdjustment": true},
			Reason:        "addon window no longer fits the rescheduled session",
		}
		if err := tx.Create(&flagEvent).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateReservationAddons replaces the reservation's addon lines and
// re-derives every money field. A discount that no longer qualifies
// against the new subtotal is dropped with an audit event, never
// silently kept; its use goes back to the pool.
func (s *BookingService) UpdateReservationAddons(ctx context.Context, actor ActorContext, id uuid.UUID, inputs []AddonInput) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.Preload("Addons").Preload("Package.Addons").
		Where("studio_id = ? AND id = ?", actor.StudioID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch reservation.Status {
	case models.StatusPending, models.StatusConfirmed:
	default:
		return nil, Denied(fmt.Sprintf("addons of a %s reservation cannot be changed", reservation.Status))
	}
	if reservation.PaymentStatus == models.PayPaid {
		return nil, Denied("reservation is fully paid, changing addons requires a refund first")
	}

	rows, _, err := s.buildAddonLines(actor.StudioID, &reservation.Package, inputs)
	if err != nil {
		return nil, err
	}

	before := models.JSONB{
		"addonTotal":     reservation.AddonTotal,
		"discountAmount": reservation.DiscountAmount,
		"totalAmount":    reservation.TotalAmount,
	}

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	txChecker := NewAvailabilityChecker(tx)
	for _, row := range rows {
		if row.FacilityID == nil {
			continue
		}
		fw, perr := parseAddonWindow(row)
		if perr != nil {
			tx.Rollback()
			return nil, Denied(perr.Error())
		}
		ok, ferr := txChecker.IsFacilityAvailable(*row.FacilityID, reservation.Date, fw, &reservation.ID)
		if ferr != nil {
			tx.Rollback()
			return nil, ferr
		}
		if !ok {
			tx.Rollback()
			return nil, ErrFacilityConflict
		}
	}

	reservation.Addons = rows
	RecomputeReservation(&reservation, reservation.Package.DPPercentage)

	var dropped *RevalidationResult
	if reservation.DiscountID != nil {
		var discount models.Discount
		if err := tx.First(&discount, "id = ?", *reservation.DiscountID).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		res := RevalidateDiscount(&discount, DiscountBase{PackagePrice: reservation.PackagePrice, AddonTotal: reservation.AddonTotal}, actor.StudioID, time.Now())
		if res.Dropped {
			dropped = &res
			if err := tx.Model(&models.Discount{}).
				Where("id = ? AND used_count > 0", discount.ID).
				Update("used_count", gorm.Expr("used_count - ?", 1)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			reservation.DiscountID = nil
			reservation.DiscountAmount = 0
		} else {
			reservation.DiscountAmount = res.DiscountAmount
		}
		RecomputeReservation(&reservation, reservation.Package.DPPercentage)
	}

	if err := tx.Where("reservation_id = ?", reservation.ID).
		Delete(&models.ReservationAddon{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range rows {
		rows[i].ReservationID = reservation.ID
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"addon_total":      reservation.AddonTotal,
		"subtotal":         reservation.Subtotal,
		"discount_amount":  reservation.DiscountAmount,
		"total_amount":     reservation.TotalAmount,
		"dp_amount":        reservation.DPAmount,
		"remaining_amount": reservation.RemainingAmount,
		"discount_id":      reservation.DiscountID,
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventAddonsUpdated,
		Actor:         actor.actorLabel(),
		Before:        before,
		After: models.JSONB{
			"addonTotal":     reservation.AddonTotal,
			"discountAmount": reservation.DiscountAmount,
			"totalAmount":    reservation.TotalAmount,
		},
		Reason: "addon selection changed",
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if dropped != nil {
		dropEvent := models.ReservationEvent{
			ReservationID: reservation.ID,
			Type:          models.EventDiscountDropped,
			Actor:         actor.actorLabel(),
			Before:        models.JSONB{"discountAmount": before["discountAmount"]},
			After:         models.JSONB{"discountAmount": 0},
			Reason:        dropped.Reason,
		}
		if err := tx.Create(&dropEvent).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CancelReservation marks the reservation cancelled and applies the
// cancellation side effects as one atomic unit: status, payment cascade,
// discount counter. Partial application must never be observable.
func (s *BookingService) CancelReservation(ctx context.Context, actor ActorContext, id uuid.UUID, reason string) (*models.Reservation, CancellationInfo, error) {
	var reservation models.Reservation
	if err := s.db.Where("studio_id = ? AND id = ?", actor.StudioID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CancellationInfo{}, ErrNotFound
		}
		return nil, CancellationInfo{}, err
	}

	now := time.Now()
	info := GetCancellationInfo(&reservation, now)
	transition := DecideCancel(&reservation, now)
	if !transition.Allowed {
		return nil, info, Denied(transition.Reason)
	}

	before := models.JSONB{
		"status":        string(reservation.Status),
		"paymentStatus": string(reservation.PaymentStatus),
	}

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"status":         transition.Effects.NewStatus,
		"payment_status": transition.Effects.NewPaymentStatus,
		"cancelled_at":   now,
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, info, err
	}

	if transition.Effects.CascadePaymentsTo != "" {
		if err := tx.Model(&models.Payment{}).
			Where("reservation_id = ? AND status <> ?", reservation.ID, transition.Effects.CascadePaymentsTo).
			Update("status", transition.Effects.CascadePaymentsTo).Error; err != nil {
			tx.Rollback()
			return nil, info, err
		}
	}

	if transition.Effects.DiscountUsageDelta < 0 && reservation.DiscountID != nil {
		if err := tx.Model(&models.Discount{}).
			Where("id = ? AND used_count > 0", *reservation.DiscountID).
			Update("used_count", gorm.Expr("used_count - ?", -transition.Effects.DiscountUsageDelta)).Error; err != nil {
			tx.Rollback()
			return nil, info, err
		}
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventStatusChanged,
		Actor:         actor.actorLabel(),
		Before:        before,
		After: models.JSONB{
			"status":           string(transition.Effects.NewStatus),
			"paymentStatus":    string(transition.Effects.NewPaymentStatus),
			"depositForfeited": info.DepositForfeited,
		},
		Reason: reason,
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return nil, info, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, info, err
	}

	reservation.Status = transition.Effects.NewStatus
	reservation.PaymentStatus = transition.Effects.NewPaymentStatus
	reservation.CancelledAt = &now
	return &reservation, info, nil
}

// applyTransition persists a decided transition plus its audit event.
func (s *BookingService) applyTransition(actor ActorContext, reservation *models.Reservation, transition Transition, reason string) error {
	if !transition.Allowed {
		return Denied(transition.Reason)
	}

	now := time.Now()
	before := models.JSONB{
		"status":        string(reservation.Status),
		"paymentStatus": string(reservation.PaymentStatus),
	}

	updates := map[string]interface{}{
		"status":         transition.Effects.NewStatus,
		"payment_status": transition.Effects.NewPaymentStatus,
	}
	if transition.Effects.SetConfirmedAt && reservation.ConfirmedAt == nil {
		updates["confirmed_at"] = now
	}
	if transition.Effects.SetCompletedAt && reservation.CompletedAt == nil {
		updates["completed_at"] = now
	}

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventStatusChanged,
		Actor:         actor.actorLabel(),
		Before:        before,
		After: models.JSONB{
			"status":        string(transition.Effects.NewStatus),
			"paymentStatus": string(transition.Effects.NewPaymentStatus),
		},
		Reason: reason,
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	reservation.Status = transition.Effects.NewStatus
	reservation.PaymentStatus = transition.Effects.NewPaymentStatus
	if transition.Effects.SetConfirmedAt && reservation.ConfirmedAt == nil {
		reservation.ConfirmedAt = &now
	}
	if transition.Effects.SetCompletedAt && reservation.CompletedAt == nil {
		reservation.CompletedAt = &now
	}
	return nil
}

func (s *BookingService) loadReservation(studioID, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.Where("studio_id = ? AND id = ?", studioID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// ConfirmReservation is the manual staff confirm action.
func (s *BookingService) ConfirmReservation(actor ActorContext, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.loadReservation(actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(actor, reservation, DecideConfirm(reservation), "confirmed by staff"); err != nil {
		return nil, err
	}
	return reservation, nil
}

// StartSession moves a fully paid, confirmed reservation to in_progress.
func (s *BookingService) StartSession(actor ActorContext, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.loadReservation(actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(actor, reservation, DecideStart(reservation), "session started"); err != nil {
		return nil, err
	}
	return reservation, nil
}

// CompleteSession finishes an in-progress session.
func (s *BookingService) CompleteSession(actor ActorContext, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.loadReservation(actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(actor, reservation, DecideComplete(reservation), "session completed"); err != nil {
		return nil, err
	}
	return reservation, nil
}

// MarkNoShow records a confirmed customer that never arrived.
func (s *BookingService) MarkNoShow(actor ActorContext, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.loadReservation(actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(actor, reservation, DecideNoShow(reservation), "customer did not arrive"); err != nil {
		return nil, err
	}
	return reservation, nil
}

// RecordPayment registers a staff-collected deposit or settlement and
// runs the resulting payment transition.
func (s *BookingService) RecordPayment(actor ActorContext, id uuid.UUID, amount float64, method string) (*models.Reservation, error) {
	if amount <= 0 {
		return nil, Denied("payment amount must be positive")
	}

	reservation, err := s.loadReservation(actor.StudioID, id)
	if err != nil {
		return nil, err
	}

	if reservation.PaymentStatus == models.PayPaid {
		return nil, Denied("reservation is already fully paid")
	}
	if reservation.PaymentStatus == models.PayPartial {
		if dec := CanCompletePayment(reservation); !dec.Allowed {
			return nil, Denied(dec.Reason)
		}
	}

	var paidSoFar float64
	if err := s.db.Model(&models.Payment{}).
		Where("reservation_id = ? AND status = ?", reservation.ID, string(models.PayPaid)).
		Select("COALESCE(SUM(amount), 0)").Scan(&paidSoFar).Error; err != nil {
		return nil, err
	}

	fullSettlement := paidSoFar+amount >= reservation.TotalAmount
	transition := DecidePaymentEvent(reservation, models.PayPaid, fullSettlement)
	if !transition.Allowed {
		return nil, Denied(transition.Reason)
	}

	now := time.Now()
	kind := models.PaymentKindDeposit
	if paidSoFar > 0 {
		kind = models.PaymentKindSettlement
	} else if fullSettlement {
		kind = models.PaymentKindFull
	}

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	payment := models.Payment{
		ReservationID: reservation.ID,
		Amount:        amount,
		Kind:          kind,
		Status:        string(models.PayPaid),
		Method:        method,
		PaidAt:        &now,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{
		"status":         transition.Effects.NewStatus,
		"payment_status": transition.Effects.NewPaymentStatus,
	}
	if transition.Effects.SetConfirmedAt && reservation.ConfirmedAt == nil {
		updates["confirmed_at"] = now
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventPaymentChanged,
		Actor:         actor.actorLabel(),
		Before:        models.JSONB{"paymentStatus": string(reservation.PaymentStatus)},
		After: models.JSONB{
			"paymentStatus": string(transition.Effects.NewPaymentStatus),
			"amount":        amount,
			"kind":          kind,
		},
		Reason: "payment recorded",
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reservation.Status = transition.Effects.NewStatus
	reservation.PaymentStatus = transition.Effects.NewPaymentStatus
	if transition.Effects.SetConfirmedAt && reservation.ConfirmedAt == nil {
		reservation.ConfirmedAt = &now
	}
	return reservation, nil
}

// WebhookInput is the gateway callback payload. Amount may be zero for
// gateways that only push a status; the payment option then decides
// whether the event settles the booking in full.
type WebhookInput struct {
	BookingCode   string  `json:"bookingCode" binding:"required"`
	PaymentStatus string  `json:"paymentStatus" binding:"required,oneof=paid partial failed"`
	Amount        float64 `json:"amount" binding:"min=0"`
	ExternalRef   string  `json:"externalRef"`
}

// hasSettledRef reports whether a gateway reference was already applied
// to the reservation. Gateways retry deliveries; the same reference must
// never create a second payment row.
func hasSettledRef(payments []models.Payment, ref string) bool {
	if ref == "" {
		return false
	}
	for _, p := range payments {
		if p.ExternalRef != nil && *p.ExternalRef == ref && p.Status == string(models.PayPaid) {
			return true
		}
	}
	return false
}

// HandlePaymentWebhook runs the state machine's payment transition for a
// gateway event. Retried deliveries are no-ops: a known external
// reference is acknowledged without side effects, and a unique index on
// (reservation, external ref) backstops concurrent redeliveries.
func (s *BookingService) HandlePaymentWebhook(input WebhookInput) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.Where("booking_code = ?", input.BookingCode).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Where("reservation_id = ?", reservation.ID).Find(&payments).Error; err != nil {
		return nil, err
	}
	if hasSettledRef(payments, input.ExternalRef) {
		return &reservation, nil
	}

	var paidSoFar float64
	for _, p := range payments {
		if p.Status == string(models.PayPaid) {
			paidSoFar += p.Amount
		}
	}

	target := models.PaymentState(input.PaymentStatus)
	fullSettlement := false
	if target == models.PayPaid {
		if input.Amount > 0 {
			fullSettlement = paidSoFar+input.Amount >= reservation.TotalAmount
		} else {
			fullSettlement = reservation.PaymentOption == models.PaymentOptionFull
		}
	}

	transition := DecidePaymentEvent(&reservation, target, fullSettlement)
	if !transition.Allowed {
		return nil, Denied(transition.Reason)
	}

	// Same final state: acknowledge the retry without new side effects.
	if transition.Effects.NewStatus == reservation.Status &&
		transition.Effects.NewPaymentStatus == reservation.PaymentStatus {
		return &reservation, nil
	}

	now := time.Now()

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if target != models.PayFailed && input.Amount > 0 {
		kind := models.PaymentKindDeposit
		if fullSettlement {
			kind = models.PaymentKindSettlement
			if paidSoFar == 0 {
				kind = models.PaymentKindFull
			}
		}
		var ref *string
		if input.ExternalRef != "" {
			ref = &input.ExternalRef
		}
		payment := models.Payment{
			ReservationID: reservation.ID,
			Amount:        input.Amount,
			Kind:          kind,
			Status:        string(models.PayPaid),
			Method:        "gateway",
			ExternalRef:   ref,
			PaidAt:        &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"status":         transition.Effects.NewStatus,
		"payment_status": transition.Effects.NewPaymentStatus,
	}
	if transition.Effects.SetConfirmedAt && reservation.ConfirmedAt == nil {
		updates["confirmed_at"] = now
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	event := models.ReservationEvent{
		ReservationID: reservation.ID,
		Type:          models.EventPaymentChanged,
		Actor:         "system",
		Before: models.JSONB{
			"status":        string(reservation.Status),
			"paymentStatus": string(reservation.PaymentStatus),
		},
		After: models.JSONB{
			"status":        string(transition.Effects.NewStatus),
			"paymentStatus": string(transition.Effects.NewPaymentStatus),
			"externalRef":   input.ExternalRef,
		},
		Reason: "payment gateway notification",
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reservation.Status = transition.Effects.NewStatus
	reservation.PaymentStatus = transition.Effects.NewPaymentStatus
	if transition.Effects.SetConfirmedAt && reservation.ConfirmedAt == nil {
		reservation.ConfirmedAt = &now
	}
	return &reservation, nil
}

// DeleteReservation hard-removes a reservation that never progressed and
// never collected money. Everything else must go through cancellation.
func (s *BookingService) DeleteReservation(actor ActorContext, id uuid.UUID) error {
	reservation, err := s.loadReservation(actor.StudioID, id)
	if err != nil {
		return err
	}

	var payments []models.Payment
	if err := s.db.Where("reservation_id = ?", reservation.ID).Find(&payments).Error; err != nil {
		return err
	}

	if dec := CanDelete(reservation, payments); !dec.Allowed {
		return Denied(dec.Reason)
	}

	tx := s.serializableTx()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// A pending discounted booking that is erased instead of cancelled
	// still returns its discount use to the pool.
	if reservation.Status == models.StatusPending && reservation.DiscountID != nil {
		if err := tx.Model(&models.Discount{}).
			Where("id = ? AND used_count > 0", *reservation.DiscountID).
			Update("used_count", gorm.Expr("used_count - ?", 1)).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	for _, m := range []interface{}{&models.ReservationAddon{}, &models.Payment{}, &models.ReservationEvent{}} {
		if err := tx.Where("reservation_id = ?", reservation.ID).Delete(m).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Delete(&models.Reservation{}, "id = ?", reservation.ID).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
